package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation. Completion sets
// are stored as a JSONB document keyed by (user_id, course_id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the progress table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS progress_records (
			user_id    TEXT NOT NULL,
			course_id  TEXT NOT NULL,
			done       JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, course_id)
		)`,
	)
	if err != nil {
		return fmt.Errorf("ensure progress schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, courseID string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		doneBytes []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT done, updated_at
		 FROM progress_records
		 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	).Scan(&doneBytes, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lazily created records: absence reads as empty.
			return NewRecord(userID, courseID), nil
		}
		return nil, fmt.Errorf("get progress record: %w", err)
	}

	rec := NewRecord(userID, courseID)
	rec.UpdatedAt = updatedAt
	if len(doneBytes) > 0 {
		if err := json.Unmarshal(doneBytes, &rec.Done); err != nil {
			return nil, fmt.Errorf("decode progress record: %w", err)
		}
	}
	if rec.Done == nil {
		rec.Done = make(map[string]map[string]bool)
	}
	return rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec *Record) error {
	if rec.UserID == "" || rec.CourseID == "" {
		return fmt.Errorf("user_id and course_id are required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	doneBytes, err := json.Marshal(rec.Done)
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}

	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO progress_records (user_id, course_id, done, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4)
		 ON CONFLICT (user_id, course_id)
		 DO UPDATE SET done = EXCLUDED.done, updated_at = EXCLUDED.updated_at`,
		rec.UserID, rec.CourseID, string(doneBytes), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress record: %w", err)
	}
	return nil
}
