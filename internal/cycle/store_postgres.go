package cycle

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

// PostgresStore is a PostgreSQL-backed Store implementation. Entries are a
// JSONB array keyed by (user_id, course_id).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed allocation store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the allocations table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS study_cycle_allocations (
			user_id      TEXT NOT NULL,
			course_id    TEXT NOT NULL,
			budget_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			entries      JSONB NOT NULL DEFAULT '[]'::jsonb,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, course_id)
		)`,
	)
	if err != nil {
		return fmt.Errorf("ensure cycle schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, courseID string) (*Allocation, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		entriesBytes []byte
		alloc        = Allocation{UserID: userID, CourseID: courseID}
	)
	err := s.pool.QueryRow(ctx,
		`SELECT budget_hours, entries, updated_at
		 FROM study_cycle_allocations
		 WHERE user_id = $1 AND course_id = $2`,
		userID, courseID,
	).Scan(&alloc.TotalHoursBudget, &entriesBytes, &alloc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}

	if len(entriesBytes) > 0 {
		if err := json.Unmarshal(entriesBytes, &alloc.Entries); err != nil {
			return nil, fmt.Errorf("decode allocation entries: %w", err)
		}
	}
	return &alloc, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, alloc *Allocation) error {
	if alloc.UserID == "" || alloc.CourseID == "" {
		return fmt.Errorf("user_id and course_id are required")
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	entriesBytes, err := json.Marshal(alloc.Entries)
	if err != nil {
		return fmt.Errorf("encode allocation entries: %w", err)
	}

	updatedAt := alloc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO study_cycle_allocations (user_id, course_id, budget_hours, entries, updated_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 ON CONFLICT (user_id, course_id)
		 DO UPDATE SET budget_hours = EXCLUDED.budget_hours,
		               entries = EXCLUDED.entries,
		               updated_at = EXCLUDED.updated_at`,
		alloc.UserID, alloc.CourseID, alloc.TotalHoursBudget, string(entriesBytes), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert allocation: %w", err)
	}
	return nil
}
