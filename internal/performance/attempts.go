package performance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// AttemptSource reads attempt summaries from the attempt log, which is
// owned elsewhere in the application; this subsystem only aggregates it.
// The filter is the topic's question-filter expression.
type AttemptSource interface {
	SummaryByFilter(ctx context.Context, filter, userID string) (AttemptSummary, error)
}

// Attempt is one answered practice question.
type Attempt struct {
	UserID    string
	Filter    string
	Correct   bool
	CreatedAt time.Time
}

// MemoryAttempts is an in-memory attempt log for tests and single-process
// setups.
type MemoryAttempts struct {
	mu       sync.Mutex
	attempts []Attempt
}

// NewMemoryAttempts creates an empty in-memory attempt log.
func NewMemoryAttempts() *MemoryAttempts {
	return &MemoryAttempts{}
}

// Record appends an attempt.
func (m *MemoryAttempts) Record(a Attempt) error {
	if a.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.attempts = append(m.attempts, a)
	m.mu.Unlock()
	return nil
}

func (m *MemoryAttempts) SummaryByFilter(_ context.Context, filter, userID string) (AttemptSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum AttemptSummary
	for _, a := range m.attempts {
		if a.UserID != userID || a.Filter != filter {
			continue
		}
		sum.Total++
		if a.Correct {
			sum.Correct++
		} else {
			sum.Wrong++
		}
	}
	return sum, nil
}

// PostgresAttempts reads summaries from the attempts table.
type PostgresAttempts struct {
	pool *pgxpool.Pool
}

// NewPostgresAttempts creates a PostgreSQL-backed attempt source.
func NewPostgresAttempts(pool *pgxpool.Pool) (*PostgresAttempts, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresAttempts{pool: pool}, nil
}

func (p *PostgresAttempts) SummaryByFilter(ctx context.Context, filter, userID string) (AttemptSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var sum AttemptSummary
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE correct),
		        COUNT(*) FILTER (WHERE NOT correct)
		 FROM attempts
		 WHERE user_id = $1 AND topic_filter = $2`,
		userID, filter,
	).Scan(&sum.Total, &sum.Correct, &sum.Wrong)
	if err != nil {
		return AttemptSummary{}, fmt.Errorf("attempt summary: %w", err)
	}

	slog.Debug("attempt summary loaded",
		"user_id", userID,
		"filter", filter,
		"total", sum.Total,
	)
	return sum, nil
}
