package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresCatalog is a PostgreSQL-backed Repository.
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// NewPostgresCatalog creates a PostgreSQL-backed catalog.
func NewPostgresCatalog(pool *pgxpool.Pool) (*PostgresCatalog, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresCatalog{pool: pool}, nil
}

func (c *PostgresCatalog) CourseByID(ctx context.Context, id string) (Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var course Course
	err := c.pool.QueryRow(ctx,
		`SELECT id, title, discipline_ids, lesson_ids
		 FROM courses
		 WHERE id = $1`,
		id,
	).Scan(&course.ID, &course.Title, &course.DisciplineIDs, &course.LessonIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return Course{}, &RepositoryError{Op: "CourseByID", Err: err}
	}
	return course, nil
}

func (c *PostgresCatalog) DisciplineByID(ctx context.Context, id string) (Discipline, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var disc Discipline
	err := c.pool.QueryRow(ctx,
		`SELECT id, title, lesson_ids
		 FROM disciplines
		 WHERE id = $1`,
		id,
	).Scan(&disc.ID, &disc.Title, &disc.LessonIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discipline{}, fmt.Errorf("discipline %s: %w", id, ErrNotFound)
		}
		return Discipline{}, &RepositoryError{Op: "DisciplineByID", Err: err}
	}
	return disc, nil
}

func (c *PostgresCatalog) LessonsByIDs(ctx context.Context, ids []string) ([]Lesson, error) {
	if len(ids) == 0 {
		return []Lesson{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		`SELECT id, topic_ids, section_ids
		 FROM lessons
		 WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, &RepositoryError{Op: "LessonsByIDs", Err: err}
	}
	defer rows.Close()

	byID := make(map[string]Lesson, len(ids))
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.TopicIDs, &l.SectionIDs); err != nil {
			return nil, &RepositoryError{Op: "LessonsByIDs", Err: err}
		}
		byID[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "LessonsByIDs", Err: err}
	}

	// Preserve the requested order; unknown ids are simply absent.
	lessons := make([]Lesson, 0, len(byID))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

func (c *PostgresCatalog) TopicsByIDs(ctx context.Context, ids []string) ([]Topic, error) {
	if len(ids) == 0 {
		return []Topic{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := c.pool.Query(ctx,
		`SELECT id, name, COALESCE(question_filter, ''), COALESCE(difficulty, ''), COALESCE(weight, 0)
		 FROM topics
		 WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, &RepositoryError{Op: "TopicsByIDs", Err: err}
	}
	defer rows.Close()

	byID := make(map[string]Topic, len(ids))
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.QuestionFilter, &t.Difficulty, &t.Weight); err != nil {
			return nil, &RepositoryError{Op: "TopicsByIDs", Err: err}
		}
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, &RepositoryError{Op: "TopicsByIDs", Err: err}
	}

	topics := make([]Topic, 0, len(byID))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			topics = append(topics, t)
		}
	}
	return topics, nil
}
