// Package catalog resolves course content hierarchies. It provides the
// repository contracts for content lookup, a resolver that turns a raw
// identifier into the full set of reachable disciplines and lessons, and
// unique counting over that set.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when an identifier resolves to no known course,
// discipline, lesson, or topic. Callers must treat it as terminal for the
// requested view, unlike a RepositoryError which permits retry.
var ErrNotFound = errors.New("content not found")

// RepositoryError wraps a transient transport or storage failure. It is
// deliberately distinct from ErrNotFound: a missing identifier is a
// user-facing state, a failed lookup is a recoverable one.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// IsRepositoryError reports whether err is a transient repository failure.
func IsRepositoryError(err error) bool {
	var re *RepositoryError
	return errors.As(err, &re)
}

// Repository is the read-only content lookup contract.
type Repository interface {
	CourseByID(ctx context.Context, id string) (Course, error)
	DisciplineByID(ctx context.Context, id string) (Discipline, error)
	LessonsByIDs(ctx context.Context, ids []string) ([]Lesson, error)
	TopicsByIDs(ctx context.Context, ids []string) ([]Topic, error)
}

// MemoryCatalog is an in-memory Repository, populated by the Loader or
// directly in tests.
type MemoryCatalog struct {
	mu          sync.RWMutex
	courses     map[string]Course
	disciplines map[string]Discipline
	lessons     map[string]Lesson
	topics      map[string]Topic
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		courses:     make(map[string]Course),
		disciplines: make(map[string]Discipline),
		lessons:     make(map[string]Lesson),
		topics:      make(map[string]Topic),
	}
}

// PutCourse adds or replaces a course.
func (m *MemoryCatalog) PutCourse(c Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
}

// PutDiscipline adds or replaces a discipline.
func (m *MemoryCatalog) PutDiscipline(d Discipline) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disciplines[d.ID] = d
}

// PutLesson adds or replaces a lesson.
func (m *MemoryCatalog) PutLesson(l Lesson) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[l.ID] = l
}

// PutTopic adds or replaces a topic.
func (m *MemoryCatalog) PutTopic(t Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[t.ID] = t
}

func (m *MemoryCatalog) CourseByID(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *MemoryCatalog) DisciplineByID(_ context.Context, id string) (Discipline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disciplines[id]
	if !ok {
		return Discipline{}, fmt.Errorf("discipline %s: %w", id, ErrNotFound)
	}
	return d, nil
}

func (m *MemoryCatalog) LessonsByIDs(_ context.Context, ids []string) ([]Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lessons := make([]Lesson, 0, len(ids))
	for _, id := range ids {
		if l, ok := m.lessons[id]; ok {
			lessons = append(lessons, l)
		}
	}
	return lessons, nil
}

func (m *MemoryCatalog) TopicsByIDs(_ context.Context, ids []string) ([]Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	topics := make([]Topic, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.topics[id]; ok {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

// Len reports how many documents of each kind the catalog holds.
func (m *MemoryCatalog) Len() (courses, disciplines, lessons, topics int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.courses), len(m.disciplines), len(m.lessons), len(m.topics)
}
