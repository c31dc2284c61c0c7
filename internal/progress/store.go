package progress

import (
	"context"
	"sync"
)

// Store persists completion records. Get on a missing (user, course) pair
// returns an empty record, never an error; Upsert creates or replaces.
type Store interface {
	Get(ctx context.Context, userID, courseID string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates a new in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func recordKey(userID, courseID string) string {
	return userID + "/" + courseID
}

func (s *MemoryStore) Get(_ context.Context, userID, courseID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey(userID, courseID)]
	if !ok {
		return NewRecord(userID, courseID), nil
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[recordKey(rec.UserID, rec.CourseID)] = rec.Clone()
	return nil
}
