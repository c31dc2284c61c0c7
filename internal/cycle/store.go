package cycle

import (
	"context"
	"sync"
)

// Store persists study-cycle allocations. Get on a missing (user, course)
// pair returns nil without error; reconciliation treats nil as "no saved
// allocation". Upsert creates or replaces.
type Store interface {
	Get(ctx context.Context, userID, courseID string) (*Allocation, error)
	Upsert(ctx context.Context, alloc *Allocation) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	allocations map[string]Allocation
}

// NewMemoryStore creates a new in-memory allocation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		allocations: make(map[string]Allocation),
	}
}

func allocationKey(userID, courseID string) string {
	return userID + "/" + courseID
}

func (s *MemoryStore) Get(_ context.Context, userID, courseID string) (*Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alloc, ok := s.allocations[allocationKey(userID, courseID)]
	if !ok {
		return nil, nil
	}
	cp := alloc.Clone()
	return &cp, nil
}

func (s *MemoryStore) Upsert(_ context.Context, alloc *Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allocations[allocationKey(alloc.UserID, alloc.CourseID)] = alloc.Clone()
	return nil
}
