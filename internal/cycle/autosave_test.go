package cycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/praxis-ed/studyengine/internal/cycle"
)

// countingStore wraps a MemoryStore and fails the first failUpserts writes.
type countingStore struct {
	inner *cycle.MemoryStore

	mu          sync.Mutex
	upserts     int
	failUpserts int
}

func (s *countingStore) Get(ctx context.Context, userID, courseID string) (*cycle.Allocation, error) {
	return s.inner.Get(ctx, userID, courseID)
}

func (s *countingStore) Upsert(ctx context.Context, alloc *cycle.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upserts <= s.failUpserts {
		return errors.New("write failed")
	}
	return s.inner.Upsert(ctx, alloc)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

func TestAutoSaver_StageAndFlush(t *testing.T) {
	store := &countingStore{inner: cycle.NewMemoryStore()}
	saver := cycle.NewAutoSaver(store, time.Hour)
	defer saver.Close()

	alloc := sampleAllocation()
	saver.Stage(alloc)
	saver.Stage(alloc) // same key, supersedes

	if got := saver.Pending(); got != 1 {
		t.Fatalf("Pending() = %d, want 1", got)
	}

	if err := saver.Flush(t.Context()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := saver.Pending(); got != 0 {
		t.Errorf("Pending() after flush = %d, want 0", got)
	}

	saved, err := store.Get(t.Context(), "u1", "crs-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if saved == nil || len(saved.Entries) != 3 {
		t.Errorf("saved allocation = %+v, want 3 entries", saved)
	}
}

func TestAutoSaver_RetriesOnce(t *testing.T) {
	store := &countingStore{inner: cycle.NewMemoryStore(), failUpserts: 1}
	saver := cycle.NewAutoSaver(store, time.Hour)
	defer saver.Close()

	saver.Stage(sampleAllocation())

	if err := saver.Flush(t.Context()); err != nil {
		t.Fatalf("Flush() error = %v, want retry to succeed", err)
	}
	if got := store.count(); got != 2 {
		t.Errorf("upsert attempts = %d, want 2", got)
	}
}

func TestAutoSaver_KeepsFailedStaged(t *testing.T) {
	store := &countingStore{inner: cycle.NewMemoryStore(), failUpserts: 2}
	saver := cycle.NewAutoSaver(store, time.Hour)
	defer saver.Close()

	saver.Stage(sampleAllocation())

	if err := saver.Flush(t.Context()); err == nil {
		t.Fatal("Flush() should report the failed write")
	}
	if got := saver.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want failed allocation restaged", got)
	}

	// Next flush succeeds and drains the buffer.
	if err := saver.Flush(t.Context()); err != nil {
		t.Fatalf("second Flush() error = %v", err)
	}
	if got := saver.Pending(); got != 0 {
		t.Errorf("Pending() = %d, want 0", got)
	}
}

func TestAutoSaver_CloseFlushes(t *testing.T) {
	store := &countingStore{inner: cycle.NewMemoryStore()}
	saver := cycle.NewAutoSaver(store, time.Hour)

	saver.Stage(sampleAllocation())

	if err := saver.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	saved, err := store.Get(context.Background(), "u1", "crs-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if saved == nil {
		t.Error("allocation should be persisted on close")
	}

	// Staging after close is a no-op.
	saver.Stage(sampleAllocation())
	if got := saver.Pending(); got != 0 {
		t.Errorf("Pending() after close = %d, want 0", got)
	}

	if err := saver.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
