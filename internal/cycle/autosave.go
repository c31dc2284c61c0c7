package cycle

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AutoSaver buffers unsaved allocation edits and flushes them after a
// bounded delay. Only the latest edit per (user, course) is kept — earlier
// buffered versions are superseded, not queued. Each flush attempt gets a
// single retry.
type AutoSaver struct {
	store Store

	mu      sync.Mutex
	pending map[string]*Allocation
	closed  bool

	ticker  *time.Ticker
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewAutoSaver starts an auto-saver flushing at the given delay.
func NewAutoSaver(store Store, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = 2 * time.Minute
	}

	a := &AutoSaver{
		store:   store,
		pending: make(map[string]*Allocation),
		ticker:  time.NewTicker(delay),
		closeCh: make(chan struct{}),
	}

	a.wg.Add(1)
	go a.flushLoop()
	return a
}

// Stage buffers an allocation for a later flush, replacing any previously
// staged version for the same (user, course).
func (a *AutoSaver) Stage(alloc Allocation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	cp := alloc.Clone()
	a.pending[allocationKey(alloc.UserID, alloc.CourseID)] = &cp
}

// Pending reports how many allocations are staged.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Flush writes all staged allocations now. Allocations that fail both the
// write and its retry are kept staged for the next flush.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	staged := a.pending
	a.pending = make(map[string]*Allocation)
	a.mu.Unlock()

	var lastErr error
	for key, alloc := range staged {
		err := a.store.Upsert(ctx, alloc)
		if err != nil {
			slog.Warn("allocation flush failed, retrying once",
				"user_id", alloc.UserID, "course_id", alloc.CourseID, "error", err)
			err = a.store.Upsert(ctx, alloc)
		}
		if err != nil {
			lastErr = err
			a.mu.Lock()
			// Do not clobber a newer staged edit made during the flush.
			if _, exists := a.pending[key]; !exists && !a.closed {
				a.pending[key] = alloc
			}
			a.mu.Unlock()
		}
	}
	return lastErr
}

func (a *AutoSaver) flushLoop() {
	defer a.wg.Done()

	for {
		select {
		case <-a.closeCh:
			return
		case <-a.ticker.C:
			if err := a.Flush(context.Background()); err != nil {
				slog.Error("autosave flush failed", "error", err)
			}
		}
	}
}

// Close stops the loop and flushes whatever is still staged.
func (a *AutoSaver) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.ticker.Stop()
	close(a.closeCh)
	a.mu.Unlock()

	a.wg.Wait()
	return a.Flush(context.Background())
}
