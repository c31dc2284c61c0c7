package progress

import (
	"log/slog"
	"sync"
)

// Update is the live-update payload: authoritative completion counts
// computed by whichever component mutated completion state.
type Update struct {
	TotalCompleted int `json:"total_completed"`
	TotalSections  int `json:"total_sections"`
}

// Bridge is a process-wide publish point for completion counts. Semantics
// are last-write-wins: only the most recent update matters, so there is no
// queue and no backpressure. Subscribers run synchronously in publish order.
type Bridge struct {
	mu     sync.Mutex
	latest Update
	has    bool
	subs   map[int]func(Update)
	nextID int
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{
		subs: make(map[int]func(Update)),
	}
}

// Publish records u as the latest update and notifies all subscribers.
func (b *Bridge) Publish(u Update) {
	b.mu.Lock()
	b.latest = u
	b.has = true
	fns := make([]func(Update), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	slog.Debug("progress update published",
		"total_completed", u.TotalCompleted,
		"total_sections", u.TotalSections,
	)
	for _, fn := range fns {
		fn(u)
	}
}

// Subscribe registers a callback for future updates and returns a cancel
// function. If an update has already been published, the callback receives
// the latest one immediately.
func (b *Bridge) Subscribe(fn func(Update)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	replay := b.has
	latest := b.latest
	b.mu.Unlock()

	if replay {
		fn(latest)
	}

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Latest returns the most recently published update.
func (b *Bridge) Latest() (Update, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.has
}
