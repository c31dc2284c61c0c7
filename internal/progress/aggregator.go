package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/praxis-ed/studyengine/internal/catalog"
)

// Summary is the aggregated completion state for one resolved graph.
type Summary struct {
	TotalSections     int `json:"total_sections"`
	CompletedSections int `json:"completed_sections"`
	Percent           int `json:"percent"`
}

// percent computes a rounded percentage, defined as 0 when total is 0.
func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Compute combines a resolved graph with a completion record. Only sections
// that belong to lessons reachable from the graph count, and within each
// lesson only sections that still exist on it — completions left behind by a
// content restructure are excluded, not deleted.
func Compute(graph *catalog.ResolvedGraph, rec *Record) Summary {
	uc := catalog.CountUnique(graph.Lessons)

	completed := 0
	for lessonID, sections := range uc.SectionsByLesson {
		for sectionID := range rec.CompletedIn(lessonID) {
			if sections[sectionID] {
				completed++
			}
		}
	}

	return Summary{
		TotalSections:     uc.Sections,
		CompletedSections: completed,
		Percent:           percent(completed, uc.Sections),
	}
}

// ApplyUpdate overwrites a summary's counts with an authoritative live
// update, recomputing the percentage.
func (s Summary) ApplyUpdate(u Update) Summary {
	return Summary{
		TotalSections:     u.TotalSections,
		CompletedSections: u.TotalCompleted,
		Percent:           percent(u.TotalCompleted, u.TotalSections),
	}
}

// AggregatorConfig holds dependencies for the aggregator.
type AggregatorConfig struct {
	Resolver catalog.GraphResolver
	Store    Store
	// Bridge, when set, receives authoritative counts after each section
	// mutation.
	Bridge *Bridge
}

// Aggregator resolves a learner's course view and aggregates completion over
// it. It keeps the latest summary per learner and guards against a stale
// in-flight resolution overwriting the state of a newer one.
type Aggregator struct {
	resolver catalog.GraphResolver
	store    Store
	bridge   *Bridge

	mu    sync.Mutex
	views map[string]*viewState // by userID
}

type viewState struct {
	courseID string
	gen      uint64
	summary  Summary
	loaded   bool
}

// NewAggregator creates a new progress aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Aggregator{
		resolver: cfg.Resolver,
		store:    store,
		bridge:   cfg.Bridge,
		views:    make(map[string]*viewState),
	}
}

// Load resolves rawCourseID for the learner and aggregates their completion
// over it. A missing identifier surfaces as catalog.ErrNotFound; a transient
// repository failure degrades to the zero summary so the caller can still
// render the view. If the learner navigates to a different identifier before
// this call finishes, the stale result is returned to its caller but never
// recorded as current state.
func (a *Aggregator) Load(ctx context.Context, userID, rawCourseID string) (Summary, error) {
	courseID := catalog.TranslateSlug(rawCourseID)

	a.mu.Lock()
	view := a.views[userID]
	if view == nil {
		view = &viewState{}
		a.views[userID] = view
	}
	view.gen++
	view.courseID = courseID
	gen := view.gen
	a.mu.Unlock()

	graph, err := a.resolver.Resolve(ctx, courseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Summary{}, err
		}
		// Degraded view beats a blocked one.
		slog.Warn("content resolution failed, degrading to zero progress",
			"user_id", userID, "course_id", courseID, "error", err)
		return Summary{}, nil
	}

	rec, err := a.store.Get(ctx, userID, courseID)
	if err != nil {
		slog.Warn("progress record load failed, treating as empty",
			"user_id", userID, "course_id", courseID, "error", err)
		rec = NewRecord(userID, courseID)
	}

	summary := Compute(graph, rec)

	a.mu.Lock()
	defer a.mu.Unlock()
	if view.courseID == courseID && view.gen == gen {
		view.summary = summary
		view.loaded = true
	}
	return summary, nil
}

// Latest returns the most recently recorded summary for a learner's current
// view, if one has completed.
func (a *Aggregator) Latest(userID string) (Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	view := a.views[userID]
	if view == nil || !view.loaded {
		return Summary{}, false
	}
	return view.summary, true
}

// MarkSection toggles one section's completion, persists the record with a
// single automatic retry, and publishes the refreshed counts. The returned
// summary reflects the current resolution of the course.
func (a *Aggregator) MarkSection(ctx context.Context, userID, rawCourseID, lessonID, sectionID string, done bool) (Summary, error) {
	courseID := catalog.TranslateSlug(rawCourseID)

	rec, err := a.store.Get(ctx, userID, courseID)
	if err != nil {
		return Summary{}, fmt.Errorf("load progress record: %w", err)
	}

	if done {
		rec.MarkDone(lessonID, sectionID)
	} else {
		rec.MarkUndone(lessonID, sectionID)
	}

	if err := a.upsertWithRetry(ctx, rec); err != nil {
		return Summary{}, fmt.Errorf("save progress record: %w", err)
	}

	graph, err := a.resolver.Resolve(ctx, courseID)
	if err != nil {
		// The write succeeded; the caller keeps a degraded summary.
		slog.Warn("resolution failed after section toggle",
			"user_id", userID, "course_id", courseID, "error", err)
		return Summary{}, nil
	}

	summary := Compute(graph, rec)

	a.mu.Lock()
	if view := a.views[userID]; view != nil && view.courseID == courseID {
		view.summary = summary
		view.loaded = true
	}
	a.mu.Unlock()

	if a.bridge != nil {
		a.bridge.Publish(Update{
			TotalCompleted: summary.CompletedSections,
			TotalSections:  summary.TotalSections,
		})
	}
	return summary, nil
}

func (a *Aggregator) upsertWithRetry(ctx context.Context, rec *Record) error {
	err := a.store.Upsert(ctx, rec)
	if err == nil {
		return nil
	}
	slog.Warn("progress upsert failed, retrying once",
		"user_id", rec.UserID, "course_id", rec.CourseID, "error", err)
	return a.store.Upsert(ctx, rec)
}
