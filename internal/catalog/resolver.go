package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Kind distinguishes what a raw identifier resolved to.
type Kind string

const (
	KindCourse     Kind = "course"
	KindDiscipline Kind = "discipline"
)

// ResolvedGraph is the fully resolved content reachable from one identifier.
// Disciplines keep their course order; Lessons are deduplicated but keep
// first-seen order.
type ResolvedGraph struct {
	Kind        Kind         `json:"kind"`
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Disciplines []Discipline `json:"disciplines"`
	Lessons     []Lesson     `json:"lessons"`
}

// Resolver turns raw identifiers into resolved content graphs.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver over the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve looks the identifier up as a course first, then as a standalone
// discipline. It returns ErrNotFound when neither matches and passes
// repository failures through unchanged so callers can tell the two apart.
// Resolve is read-only; caching is the caller's concern (see CachedResolver).
func (r *Resolver) Resolve(ctx context.Context, rawID string) (*ResolvedGraph, error) {
	id := TranslateSlug(rawID)

	course, err := r.repo.CourseByID(ctx, id)
	switch {
	case err == nil:
		return r.resolveCourse(ctx, course)
	case errors.Is(err, ErrNotFound):
		// Fall through to the standalone-discipline lookup.
	default:
		return nil, err
	}

	disc, err := r.repo.DisciplineByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolve %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	lessons, err := r.repo.LessonsByIDs(ctx, disc.LessonIDs)
	if err != nil {
		return nil, err
	}

	return &ResolvedGraph{
		Kind:        KindDiscipline,
		ID:          disc.ID,
		Title:       disc.Title,
		Disciplines: []Discipline{disc},
		Lessons:     dedupeLessons(lessons),
	}, nil
}

func (r *Resolver) resolveCourse(ctx context.Context, course Course) (*ResolvedGraph, error) {
	disciplines := make([]Discipline, 0, len(course.DisciplineIDs))
	lessonIDs := make([]string, 0, len(course.LessonIDs))
	seen := make(map[string]bool)

	appendID := func(id string) {
		if !seen[id] {
			seen[id] = true
			lessonIDs = append(lessonIDs, id)
		}
	}

	for _, discID := range course.DisciplineIDs {
		disc, err := r.repo.DisciplineByID(ctx, discID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// A dangling discipline reference leaves the rest of the
				// course resolvable.
				slog.Warn("course references unknown discipline",
					"course_id", course.ID,
					"discipline_id", discID,
				)
				continue
			}
			return nil, err
		}
		disciplines = append(disciplines, disc)
		for _, lid := range disc.LessonIDs {
			appendID(lid)
		}
	}

	// Lessons attached directly to the course, outside any discipline.
	for _, lid := range course.LessonIDs {
		appendID(lid)
	}

	lessons, err := r.repo.LessonsByIDs(ctx, lessonIDs)
	if err != nil {
		return nil, err
	}

	return &ResolvedGraph{
		Kind:        KindCourse,
		ID:          course.ID,
		Title:       course.Title,
		Disciplines: disciplines,
		Lessons:     dedupeLessons(lessons),
	}, nil
}

func dedupeLessons(lessons []Lesson) []Lesson {
	out := make([]Lesson, 0, len(lessons))
	seen := make(map[string]bool, len(lessons))
	for _, l := range lessons {
		if !seen[l.ID] {
			seen[l.ID] = true
			out = append(out, l)
		}
	}
	return out
}

// UniqueCount holds deduplicated counts over a lesson set. A topic or
// section reachable through several lessons or disciplines counts once.
type UniqueCount struct {
	Topics   int
	Sections int

	TopicIDs  map[string]bool
	LessonIDs map[string]bool

	// SectionsByLesson maps each lesson to its own section-id set, for
	// intersecting persisted completions against current content.
	SectionsByLesson map[string]map[string]bool
}

// CountUnique unions topic and section identifiers across the given lessons.
// It is pure and order-independent: any permutation or duplication of the
// input yields identical counts.
func CountUnique(lessons []Lesson) UniqueCount {
	uc := UniqueCount{
		TopicIDs:         make(map[string]bool),
		LessonIDs:        make(map[string]bool),
		SectionsByLesson: make(map[string]map[string]bool),
	}

	sections := make(map[string]bool)
	for _, l := range lessons {
		uc.LessonIDs[l.ID] = true
		for _, tid := range l.TopicIDs {
			uc.TopicIDs[tid] = true
		}
		byLesson := uc.SectionsByLesson[l.ID]
		if byLesson == nil {
			byLesson = make(map[string]bool, len(l.SectionIDs))
			uc.SectionsByLesson[l.ID] = byLesson
		}
		for _, sid := range l.SectionIDs {
			sections[sid] = true
			byLesson[sid] = true
		}
	}

	uc.Topics = len(uc.TopicIDs)
	uc.Sections = len(sections)
	return uc
}
