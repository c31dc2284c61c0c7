package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/praxis-ed/studyengine/internal/catalog"
)

// sharedContentCatalog builds a course whose two disciplines both reference
// lesson l-shared.
func sharedContentCatalog() *catalog.MemoryCatalog {
	c := catalog.NewMemoryCatalog()
	c.PutCourse(catalog.Course{
		ID:            "crs-1",
		Title:         "Analyst Exam Prep",
		DisciplineIDs: []string{"d-law", "d-admin"},
	})
	c.PutDiscipline(catalog.Discipline{
		ID:        "d-law",
		Title:     "Constitutional Law",
		LessonIDs: []string{"l-1", "l-shared"},
	})
	c.PutDiscipline(catalog.Discipline{
		ID:        "d-admin",
		Title:     "Administrative Law",
		LessonIDs: []string{"l-shared", "l-2"},
	})
	c.PutLesson(catalog.Lesson{
		ID:         "l-1",
		TopicIDs:   []string{"t-1", "t-2"},
		SectionIDs: []string{"s-1", "s-2"},
	})
	c.PutLesson(catalog.Lesson{
		ID:         "l-shared",
		TopicIDs:   []string{"t-2", "t-3"},
		SectionIDs: []string{"s-3"},
	})
	c.PutLesson(catalog.Lesson{
		ID:         "l-2",
		TopicIDs:   []string{"t-4"},
		SectionIDs: []string{"s-4", "s-5"},
	})
	return c
}

func TestResolve_Course(t *testing.T) {
	r := catalog.NewResolver(sharedContentCatalog())

	graph, err := r.Resolve(t.Context(), "crs-1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if graph.Kind != catalog.KindCourse {
		t.Errorf("Kind = %q, want course", graph.Kind)
	}
	if len(graph.Disciplines) != 2 {
		t.Errorf("Disciplines count = %d, want 2", len(graph.Disciplines))
	}
	// l-shared is reachable via both disciplines but must appear once.
	if len(graph.Lessons) != 3 {
		t.Errorf("Lessons count = %d, want 3", len(graph.Lessons))
	}
}

func TestResolve_StandaloneDiscipline(t *testing.T) {
	r := catalog.NewResolver(sharedContentCatalog())

	graph, err := r.Resolve(t.Context(), "d-law")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if graph.Kind != catalog.KindDiscipline {
		t.Errorf("Kind = %q, want discipline", graph.Kind)
	}
	if len(graph.Lessons) != 2 {
		t.Errorf("Lessons count = %d, want 2", len(graph.Lessons))
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := catalog.NewResolver(sharedContentCatalog())

	_, err := r.Resolve(t.Context(), "missing")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
	if catalog.IsRepositoryError(err) {
		t.Error("NotFound must not classify as a repository error")
	}
}

// failingRepo simulates a transport failure on every lookup.
type failingRepo struct{}

func (failingRepo) CourseByID(context.Context, string) (catalog.Course, error) {
	return catalog.Course{}, &catalog.RepositoryError{Op: "CourseByID", Err: errors.New("connection refused")}
}

func (failingRepo) DisciplineByID(context.Context, string) (catalog.Discipline, error) {
	return catalog.Discipline{}, &catalog.RepositoryError{Op: "DisciplineByID", Err: errors.New("connection refused")}
}

func (failingRepo) LessonsByIDs(context.Context, []string) ([]catalog.Lesson, error) {
	return nil, &catalog.RepositoryError{Op: "LessonsByIDs", Err: errors.New("connection refused")}
}

func (failingRepo) TopicsByIDs(context.Context, []string) ([]catalog.Topic, error) {
	return nil, &catalog.RepositoryError{Op: "TopicsByIDs", Err: errors.New("connection refused")}
}

func TestResolve_RepositoryErrorIsNotNotFound(t *testing.T) {
	r := catalog.NewResolver(failingRepo{})

	_, err := r.Resolve(t.Context(), "crs-1")
	if err == nil {
		t.Fatal("Resolve() should fail on repository error")
	}
	if errors.Is(err, catalog.ErrNotFound) {
		t.Error("repository error must not classify as NotFound")
	}
	if !catalog.IsRepositoryError(err) {
		t.Error("expected a repository error")
	}
}

func TestResolve_SlugTranslation(t *testing.T) {
	c := sharedContentCatalog()
	c.PutDiscipline(catalog.Discipline{
		ID:        "matematica-basica",
		Title:     "Matemática Básica",
		LessonIDs: []string{"l-1"},
	})
	r := catalog.NewResolver(c)

	graph, err := r.Resolve(t.Context(), "Matemática Básica")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if graph.ID != "matematica-basica" {
		t.Errorf("ID = %q, want matematica-basica", graph.ID)
	}
}

func TestCountUnique_SharedLessonCountsOnce(t *testing.T) {
	c := sharedContentCatalog()
	r := catalog.NewResolver(c)
	graph, err := r.Resolve(t.Context(), "crs-1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	uc := catalog.CountUnique(graph.Lessons)

	// Per-discipline sums would give 4+3=7 topic references; the union is 4.
	if uc.Topics != 4 {
		t.Errorf("Topics = %d, want 4", uc.Topics)
	}
	if uc.Sections != 5 {
		t.Errorf("Sections = %d, want 5", uc.Sections)
	}
	if len(uc.LessonIDs) != 3 {
		t.Errorf("LessonIDs size = %d, want 3", len(uc.LessonIDs))
	}
}

func TestCountUnique_OrderIndependent(t *testing.T) {
	lessons := []catalog.Lesson{
		{ID: "a", TopicIDs: []string{"t1"}, SectionIDs: []string{"s1", "s2"}},
		{ID: "b", TopicIDs: []string{"t1", "t2"}, SectionIDs: []string{"s3"}},
	}
	reversed := []catalog.Lesson{lessons[1], lessons[0]}
	duplicated := []catalog.Lesson{lessons[0], lessons[1], lessons[0]}

	base := catalog.CountUnique(lessons)
	for name, input := range map[string][]catalog.Lesson{
		"reversed":   reversed,
		"duplicated": duplicated,
	} {
		got := catalog.CountUnique(input)
		if got.Topics != base.Topics || got.Sections != base.Sections {
			t.Errorf("%s: counts (%d,%d) differ from base (%d,%d)",
				name, got.Topics, got.Sections, base.Topics, base.Sections)
		}
	}
}

func TestCountUnique_Empty(t *testing.T) {
	uc := catalog.CountUnique(nil)
	if uc.Topics != 0 || uc.Sections != 0 {
		t.Errorf("empty input should count zero, got (%d,%d)", uc.Topics, uc.Sections)
	}
}
