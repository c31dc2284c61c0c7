package progress_test

import (
	"testing"

	"github.com/praxis-ed/studyengine/internal/progress"
)

func TestRecord_MarkDoneIdempotent(t *testing.T) {
	rec := progress.NewRecord("u1", "crs-1")

	rec.MarkDone("l-1", "s-1")
	rec.MarkDone("l-1", "s-1")

	if n := len(rec.CompletedIn("l-1")); n != 1 {
		t.Errorf("completed count = %d, want 1 after double completion", n)
	}
}

func TestRecord_MarkUndone(t *testing.T) {
	rec := progress.NewRecord("u1", "crs-1")

	rec.MarkDone("l-1", "s-1")
	rec.MarkDone("l-1", "s-2")
	rec.MarkUndone("l-1", "s-1")

	if rec.IsDone("l-1", "s-1") {
		t.Error("s-1 should be undone")
	}
	if !rec.IsDone("l-1", "s-2") {
		t.Error("s-2 should stay done")
	}

	// Undoing the last section drops the lesson entry entirely.
	rec.MarkUndone("l-1", "s-2")
	if rec.CompletedIn("l-1") != nil {
		t.Error("lesson entry should be removed when empty")
	}
}

func TestRecord_MarkUndone_MissingLesson(t *testing.T) {
	rec := progress.NewRecord("u1", "crs-1")
	rec.MarkUndone("l-unknown", "s-1") // must not panic
}

func TestRecord_Clone(t *testing.T) {
	rec := progress.NewRecord("u1", "crs-1")
	rec.MarkDone("l-1", "s-1")

	cp := rec.Clone()
	cp.MarkDone("l-1", "s-2")

	if rec.IsDone("l-1", "s-2") {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestMemoryStore_MissingReturnsEmpty(t *testing.T) {
	store := progress.NewMemoryStore()

	rec, err := store.Get(t.Context(), "u1", "crs-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec == nil || len(rec.Done) != 0 {
		t.Errorf("missing record should read as empty, got %+v", rec)
	}
}

func TestMemoryStore_UpsertRoundtrip(t *testing.T) {
	store := progress.NewMemoryStore()

	rec := progress.NewRecord("u1", "crs-1")
	rec.MarkDone("l-1", "s-1")
	if err := store.Upsert(t.Context(), rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(t.Context(), "u1", "crs-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.IsDone("l-1", "s-1") {
		t.Error("persisted completion missing after Get")
	}
}
