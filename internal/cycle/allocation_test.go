package cycle_test

import (
	"testing"

	"github.com/praxis-ed/studyengine/internal/cycle"
)

func sampleAllocation() cycle.Allocation {
	return cycle.Allocation{
		UserID:           "u1",
		CourseID:         "crs-1",
		TotalHoursBudget: 40,
		Entries: []cycle.Entry{
			{DisciplineID: "A", Active: true, Hours: 10, Color: "#111111"},
			{DisciplineID: "B", Active: true, Hours: 15, Color: "#222222"},
			{DisciplineID: "C", Active: false, Hours: 15, Color: "#333333"},
		},
	}
}

func TestToggleActive(t *testing.T) {
	a := sampleAllocation()

	got, err := a.ToggleActive("B")
	if err != nil {
		t.Fatalf("ToggleActive() error = %v", err)
	}
	if got.Entries[1].Active {
		t.Error("B should be inactive after toggle")
	}
	// Original value untouched.
	if !a.Entries[1].Active {
		t.Error("mutation must not modify the receiver")
	}
}

func TestToggleActive_Unknown(t *testing.T) {
	a := sampleAllocation()
	if _, err := a.ToggleActive("nope"); err == nil {
		t.Error("ToggleActive() should error for unknown discipline")
	}
}

func TestSetHours(t *testing.T) {
	a := sampleAllocation()

	got, err := a.SetHours("A", 4.5)
	if err != nil {
		t.Fatalf("SetHours() error = %v", err)
	}
	if got.Entries[0].Hours != 4.5 {
		t.Errorf("Hours = %v, want 4.5", got.Entries[0].Hours)
	}
}

func TestSetHours_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
	}{
		{"negative", -1},
		{"over-a-day", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sampleAllocation()
			got, err := a.SetHours("A", tt.hours)
			if err == nil {
				t.Fatal("SetHours() should reject out-of-range hours")
			}
			// Previous valid value retained.
			if got.Entries[0].Hours != 10 {
				t.Errorf("Hours = %v, want previous value 10", got.Entries[0].Hours)
			}
		})
	}
}

func TestReorder(t *testing.T) {
	a := sampleAllocation()

	got, err := a.Reorder(2, 0)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	want := []string{"C", "A", "B"}
	for i, id := range want {
		if got.Entries[i].DisciplineID != id {
			t.Errorf("entry %d = %q, want %q", i, got.Entries[i].DisciplineID, id)
		}
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	a := sampleAllocation()
	if _, err := a.Reorder(0, 5); err == nil {
		t.Error("Reorder() should reject out-of-range indexes")
	}
}

func TestActiveHours(t *testing.T) {
	a := sampleAllocation()
	if got := a.ActiveHours(); got != 25 {
		t.Errorf("ActiveHours() = %v, want 25 (inactive C excluded)", got)
	}
}
