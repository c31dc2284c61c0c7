// Package cycle manages study-cycle time allocations: how a learner's
// weekly hour budget is distributed across a course's disciplines.
package cycle

import (
	"fmt"
	"time"
)

// Hour bounds per discipline. The per-entry value is a daily-hours
// semantic even though the overall budget is weekly.
const (
	MinHours = 0.0
	MaxHours = 24.0
)

// palette is the fixed color sequence for new entries, cycled when
// disciplines outnumber it.
var palette = []string{
	"#F44336", "#2196F3", "#4CAF50", "#FF9800",
	"#9C27B0", "#00BCD4", "#FFEB3B", "#795548",
	"#607D8B", "#E91E63", "#8BC34A", "#3F51B5",
}

// ColorAt returns the palette color for a position.
func ColorAt(i int) string {
	if i < 0 {
		i = 0
	}
	return palette[i%len(palette)]
}

// Entry is one discipline's share of the study cycle.
type Entry struct {
	DisciplineID string  `json:"discipline_id"`
	Active       bool    `json:"active"`
	Hours        float64 `json:"hours"`
	Color        string  `json:"color"`
}

// Allocation is the per-learner, per-course study-cycle record. Entries keep
// their display order.
type Allocation struct {
	UserID           string    `json:"user_id"`
	CourseID         string    `json:"course_id"`
	TotalHoursBudget float64   `json:"total_hours_budget"`
	Entries          []Entry   `json:"entries"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ValidateHours rejects per-discipline hours outside [MinHours, MaxHours].
func ValidateHours(hours float64) error {
	if hours < MinHours || hours > MaxHours {
		return fmt.Errorf("hours must be between %v and %v, got %v", MinHours, MaxHours, hours)
	}
	return nil
}

func clampHours(hours float64) float64 {
	if hours < MinHours {
		return MinHours
	}
	if hours > MaxHours {
		return MaxHours
	}
	return hours
}

// Clone returns a deep copy.
func (a Allocation) Clone() Allocation {
	out := a
	out.Entries = make([]Entry, len(a.Entries))
	copy(out.Entries, a.Entries)
	return out
}

func (a Allocation) indexOf(disciplineID string) int {
	for i, e := range a.Entries {
		if e.DisciplineID == disciplineID {
			return i
		}
	}
	return -1
}

// ToggleActive flips one discipline's active flag, returning the new value.
// Nothing is persisted; saving is an explicit caller action.
func (a Allocation) ToggleActive(disciplineID string) (Allocation, error) {
	i := a.indexOf(disciplineID)
	if i < 0 {
		return a, fmt.Errorf("discipline %s not in allocation", disciplineID)
	}
	out := a.Clone()
	out.Entries[i].Active = !out.Entries[i].Active
	out.UpdatedAt = time.Now()
	return out, nil
}

// SetHours sets one discipline's hours, returning the new value. Hours
// outside [MinHours, MaxHours] are rejected and the previous value stands.
func (a Allocation) SetHours(disciplineID string, hours float64) (Allocation, error) {
	if err := ValidateHours(hours); err != nil {
		return a, err
	}
	i := a.indexOf(disciplineID)
	if i < 0 {
		return a, fmt.Errorf("discipline %s not in allocation", disciplineID)
	}
	out := a.Clone()
	out.Entries[i].Hours = hours
	out.UpdatedAt = time.Now()
	return out, nil
}

// Reorder moves the entry at from to position to, returning the new value.
func (a Allocation) Reorder(from, to int) (Allocation, error) {
	if from < 0 || from >= len(a.Entries) || to < 0 || to >= len(a.Entries) {
		return a, fmt.Errorf("reorder indexes out of range: %d -> %d of %d", from, to, len(a.Entries))
	}
	out := a.Clone()
	entry := out.Entries[from]
	out.Entries = append(out.Entries[:from], out.Entries[from+1:]...)
	rest := append([]Entry{}, out.Entries[to:]...)
	out.Entries = append(append(out.Entries[:to], entry), rest...)
	out.UpdatedAt = time.Now()
	return out, nil
}

// ActiveHours sums the hours of active entries.
func (a Allocation) ActiveHours() float64 {
	var total float64
	for _, e := range a.Entries {
		if e.Active {
			total += e.Hours
		}
	}
	return total
}
