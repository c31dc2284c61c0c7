package cycle

import (
	"log/slog"
	"time"

	"github.com/praxis-ed/studyengine/internal/catalog"
)

// ReconcileResult is the tagged outcome of reconciling a saved allocation
// against a course's current discipline set: which entries were carried
// forward, which were newly added, and which saved entries are orphaned
// (their discipline left the course). Orphans are dropped from the working
// allocation but the persisted record is untouched until an explicit save.
type ReconcileResult struct {
	Allocation Allocation
	Preserved  []string
	Added      []string
	Orphaned   []string
}

// Reconcile builds the working allocation for a course's current discipline
// set.
//
// With no existing allocation, every discipline gets an active entry with an
// equal share of defaultBudgetHours and a palette color by position, in
// course order.
//
// With an existing allocation, matching entries are copied forward unchanged
// (flag, hours, color, and their relative order); newly-added disciplines are
// appended active with existing.TotalHoursBudget divided by the *current*
// discipline count. The resulting hour sum may therefore drift from the
// budget; that is intentional, observed behavior.
func Reconcile(existing *Allocation, current []catalog.Discipline, defaultBudgetHours float64) ReconcileResult {
	if existing == nil {
		return seed(current, defaultBudgetHours)
	}

	currentIDs := make(map[string]bool, len(current))
	for _, d := range current {
		currentIDs[d.ID] = true
	}

	out := Allocation{
		UserID:           existing.UserID,
		CourseID:         existing.CourseID,
		TotalHoursBudget: existing.TotalHoursBudget,
		UpdatedAt:        existing.UpdatedAt,
	}

	var result ReconcileResult

	// Carried-forward entries keep their saved relative order.
	kept := make(map[string]bool, len(existing.Entries))
	for _, e := range existing.Entries {
		if currentIDs[e.DisciplineID] {
			out.Entries = append(out.Entries, e)
			kept[e.DisciplineID] = true
			result.Preserved = append(result.Preserved, e.DisciplineID)
		} else {
			result.Orphaned = append(result.Orphaned, e.DisciplineID)
		}
	}

	share := 0.0
	if len(current) > 0 {
		share = clampHours(existing.TotalHoursBudget / float64(len(current)))
	}
	for _, d := range current {
		if kept[d.ID] {
			continue
		}
		out.Entries = append(out.Entries, Entry{
			DisciplineID: d.ID,
			Active:       true,
			Hours:        share,
			Color:        ColorAt(len(out.Entries)),
		})
		result.Added = append(result.Added, d.ID)
	}

	if len(result.Added) > 0 || len(result.Orphaned) > 0 {
		slog.Debug("study cycle reconciled",
			"course_id", existing.CourseID,
			"preserved", len(result.Preserved),
			"added", len(result.Added),
			"orphaned", len(result.Orphaned),
		)
	}

	result.Allocation = out
	return result
}

func seed(current []catalog.Discipline, defaultBudgetHours float64) ReconcileResult {
	out := Allocation{
		TotalHoursBudget: defaultBudgetHours,
		UpdatedAt:        time.Now(),
	}

	share := 0.0
	if len(current) > 0 {
		share = clampHours(defaultBudgetHours / float64(len(current)))
	}

	var result ReconcileResult
	for i, d := range current {
		out.Entries = append(out.Entries, Entry{
			DisciplineID: d.ID,
			Active:       true,
			Hours:        share,
			Color:        ColorAt(i),
		})
		result.Added = append(result.Added, d.ID)
	}

	result.Allocation = out
	return result
}
