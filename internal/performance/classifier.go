// Package performance classifies practice attempt accuracy against a
// learner-set goal.
package performance

import (
	"fmt"
	"math"
)

// AttemptSummary aggregates a learner's attempts for one topic (or any
// larger grouping).
type AttemptSummary struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Add merges another summary into this one.
func (s AttemptSummary) Add(other AttemptSummary) AttemptSummary {
	return AttemptSummary{
		Total:   s.Total + other.Total,
		Correct: s.Correct + other.Correct,
		Wrong:   s.Wrong + other.Wrong,
	}
}

// Goal bounds for the learner-set accuracy threshold.
const (
	MinGoal = 1
	MaxGoal = 100
)

// ValidateGoal rejects goals outside [MinGoal, MaxGoal]. Callers keep their
// previous valid value on error.
func ValidateGoal(goal int) error {
	if goal < MinGoal || goal > MaxGoal {
		return fmt.Errorf("goal must be between %d and %d, got %d", MinGoal, MaxGoal, goal)
	}
	return nil
}

// ClampGoal forces a goal into [MinGoal, MaxGoal], for callers that prefer
// coercion over rejection (e.g. when seeding defaults).
func ClampGoal(goal int) int {
	if goal < MinGoal {
		return MinGoal
	}
	if goal > MaxGoal {
		return MaxGoal
	}
	return goal
}

// Result is a classification outcome.
type Result struct {
	Percent   int  `json:"percent"`
	MeetsGoal bool `json:"meets_goal"`
}

// Classify computes the accuracy percentage and whether it meets the goal.
// Zero attempts classify as 0% and therefore always below goal (the goal's
// lower bound is 1): an untouched topic is surfaced, never silently passed.
func Classify(sum AttemptSummary, goal int) Result {
	pct := 0
	if sum.Total > 0 {
		pct = int(math.Round(100 * float64(sum.Correct) / float64(sum.Total)))
	}
	return Result{
		Percent:   pct,
		MeetsGoal: pct >= ClampGoal(goal),
	}
}

// ClassifyAggregate classifies a set of summaries as a whole. Numerators and
// denominators are summed before dividing, so the aggregate is weighted by
// attempt volume rather than averaging per-topic ratios.
func ClassifyAggregate(sums []AttemptSummary, goal int) Result {
	var agg AttemptSummary
	for _, s := range sums {
		agg = agg.Add(s)
	}
	return Classify(agg, goal)
}
