package performance_test

import (
	"testing"

	"github.com/praxis-ed/studyengine/internal/performance"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		sum       performance.AttemptSummary
		goal      int
		wantPct   int
		wantMeets bool
	}{
		{"meets-exactly", performance.AttemptSummary{Total: 10, Correct: 7, Wrong: 3}, 70, 70, true},
		{"below", performance.AttemptSummary{Total: 10, Correct: 6, Wrong: 4}, 70, 60, false},
		{"above", performance.AttemptSummary{Total: 4, Correct: 4}, 90, 100, true},
		{"rounding-up", performance.AttemptSummary{Total: 3, Correct: 2, Wrong: 1}, 67, 67, true},
		{"zero-attempts-low-goal", performance.AttemptSummary{}, 1, 0, false},
		{"zero-attempts-high-goal", performance.AttemptSummary{}, 100, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := performance.Classify(tt.sum, tt.goal)
			if got.Percent != tt.wantPct {
				t.Errorf("Percent = %d, want %d", got.Percent, tt.wantPct)
			}
			if got.MeetsGoal != tt.wantMeets {
				t.Errorf("MeetsGoal = %v, want %v", got.MeetsGoal, tt.wantMeets)
			}
		})
	}
}

func TestClassifyAggregate_WeightedByVolume(t *testing.T) {
	sums := []performance.AttemptSummary{
		{Total: 10, Correct: 8, Wrong: 2},
		{Total: 10, Correct: 1, Wrong: 9},
	}

	// 9 correct out of 20 is 45%. Equal volumes make the ratio average
	// coincide; the uneven-volume case below pins the weighting.
	got := performance.ClassifyAggregate(sums, 50)
	if got.Percent != 45 {
		t.Errorf("Percent = %d, want 45", got.Percent)
	}
	if got.MeetsGoal {
		t.Error("45%% must not meet a 50%% goal")
	}
}

func TestClassifyAggregate_UnevenVolumes(t *testing.T) {
	sums := []performance.AttemptSummary{
		{Total: 100, Correct: 90, Wrong: 10}, // 90% on heavy volume
		{Total: 2, Correct: 0, Wrong: 2},     // 0% on light volume
	}

	// Volume-weighted: 90/102 ≈ 88%, not the 45% a ratio average would give.
	got := performance.ClassifyAggregate(sums, 80)
	if got.Percent != 88 {
		t.Errorf("Percent = %d, want 88", got.Percent)
	}
	if !got.MeetsGoal {
		t.Error("88%% should meet an 80%% goal")
	}
}

func TestClassifyAggregate_Empty(t *testing.T) {
	got := performance.ClassifyAggregate(nil, 50)
	if got.Percent != 0 || got.MeetsGoal {
		t.Errorf("empty aggregate = %+v, want 0%% below goal", got)
	}
}

func TestValidateGoal(t *testing.T) {
	tests := []struct {
		name    string
		goal    int
		wantErr bool
	}{
		{"min", 1, false},
		{"max", 100, false},
		{"mid", 70, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"over", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := performance.ValidateGoal(tt.goal)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGoal(%d) error = %v, wantErr %v", tt.goal, err, tt.wantErr)
			}
		})
	}
}

func TestClampGoal(t *testing.T) {
	if got := performance.ClampGoal(0); got != 1 {
		t.Errorf("ClampGoal(0) = %d, want 1", got)
	}
	if got := performance.ClampGoal(150); got != 100 {
		t.Errorf("ClampGoal(150) = %d, want 100", got)
	}
	if got := performance.ClampGoal(55); got != 55 {
		t.Errorf("ClampGoal(55) = %d, want 55", got)
	}
}

func TestMemoryAttempts(t *testing.T) {
	log := performance.NewMemoryAttempts()

	attempts := []performance.Attempt{
		{UserID: "u1", Filter: "topic:rights", Correct: true},
		{UserID: "u1", Filter: "topic:rights", Correct: false},
		{UserID: "u1", Filter: "topic:other", Correct: true},
		{UserID: "u2", Filter: "topic:rights", Correct: true},
	}
	for _, a := range attempts {
		if err := log.Record(a); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	sum, err := log.SummaryByFilter(t.Context(), "topic:rights", "u1")
	if err != nil {
		t.Fatalf("SummaryByFilter() error = %v", err)
	}
	if sum.Total != 2 || sum.Correct != 1 || sum.Wrong != 1 {
		t.Errorf("summary = %+v, want {2 1 1}", sum)
	}
}

func TestMemoryAttempts_RequiresUser(t *testing.T) {
	log := performance.NewMemoryAttempts()
	if err := log.Record(performance.Attempt{Filter: "f"}); err == nil {
		t.Error("Record() should reject an empty user_id")
	}
}
