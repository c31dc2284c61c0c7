package report_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/praxis-ed/studyengine/internal/cycle"
	"github.com/praxis-ed/studyengine/internal/performance"
	"github.com/praxis-ed/studyengine/internal/progress"
	"github.com/praxis-ed/studyengine/internal/report"
)

func TestWriteWorkbook(t *testing.T) {
	summary := progress.Summary{TotalSections: 4, CompletedSections: 3, Percent: 75}
	result := performance.Result{Percent: 88, MeetsGoal: true}
	alloc := cycle.Allocation{
		UserID:           "u1",
		CourseID:         "crs-1",
		TotalHoursBudget: 40,
		Entries: []cycle.Entry{
			{DisciplineID: "d-law", Active: true, Hours: 20, Color: "#F44336"},
			{DisciplineID: "d-admin", Active: false, Hours: 20, Color: "#2196F3"},
		},
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, summary, result, alloc); err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Progress" || sheets[1] != "Study Cycle" {
		t.Fatalf("sheets = %v, want [Progress, Study Cycle]", sheets)
	}

	got, err := f.GetCellValue("Progress", "B4")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "75" {
		t.Errorf("progress percent cell = %q, want 75", got)
	}

	got, err = f.GetCellValue("Study Cycle", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "d-law" {
		t.Errorf("first cycle row = %q, want d-law", got)
	}
}
