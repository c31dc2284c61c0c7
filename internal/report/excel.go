// Package report exports a learner's study state as an xlsx workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/praxis-ed/studyengine/internal/cycle"
	"github.com/praxis-ed/studyengine/internal/performance"
	"github.com/praxis-ed/studyengine/internal/progress"
)

const (
	progressSheet = "Progress"
	cycleSheet    = "Study Cycle"
)

// WriteWorkbook writes a two-sheet workbook: overall progress and
// performance on the first sheet, the study-cycle allocation on the second.
func WriteWorkbook(w io.Writer, summary progress.Summary, result performance.Result, alloc cycle.Allocation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeProgressSheet(f, summary, result); err != nil {
		return err
	}
	if err := writeCycleSheet(f, alloc); err != nil {
		return err
	}

	// excelize seeds "Sheet1"; drop it after the real sheets exist.
	f.DeleteSheet("Sheet1")
	idx, err := f.GetSheetIndex(progressSheet)
	if err != nil {
		return fmt.Errorf("report: locate progress sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeProgressSheet(f *excelize.File, summary progress.Summary, result performance.Result) error {
	if _, err := f.NewSheet(progressSheet); err != nil {
		return fmt.Errorf("report: create progress sheet: %w", err)
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Sections completed", summary.CompletedSections},
		{"Sections total", summary.TotalSections},
		{"Progress %", summary.Percent},
		{"Performance %", result.Percent},
		{"Meets goal", result.MeetsGoal},
	}
	return writeRows(f, progressSheet, rows)
}

func writeCycleSheet(f *excelize.File, alloc cycle.Allocation) error {
	if _, err := f.NewSheet(cycleSheet); err != nil {
		return fmt.Errorf("report: create cycle sheet: %w", err)
	}

	rows := [][]any{
		{"Discipline", "Active", "Hours", "Color"},
	}
	for _, e := range alloc.Entries {
		rows = append(rows, []any{e.DisciplineID, e.Active, e.Hours, e.Color})
	}
	rows = append(rows,
		[]any{},
		[]any{"Weekly budget", alloc.TotalHoursBudget},
		[]any{"Active hours", alloc.ActiveHours()},
	)
	return writeRows(f, cycleSheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: set row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
