// Package report exports learning progress as an Excel workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/progress"
)

// Sheet names in the exported workbook.
const (
	SheetSummary  = "Summary"
	SheetChapters = "Chapters"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	summaryHeader  = []any{"Topic", "Completed", "Total", "Percent"}
	chaptersHeader = []any{"Topic", "Subtopic", "Chapter", "Path", "Completed"}
)

// Build lays out a workbook with one row per topic on the summary sheet and
// one row per chapter on the chapters sheet. The caller closes the file.
func Build(t course.Tree, l *progress.Ledger, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetChapters); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	if err := writeSummary(f, progress.Summarize(t, l)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeChapters(f, t, l); err != nil {
		f.Close()
		return nil, err
	}

	err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Learning progress",
		Creator: "pai-course",
		Created: generatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("doc props: %w", err)
	}
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, t course.Tree, l *progress.Ledger, generatedAt time.Time) error {
	f, err := Build(t, l, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, summaries []progress.TopicSummary) error {
	if err := writeHeader(f, SheetSummary, summaryHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{s.Title, s.Completed, s.Total, s.Percent()}
		if err := setRow(f, SheetSummary, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 40)
}

func writeChapters(f *excelize.File, t course.Tree, l *progress.Ledger) error {
	if err := writeHeader(f, SheetChapters, chaptersHeader); err != nil {
		return err
	}
	r := 2
	for ti, topic := range t {
		for si, sub := range topic.Subtopics {
			for ci, ch := range sub.Chapters {
				p := course.Path{Topic: ti, Subtopic: si, Chapter: ci}
				done := "no"
				if l.IsComplete(p) {
					done = "yes"
				}
				if err := setRow(f, SheetChapters, r, []any{topic.Title, sub.Title, ch.Title, progress.Key(p), done}); err != nil {
					return err
				}
				r++
			}
		}
	}
	return f.SetColWidth(SheetChapters, "A", "C", 32)
}

func writeHeader(f *excelize.File, sheet string, header []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
