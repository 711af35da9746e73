package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"surveystats/pkg/contracts/domain"
)

// Workbook sheet names.
const (
	SheetSummary          = "Summary"
	SheetRelativePercents = "Relative Percents"
	SheetAverages         = "Averages"
	SheetDemographics     = "Demographics"
)

// WriteXLSX writes stats as a workbook. The Summary sheet is always present;
// the other sheets exist only for sections selected by stats.Flags.
func WriteXLSX(w io.Writer, title string, stats *domain.SurveyStatistics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw := &sheetWriter{f: f, bold: bold}

	sw.sheet(SheetSummary, []any{"Item", "Value"}, 28, 40)
	sw.row([]any{"Title", title})
	sw.row([]any{"Respondents", stats.NumRespondents})
	sw.row([]any{"Answer scale size", stats.ScaleSize})
	sw.row([]any{"Relative percents", stats.Flags.RelativePercents})
	sw.row([]any{"Averages", stats.Flags.Averages})
	sw.row([]any{"Demographics", stats.Flags.Demographics})
	sw.row([]any{"Unmatched answers", stats.Unmatched.Answers})
	sw.row([]any{"Unmatched undergraduate programs", stats.Unmatched.UndergradPrograms})
	sw.row([]any{"Unmatched residence statuses", stats.Unmatched.ResidenceStatuses})

	if stats.Flags.RelativePercents {
		sw.sheet(SheetRelativePercents, []any{"Question", "Text", "Label", "Count", "Percent"}, 10, 50, 24, 10, 10)
		for _, dist := range stats.RelativePercents {
			for _, fr := range dist.Frequencies {
				sw.row([]any{dist.Question.Number(), dist.Question.Label, fr.Label, fr.Count, round2(fr.Percent)})
			}
		}
	}

	if stats.Flags.Averages {
		sw.sheet(SheetAverages, []any{"Question", "Text", "Average"}, 10, 50, 10)
		for _, avg := range stats.Averages {
			sw.row([]any{avg.Question.Number(), avg.Question.Label, round2(avg.Average)})
		}
	}

	if stats.Flags.Demographics {
		sw.sheet(SheetDemographics, []any{"Category", "Label", "Count", "Percent"}, 26, 24, 10, 10)
		for _, demo := range stats.Demographics {
			for _, fr := range demo.Frequencies {
				sw.row([]any{demo.Category, fr.Label, fr.Count, round2(fr.Percent)})
			}
		}
	}

	if sw.err != nil {
		return sw.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetWriter appends rows to the current sheet and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	bold int
	name string
	next int
	err  error
}

// sheet switches to name, creating it unless it already exists, and writes
// a bold header row with the given column widths.
func (s *sheetWriter) sheet(name string, headers []any, widths ...float64) {
	if s.err != nil {
		return
	}
	if idx, _ := s.f.GetSheetIndex(name); idx < 0 {
		if _, err := s.f.NewSheet(name); err != nil {
			s.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
			return
		}
	}
	s.name, s.next = name, 1

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err == nil {
			err = s.f.SetColWidth(name, col, col, width)
		}
		if err != nil {
			s.err = fmt.Errorf("failed to size column %d of %s: %w", i+1, name, err)
			return
		}
	}

	s.row(headers)
	if s.err == nil {
		s.err = s.f.SetRowStyle(name, 1, 1, s.bold)
	}
}

func (s *sheetWriter) row(values []any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err == nil {
		err = s.f.SetSheetRow(s.name, cell, &values)
	}
	if err != nil {
		s.err = fmt.Errorf("failed to write row %d of %s: %w", s.next, s.name, err)
		return
	}
	s.next++
}
