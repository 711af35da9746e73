package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"surveystats/pkg/contracts/domain"
)

// CSV section identifiers written in the first column.
const (
	SectionSummary          = "summary"
	SectionRelativePercents = "relative_percents"
	SectionAverages         = "averages"
	SectionDemographics     = "demographics"
	SectionUnmatched        = "unmatched"
)

// CSVHeaders is the header row of the statistics CSV.
var CSVHeaders = []string{"Section", "Item", "Question", "Label", "Count", "Percent", "Average"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct{}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the headers and records to w
func (c *CSVWriter) WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteStatistics writes stats as one long-format table: a summary block,
// then one row per selected section entry, then the unmatched tallies.
func (c *CSVWriter) WriteStatistics(w io.Writer, stats *domain.SurveyStatistics, bom bool) error {
	return c.WriteCSV(w, WriteOptions{
		Headers:   CSVHeaders,
		Records:   StatisticsRecords(stats),
		BOMPrefix: bom,
	})
}

// StatisticsRecords flattens stats into CSV rows matching CSVHeaders.
func StatisticsRecords(stats *domain.SurveyStatistics) [][]string {
	records := [][]string{
		{SectionSummary, "respondents", "", "", formatInt(stats.NumRespondents), "", ""},
		{SectionSummary, "scale_size", "", "", formatInt(stats.ScaleSize), "", ""},
		{SectionSummary, "relative_percents", "", "", "", "", formatBool(stats.Flags.RelativePercents)},
		{SectionSummary, "averages", "", "", "", "", formatBool(stats.Flags.Averages)},
		{SectionSummary, "demographics", "", "", "", "", formatBool(stats.Flags.Demographics)},
	}

	for _, dist := range stats.RelativePercents {
		for _, f := range dist.Frequencies {
			records = append(records, []string{
				SectionRelativePercents,
				formatInt(dist.Question.Number()),
				dist.Question.Label,
				f.Label,
				formatInt(f.Count),
				formatFloat(f.Percent),
				"",
			})
		}
	}

	for _, avg := range stats.Averages {
		records = append(records, []string{
			SectionAverages,
			formatInt(avg.Question.Number()),
			avg.Question.Label,
			"", "", "",
			formatFloat(avg.Average),
		})
	}

	for _, demo := range stats.Demographics {
		for _, f := range demo.Frequencies {
			records = append(records, []string{
				SectionDemographics,
				demo.Category,
				"",
				f.Label,
				formatInt(f.Count),
				formatFloat(f.Percent),
				"",
			})
		}
	}

	records = append(records,
		[]string{SectionUnmatched, "answers", "", "", formatInt(stats.Unmatched.Answers), "", ""},
		[]string{SectionUnmatched, "undergrad_programs", "", "", formatInt(stats.Unmatched.UndergradPrograms), "", ""},
		[]string{SectionUnmatched, "residence_statuses", "", "", formatInt(stats.Unmatched.ResidenceStatuses), "", ""},
	)

	return records
}
