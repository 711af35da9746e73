package exporter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystats/pkg/contracts/domain"
)

const exampleReport = `ECS Student Survey
SURVEY RESPONSE STATISTICS

NUMBER OF RESPONDENTS: 2

#####
FOR EACH QUESTION/ASSERTION BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH LEVEL OF AGREEMENT

1. Do you like X
0.00: disagree
0.00: partially disagree
0.00: partially agree
100.00: agree

2. Do you like Y
50.00: disagree
0.00: partially disagree
0.00: partially agree
50.00: agree

#####
FOR EACH QUESTION/ASSERTION BELOW, THE AVERAGE RESPONSE IS SHOWN (FROM 1-DISAGREEMENT TO 4-AGREEMENT)

1. Do you like X - 4.00
2. Do you like Y - 2.50

#####
FOR EACH DEMOGRAPHIC CATEGORY BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH ATTRIBUTE VALUE

UNDERGRADUATE PROGRAM
50.00: CS
50.00: EE

RESIDENCE STATUS
50.00: OnCampus
50.00: OffCampus
`

func render(t *testing.T, r *TextRenderer, stats *domain.SurveyStatistics) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, stats))
	return buf.String()
}

func TestTextRenderer_AllSections(t *testing.T) {
	assert.Equal(t, exampleReport, render(t, NewTextRenderer(""), exampleStats()))
}

func TestTextRenderer_SelectedSections(t *testing.T) {
	stats := exampleStats()
	stats.Flags = domain.ReportFlags{Averages: true}

	want := `Course Feedback
SURVEY RESPONSE STATISTICS

NUMBER OF RESPONDENTS: 2

#####
FOR EACH QUESTION/ASSERTION BELOW, THE AVERAGE RESPONSE IS SHOWN (FROM 1-DISAGREEMENT TO 4-AGREEMENT)

1. Do you like X - 4.00
2. Do you like Y - 2.50
`
	assert.Equal(t, want, render(t, NewTextRenderer("Course Feedback"), stats))
}

func TestTextRenderer_NoSections(t *testing.T) {
	stats := exampleStats()
	stats.Flags = domain.ReportFlags{}

	assert.Equal(t, "ECS Student Survey\nSURVEY RESPONSE STATISTICS\n\nNUMBER OF RESPONDENTS: 2\n", render(t, NewTextRenderer(""), stats))
}

func TestTextRenderer_ScaleSizeInBanner(t *testing.T) {
	stats := exampleStats()
	stats.Flags = domain.ReportFlags{Averages: true}
	stats.ScaleSize = 5

	assert.Contains(t, render(t, NewTextRenderer(""), stats), "(FROM 1-DISAGREEMENT TO 5-AGREEMENT)")
}

func TestTextRenderer_ZeroRespondents(t *testing.T) {
	stats := &domain.SurveyStatistics{
		Flags:     domain.ReportFlags{RelativePercents: true, Demographics: true},
		ScaleSize: 4,
	}

	want := `ECS Student Survey
SURVEY RESPONSE STATISTICS

NUMBER OF RESPONDENTS: 0

#####
FOR EACH QUESTION/ASSERTION BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH LEVEL OF AGREEMENT

NO RESPONDENTS TO SUMMARIZE

#####
FOR EACH DEMOGRAPHIC CATEGORY BELOW, RELATIVE PERCENTUAL FREQUENCIES ARE COMPUTED FOR EACH ATTRIBUTE VALUE

NO RESPONDENTS TO SUMMARIZE
`
	assert.Equal(t, want, render(t, NewTextRenderer(""), stats))
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestTextRenderer_WriteError(t *testing.T) {
	err := NewTextRenderer("").Render(&failingWriter{after: 2}, exampleStats())
	assert.EqualError(t, err, "disk full")
}
