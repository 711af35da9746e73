package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"surveystats/pkg/contracts/domain"
)

func openWorkbook(t *testing.T, stats *domain.SurveyStatistics) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "ECS Student Survey", stats))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteXLSX_AllSections(t *testing.T) {
	f := openWorkbook(t, exampleStats())

	assert.Equal(t, []string{SheetSummary, SheetRelativePercents, SheetAverages, SheetDemographics}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Value"}, summary[0])
	assert.Equal(t, []string{"Title", "ECS Student Survey"}, summary[1])
	assert.Equal(t, []string{"Respondents", "2"}, summary[2])

	percents, err := f.GetRows(SheetRelativePercents)
	require.NoError(t, err)
	require.Len(t, percents, 9)
	assert.Equal(t, []string{"1", "Do you like X", "agree", "2", "100"}, percents[4])

	averages, err := f.GetRows(SheetAverages)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "Do you like Y", "2.5"}, averages[2])

	demos, err := f.GetRows(SheetDemographics)
	require.NoError(t, err)
	assert.Equal(t, []string{"RESIDENCE STATUS", "OffCampus", "1", "50"}, demos[4])
}

func TestWriteXLSX_OnlySelectedSheets(t *testing.T) {
	stats := exampleStats()
	stats.Flags = domain.ReportFlags{Demographics: true}

	f := openWorkbook(t, stats)
	assert.Equal(t, []string{SheetSummary, SheetDemographics}, f.GetSheetList())
}

func TestWriteXLSX_ZeroRespondents(t *testing.T) {
	stats := &domain.SurveyStatistics{Flags: domain.ReportFlags{Averages: true}, ScaleSize: 4}

	f := openWorkbook(t, stats)
	rows, err := f.GetRows(SheetAverages)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
