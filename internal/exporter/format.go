package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a float64 value with exactly 2 decimal places, the
// precision used by every report format.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// round2 rounds to the 2 decimal places shown in text and CSV output so
// workbook cells hold the same numbers.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
