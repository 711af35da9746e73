package exporter

import (
	"encoding/json"
	"fmt"
	"io"

	"surveystats/pkg/contracts"
	"surveystats/pkg/contracts/domain"
)

// JSONReport is the document written by the json format.
type JSONReport struct {
	Title      string                   `json:"title"`
	Version    string                   `json:"version"`
	Statistics *domain.SurveyStatistics `json:"statistics"`
}

// WriteJSON encodes stats with the report title and tool version.
func WriteJSON(w io.Writer, title string, stats *domain.SurveyStatistics, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(JSONReport{Title: title, Version: contracts.Version, Statistics: stats}); err != nil {
		return fmt.Errorf("failed to encode json report: %w", err)
	}
	return nil
}
