package domain

// Demographic category names as they appear in reports.
const (
	CategoryUndergradProgram = "UNDERGRADUATE PROGRAM"
	CategoryResidenceStatus  = "RESIDENCE STATUS"
)

// OptionFrequency is the count and share of respondents matching one label.
type OptionFrequency struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// QuestionDistribution is the answer distribution for a single question.
type QuestionDistribution struct {
	Question    Question          `json:"question"`
	Frequencies []OptionFrequency `json:"frequencies"`
}

// Matched returns the number of respondents whose answer matched any option.
func (d QuestionDistribution) Matched() int {
	total := 0
	for _, f := range d.Frequencies {
		total += f.Count
	}
	return total
}

// QuestionAverage is the weighted average answer for a single question.
// Weights run from 1 for the first answer option to K for the last.
type QuestionAverage struct {
	Question Question `json:"question"`
	Average  float64  `json:"average"`
}

// DemographicDistribution is the attribute distribution for one demographic
// category.
type DemographicDistribution struct {
	Category    string            `json:"category"`
	Frequencies []OptionFrequency `json:"frequencies"`
}

// UnmatchedCounts tallies values that matched no declared option.
type UnmatchedCounts struct {
	Answers           int `json:"answers"`
	UndergradPrograms int `json:"undergrad_programs"`
	ResidenceStatuses int `json:"residence_statuses"`
}

// Total returns the sum of all unmatched values.
func (u UnmatchedCounts) Total() int {
	return u.Answers + u.UndergradPrograms + u.ResidenceStatuses
}

// SurveyStatistics is the complete aggregation result consumed by renderers
// and exporters. Sections not selected by Flags are nil. When NumRespondents
// is zero every section is empty.
type SurveyStatistics struct {
	NumRespondents   int                       `json:"num_respondents"`
	Flags            ReportFlags               `json:"flags"`
	ScaleSize        int                       `json:"scale_size"`
	RelativePercents []QuestionDistribution    `json:"relative_percents,omitempty"`
	Averages         []QuestionAverage         `json:"averages,omitempty"`
	Demographics     []DemographicDistribution `json:"demographics,omitempty"`
	Unmatched        UnmatchedCounts           `json:"unmatched"`
}

// HasRespondents reports whether percentage and average sections are defined.
func (s *SurveyStatistics) HasRespondents() bool {
	return s.NumRespondents > 0
}
