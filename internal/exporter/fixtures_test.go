package exporter

import (
	"surveystats/pkg/contracts/domain"
)

var (
	questionX = domain.Question{Index: 0, Label: "Do you like X"}
	questionY = domain.Question{Index: 1, Label: "Do you like Y"}
)

func freqs(n int, pairs ...any) []domain.OptionFrequency {
	out := make([]domain.OptionFrequency, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		count := pairs[i+1].(int)
		out = append(out, domain.OptionFrequency{
			Label:   pairs[i].(string),
			Count:   count,
			Percent: 100 * float64(count) / float64(n),
		})
	}
	return out
}

// exampleStats is the aggregation of the two-respondent example survey.
func exampleStats() *domain.SurveyStatistics {
	return &domain.SurveyStatistics{
		NumRespondents: 2,
		Flags:          domain.ReportFlags{RelativePercents: true, Averages: true, Demographics: true},
		ScaleSize:      4,
		RelativePercents: []domain.QuestionDistribution{
			{Question: questionX, Frequencies: freqs(2, "disagree", 0, "partially disagree", 0, "partially agree", 0, "agree", 2)},
			{Question: questionY, Frequencies: freqs(2, "disagree", 1, "partially disagree", 0, "partially agree", 0, "agree", 1)},
		},
		Averages: []domain.QuestionAverage{
			{Question: questionX, Average: 4},
			{Question: questionY, Average: 2.5},
		},
		Demographics: []domain.DemographicDistribution{
			{Category: domain.CategoryUndergradProgram, Frequencies: freqs(2, "CS", 1, "EE", 1)},
			{Category: domain.CategoryResidenceStatus, Frequencies: freqs(2, "OnCampus", 1, "OffCampus", 1)},
		},
	}
}
