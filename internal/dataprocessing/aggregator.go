package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"surveystats/internal/errors"
	"surveystats/pkg/contracts/domain"
)

// RelativePercentsByQuestion returns, for every question, how many respondents
// chose each answer option and what share of all respondents that is.
// Answers that match no option are left out, so a question's percentages
// sum to at most 100.
func RelativePercentsByQuestion(data *domain.SurveyData) ([]domain.QuestionDistribution, error) {
	if err := checkAggregatable(data); err != nil {
		return nil, err
	}

	n := data.NumRespondents()
	result := make([]domain.QuestionDistribution, 0, data.NumQuestions())
	for _, q := range data.Questions {
		counts, _ := countAnswers(data, q.Index)
		result = append(result, domain.QuestionDistribution{
			Question:    q,
			Frequencies: frequencies(data.AnswerOptions, counts, n),
		})
	}
	return result, nil
}

// AveragesByQuestion returns the weighted average answer per question. The
// answer options are taken to run from lowest to highest agreement, so the
// k-th option (0-based) weighs k+1. The divisor is the respondent count,
// including respondents whose answer matched no option.
func AveragesByQuestion(data *domain.SurveyData) ([]domain.QuestionAverage, error) {
	if err := checkAggregatable(data); err != nil {
		return nil, err
	}

	n := data.NumRespondents()
	result := make([]domain.QuestionAverage, 0, data.NumQuestions())
	for _, q := range data.Questions {
		counts, _ := countAnswers(data, q.Index)
		weighted := 0
		for k, c := range counts {
			weighted += c * (k + 1)
		}
		result = append(result, domain.QuestionAverage{
			Question: q,
			Average:  float64(weighted) / float64(n),
		})
	}
	return result, nil
}

// DemographicFrequencies returns the undergraduate program distribution
// followed by the residence status distribution.
func DemographicFrequencies(data *domain.SurveyData) ([]domain.DemographicDistribution, error) {
	if err := checkAggregatable(data); err != nil {
		return nil, err
	}

	n := data.NumRespondents()
	undergrad, _ := countValues(data.UndergradOptions, data.Populated(), func(r domain.Respondent) string {
		return r.UndergradProgram
	})
	residence, _ := countValues(data.ResidenceOptions, data.Populated(), func(r domain.Respondent) string {
		return r.ResidenceStatus
	})

	return []domain.DemographicDistribution{
		{Category: domain.CategoryUndergradProgram, Frequencies: frequencies(data.UndergradOptions, undergrad, n)},
		{Category: domain.CategoryResidenceStatus, Frequencies: frequencies(data.ResidenceOptions, residence, n)},
	}, nil
}

// CountUnmatched tallies respondent values that match no declared option.
func CountUnmatched(data *domain.SurveyData) domain.UnmatchedCounts {
	var unmatched domain.UnmatchedCounts
	for _, q := range data.Questions {
		_, missed := countAnswers(data, q.Index)
		unmatched.Answers += missed
	}
	_, unmatched.UndergradPrograms = countValues(data.UndergradOptions, data.Populated(), func(r domain.Respondent) string {
		return r.UndergradProgram
	})
	_, unmatched.ResidenceStatuses = countValues(data.ResidenceOptions, data.Populated(), func(r domain.Respondent) string {
		return r.ResidenceStatus
	})
	return unmatched
}

// Aggregator computes the report sections selected by a survey's flags.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger.With(slog.String("component", "aggregator"))}
}

// Aggregate computes the selected sections and the unmatched tallies. With
// zero respondents the sections stay empty instead of failing.
func (a *Aggregator) Aggregate(ctx context.Context, data *domain.SurveyData) (*domain.SurveyStatistics, error) {
	if err := checkConsistent(data); err != nil {
		return nil, err
	}

	stats := &domain.SurveyStatistics{
		NumRespondents: data.NumRespondents(),
		Flags:          data.Flags,
		ScaleSize:      data.AnswerOptions.Len(),
		Unmatched:      CountUnmatched(data),
	}

	if !stats.HasRespondents() {
		a.logger.WarnContext(ctx, "survey has no respondents, sections left empty")
		return stats, nil
	}

	var err error
	if data.Flags.RelativePercents {
		if stats.RelativePercents, err = RelativePercentsByQuestion(data); err != nil {
			return nil, err
		}
	}
	if data.Flags.Averages {
		if stats.Averages, err = AveragesByQuestion(data); err != nil {
			return nil, err
		}
	}
	if data.Flags.Demographics {
		if stats.Demographics, err = DemographicFrequencies(data); err != nil {
			return nil, err
		}
	}

	if total := stats.Unmatched.Total(); total > 0 {
		a.logger.WarnContext(ctx, "values matched no declared option",
			slog.Int("answers", stats.Unmatched.Answers),
			slog.Int("undergrad_programs", stats.Unmatched.UndergradPrograms),
			slog.Int("residence_statuses", stats.Unmatched.ResidenceStatuses))
	}

	a.logger.DebugContext(ctx, "survey aggregated",
		slog.Int("respondents", stats.NumRespondents),
		slog.Int("questions", data.NumQuestions()),
		slog.Bool("relative_percents", data.Flags.RelativePercents),
		slog.Bool("averages", data.Flags.Averages),
		slog.Bool("demographics", data.Flags.Demographics))

	return stats, nil
}

// checkAggregatable guards the section operations against a missing survey,
// a survey with no respondents, and shapes that would index out of range.
func checkAggregatable(data *domain.SurveyData) error {
	if err := checkConsistent(data); err != nil {
		return err
	}
	if data.NumRespondents() == 0 {
		return errors.NewAggregationError("cannot compute percentages or averages", errors.ErrNoRespondents)
	}
	return nil
}

func checkConsistent(data *domain.SurveyData) error {
	if data == nil {
		return errors.NewAggregationError("no survey data", errors.ErrInconsistentSurvey)
	}
	if !data.Complete() {
		return errors.NewAggregationError(
			fmt.Sprintf("%d of %d respondent rows filled", data.Filled, data.DeclaredCount),
			errors.ErrInconsistentSurvey)
	}
	for i, r := range data.Respondents {
		if len(r.Answers) != data.NumQuestions() {
			return errors.NewAggregationError(
				fmt.Sprintf("respondent %d has %d answers for %d questions", i+1, len(r.Answers), data.NumQuestions()),
				errors.ErrInconsistentSurvey)
		}
	}
	return nil
}

// countAnswers counts matches per answer option for one question and
// returns the number of answers that matched nothing.
func countAnswers(data *domain.SurveyData, question int) ([]int, int) {
	return countValues(data.AnswerOptions, data.Populated(), func(r domain.Respondent) string {
		return r.Answers[question]
	})
}

// countValues matches each respondent's value against every option by exact
// string equality. A value equal to several duplicated labels counts for each.
func countValues(options domain.OptionSet, respondents []domain.Respondent, value func(domain.Respondent) string) ([]int, int) {
	counts := make([]int, options.Len())
	unmatched := 0
	for _, r := range respondents {
		v := value(r)
		matched := false
		for k, opt := range options {
			if v == opt {
				counts[k]++
				matched = true
			}
		}
		if !matched {
			unmatched++
		}
	}
	return counts, unmatched
}

func frequencies(options domain.OptionSet, counts []int, n int) []domain.OptionFrequency {
	result := make([]domain.OptionFrequency, len(options))
	for k, label := range options {
		result[k] = domain.OptionFrequency{
			Label:   label,
			Count:   counts[k],
			Percent: 100 * float64(counts[k]) / float64(n),
		}
	}
	return result
}
