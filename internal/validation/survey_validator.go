package validation

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"surveystats/internal/errors"
	"surveystats/pkg/contracts/domain"
)

// SurveyValidator checks a parsed survey before it is aggregated: struct
// rules declared on the domain types plus the count relationships between
// the header and the respondent rows.
type SurveyValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSurveyValidator creates a survey validator
func NewSurveyValidator(logger *slog.Logger) *SurveyValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &SurveyValidator{
		validate: v,
		logger:   logger.With(slog.String("component", "survey_validator")),
	}
}

// Validate returns a VALIDATION AppError listing every problem found, or nil.
func (v *SurveyValidator) Validate(ctx context.Context, data *domain.SurveyData) error {
	if data == nil {
		return errors.NewAppValidationError("survey data is missing")
	}

	var problems []string

	if err := v.validate.StructCtx(ctx, data); err != nil {
		var fieldErrs validator.ValidationErrors
		if !stderrors.As(err, &fieldErrs) {
			return errors.NewAppError(errors.ErrTypeValidation, "survey validation failed", err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, formatValidationError(fe))
		}
	}

	problems = append(problems, checkCounts(data)...)

	if len(problems) > 0 {
		v.logger.WarnContext(ctx, "survey validation failed",
			slog.Int("problems", len(problems)),
			slog.String("first", problems[0]))
		return errors.NewFieldValidationError(problems)
	}

	v.logger.DebugContext(ctx, "survey validated",
		slog.Int("questions", data.NumQuestions()),
		slog.Int("respondents", data.NumRespondents()))
	return nil
}

// checkCounts compares the declared sizes with what was actually populated.
func checkCounts(data *domain.SurveyData) []string {
	var problems []string

	if data.Filled != data.DeclaredCount {
		problems = append(problems, fmt.Sprintf("declared %d respondents but %d rows were filled", data.DeclaredCount, data.Filled))
	}
	if len(data.Respondents) != data.Filled {
		problems = append(problems, fmt.Sprintf("%d rows were filled but %d are stored", data.Filled, len(data.Respondents)))
	}

	for i, q := range data.Questions {
		if q.Index != i {
			problems = append(problems, fmt.Sprintf("question %d has index %d", i+1, q.Index))
		}
	}

	for i, r := range data.Populated() {
		if len(r.Answers) != data.NumQuestions() {
			problems = append(problems, fmt.Sprintf("respondent %d has %d answers for %d questions", i+1, len(r.Answers), data.NumQuestions()))
		}
	}

	return problems
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := fieldPath(err)
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// fieldPath returns the JSON path of the failing field without the root
// struct name, e.g. "questions[1].label".
func fieldPath(err validator.FieldError) string {
	if _, path, ok := strings.Cut(err.Namespace(), "."); ok {
		return path
	}
	return err.Field()
}
