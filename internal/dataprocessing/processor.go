package dataprocessing

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"surveystats/internal/errors"
	"surveystats/internal/infrastructure"
	"surveystats/internal/validation"
	"surveystats/pkg/contracts/domain"
)

// Pipeline stage names used for spans and metrics.
const (
	StageParse     = "parse"
	StageValidate  = "validate"
	StageAggregate = "aggregate"
)

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Parser ParserOptions
}

// Result is everything a successful run produced.
type Result struct {
	Survey     *domain.SurveyData
	Statistics *domain.SurveyStatistics
	ParseStats ParseStats
}

// Pipeline runs parse, validate, and aggregate in order. A failure at any
// stage ends the run and no partial statistics are returned.
type Pipeline struct {
	logger     *slog.Logger
	parser     *Parser
	validator  *validation.SurveyValidator
	aggregator *Aggregator
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
}

// NewPipeline wires the pipeline stages. tel may be nil, in which case no
// spans or metrics are recorded.
func NewPipeline(logger *slog.Logger, opts PipelineOptions, tel *infrastructure.Telemetry) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		logger:     logger.With(slog.String("component", "pipeline")),
		parser:     NewParser(logger, opts.Parser),
		validator:  validation.NewSurveyValidator(logger),
		aggregator: NewAggregator(logger),
		tracer:     noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
	}
	if tel != nil {
		p.tracer = tel.Tracer
		p.metrics = tel.Metrics
	}
	return p
}

// Run parses r, validates the survey, and aggregates it.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "survey.run")
	defer span.End()

	result, err := p.Validate(ctx, r)
	if err != nil {
		return nil, err
	}

	var stats *domain.SurveyStatistics
	err = p.stage(ctx, StageAggregate, func(ctx context.Context) error {
		var aggErr error
		stats, aggErr = p.aggregator.Aggregate(ctx, result.Survey)
		return aggErr
	})
	if err != nil {
		return nil, err
	}

	p.metrics.RecordUnmatched(ctx, "answers", stats.Unmatched.Answers)
	p.metrics.RecordUnmatched(ctx, "undergrad_programs", stats.Unmatched.UndergradPrograms)
	p.metrics.RecordUnmatched(ctx, "residence_statuses", stats.Unmatched.ResidenceStatuses)

	span.SetAttributes(
		attribute.Int("survey.respondents", stats.NumRespondents),
		attribute.Int("survey.unmatched", stats.Unmatched.Total()),
	)

	p.logger.InfoContext(ctx, "survey pipeline complete",
		slog.Int("respondents", stats.NumRespondents),
		slog.Int("questions", result.Survey.NumQuestions()),
		slog.Int("unmatched", stats.Unmatched.Total()))

	result.Statistics = stats
	return result, nil
}

// Validate runs only the parse and validate stages. The returned Result has
// no Statistics.
func (p *Pipeline) Validate(ctx context.Context, r io.Reader) (*Result, error) {
	result := &Result{}

	err := p.stage(ctx, StageParse, func(ctx context.Context) error {
		data, stats, parseErr := p.parser.ParseWithStats(ctx, r)
		result.ParseStats = stats
		p.metrics.RecordParse(ctx, stats.Lines, stats.CommentLines+stats.BlankLines, stats.RespondentRows)
		if parseErr != nil {
			p.metrics.RecordParseError(ctx, parseErrorField(parseErr))
			return parseErr
		}
		result.Survey = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageValidate, func(ctx context.Context) error {
		return p.validator.Validate(ctx, result.Survey)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// stage runs fn inside its own span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "survey."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	p.metrics.RecordStage(ctx, name, duration, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	infrastructure.AddSpanEvent(ctx, "stage.complete",
		attribute.String("stage", name),
		attribute.Int64("duration_us", duration.Microseconds()))
	return nil
}

func parseErrorField(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		if field, ok := appErr.Context["field"].(string); ok {
			return field
		}
	}
	return "input"
}
