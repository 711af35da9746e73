package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"surveystats/internal/config"
	"surveystats/pkg/contracts"
)

// InstrumentationName is the tracer and meter scope used by the pipeline.
const InstrumentationName = "surveystats"

// Telemetry holds the tracing and metrics providers for one CLI run.
// Metrics are kept in a private Prometheus registry and written to a
// textfile on demand; spans go to the trace file when one is configured.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Registry       *prometheus.Registry
	Tracer         trace.Tracer
	Metrics        *PipelineMetrics
	Logger         *slog.Logger

	cfg       config.TelemetryConfig
	traceFile *os.File
}

// InitializeTelemetry builds the providers described by cfg. Tracing is a
// no-op unless cfg.TraceFile is set; metrics are always collected so the
// metrics file can be written at the end of the run.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	res := createResource(cfg)
	tel := &Telemetry{
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
		cfg:      cfg,
	}

	if err := tel.initializeTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := tel.initializeMetrics(res); err != nil {
		tel.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", tel.TracerProvider != nil),
		slog.String("metrics_file", cfg.MetricsFile))

	return tel, nil
}

// createResource describes the running service
func createResource(cfg config.TelemetryConfig) *resource.Resource {
	name := cfg.ServiceName
	if name == "" {
		name = InstrumentationName
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(contracts.Version),
	)
}

func (t *Telemetry) initializeTracing(res *resource.Resource) error {
	if t.cfg.TraceFile == "" {
		t.Tracer = noop.NewTracerProvider().Tracer(InstrumentationName)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.cfg.TraceFile), 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	file, err := os.Create(t.cfg.TraceFile)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Syncer exports each span as it ends.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)

	t.traceFile = file
	t.TracerProvider = tp
	t.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(t.Registry),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	metrics, err := CreatePipelineMetrics(mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version)))
	if err != nil {
		return err
	}

	t.MeterProvider = mp
	t.Metrics = metrics
	return nil
}

// WriteMetrics gathers the registry and writes it in the Prometheus text
// format, e.g. for the node_exporter textfile collector. An empty path
// falls back to the configured metrics file; if both are empty it does nothing.
func (t *Telemetry) WriteMetrics(path string) error {
	if path == "" {
		path = t.cfg.MetricsFile
	}
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	t.Logger.Debug("Metrics written", slog.String("path", path))
	return nil
}

// Shutdown flushes and releases the providers and the trace file.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("trace file close: %w", err))
	}

	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}

// PipelineMetrics holds the counters and histograms recorded while a survey
// file is parsed, aggregated, and exported. A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	LinesRead         metric.Int64Counter
	CommentLines      metric.Int64Counter
	RespondentsParsed metric.Int64Counter
	UnmatchedValues   metric.Int64Counter
	ParseErrors       metric.Int64Counter
	ReportsExported   metric.Int64Counter
	StageDuration     metric.Float64Histogram
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	linesRead, err := meter.Int64Counter(
		"survey_lines_read",
		metric.WithDescription("Total number of input lines read"),
	)
	if err != nil {
		return nil, err
	}

	commentLines, err := meter.Int64Counter(
		"survey_comment_lines",
		metric.WithDescription("Total number of comment or blank lines skipped"),
	)
	if err != nil {
		return nil, err
	}

	respondents, err := meter.Int64Counter(
		"survey_respondents_parsed",
		metric.WithDescription("Total number of respondent rows parsed"),
	)
	if err != nil {
		return nil, err
	}

	unmatched, err := meter.Int64Counter(
		"survey_unmatched_values",
		metric.WithDescription("Respondent values that matched no declared option"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter(
		"survey_parse_errors",
		metric.WithDescription("Total number of failed parses"),
	)
	if err != nil {
		return nil, err
	}

	exported, err := meter.Int64Counter(
		"survey_reports_exported",
		metric.WithDescription("Total number of reports exported"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"survey_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		LinesRead:         linesRead,
		CommentLines:      commentLines,
		RespondentsParsed: respondents,
		UnmatchedValues:   unmatched,
		ParseErrors:       parseErrors,
		ReportsExported:   exported,
		StageDuration:     stageDuration,
	}, nil
}

// RecordParse records the line and respondent counts of one parse.
func (m *PipelineMetrics) RecordParse(ctx context.Context, lines, comments, respondents int) {
	if m == nil {
		return
	}
	m.LinesRead.Add(ctx, int64(lines))
	m.CommentLines.Add(ctx, int64(comments))
	m.RespondentsParsed.Add(ctx, int64(respondents))
}

// RecordParseError counts a failed parse, labelled by the failing field.
func (m *PipelineMetrics) RecordParseError(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.ParseErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

// RecordUnmatched counts values that matched no option, per category.
func (m *PipelineMetrics) RecordUnmatched(ctx context.Context, category string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnmatchedValues.Add(ctx, int64(n), metric.WithAttributes(attribute.String("category", category)))
}

// RecordExport counts a rendered report in the given format.
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ReportsExported.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordStage records how long a pipeline stage took and whether it succeeded.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent adds an event with attributes to the current span
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
