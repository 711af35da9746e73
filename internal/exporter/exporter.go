package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"surveystats/internal/config"
	"surveystats/internal/errors"
	"surveystats/internal/files"
	"surveystats/internal/infrastructure"
	"surveystats/internal/validation"
	"surveystats/pkg/contracts/domain"
)

// Format is a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatCSV, FormatJSON, FormatXLSX}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	case "txt":
		return FormatText, nil
	default:
		return "", errors.NewConfigError(fmt.Sprintf("format %q is not one of text, csv, json, xlsx", s), errors.ErrUnknownFormat)
	}
}

// FormatFromPath infers the format from an output file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// Options controls rendering details shared by all formats.
type Options struct {
	Title      string
	CSVBOM     bool
	JSONIndent bool
}

// OptionsFromConfig maps the report section of the configuration.
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		Title:      cfg.Title,
		CSVBOM:     cfg.CSVBOM,
		JSONIndent: cfg.JSONIndent,
	}
}

// Exporter renders statistics in any supported format.
type Exporter struct {
	logger  *slog.Logger
	opts    Options
	text    *TextRenderer
	csv     *CSVWriter
	paths   *validation.FileValidator
	files   *files.Manager
	metrics *infrastructure.PipelineMetrics
}

// NewExporter creates an exporter. metrics may be nil.
func NewExporter(logger *slog.Logger, opts Options, metrics *infrastructure.PipelineMetrics) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	return &Exporter{
		logger:  logger.With(slog.String("component", "exporter")),
		opts:    opts,
		text:    NewTextRenderer(opts.Title),
		csv:     NewCSVWriter(),
		paths:   validation.NewFileValidator(logger),
		files:   files.NewManager(logger),
		metrics: metrics,
	}
}

// Export writes stats to w in the given format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, stats *domain.SurveyStatistics) error {
	if stats == nil {
		return errors.NewAppValidationError("no statistics to export")
	}

	var err error
	switch format {
	case FormatText:
		err = e.text.Render(w, stats)
	case FormatCSV:
		err = e.csv.WriteStatistics(w, stats, e.opts.CSVBOM)
	case FormatJSON:
		err = WriteJSON(w, e.opts.Title, stats, e.opts.JSONIndent)
	case FormatXLSX:
		err = WriteXLSX(w, e.opts.Title, stats)
	default:
		return errors.NewConfigError(fmt.Sprintf("format %q is not supported", format), errors.ErrUnknownFormat)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to export %s report", format), err)
	}

	e.metrics.RecordExport(ctx, string(format))
	e.logger.DebugContext(ctx, "report exported", slog.String("format", string(format)))
	return nil
}

// Render exports into memory so nothing reaches the destination unless
// rendering succeeded.
func (e *Exporter) Render(ctx context.Context, format Format, stats *domain.SurveyStatistics) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Export(ctx, &buf, format, stats); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders stats and writes them to path, creating its directory.
// An existing file is replaced only after rendering succeeded.
func (e *Exporter) WriteFile(ctx context.Context, path string, format Format, stats *domain.SurveyStatistics) error {
	content, err := e.Render(ctx, format, stats)
	if err != nil {
		return err
	}

	if err := e.paths.ValidateOutputPath(path); err != nil {
		return errors.NewStorageError("invalid output path", err)
	}

	if err := e.files.WriteFile(path, content, 0644); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}

	e.logger.InfoContext(ctx, "report written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("bytes", len(content)))
	return nil
}
