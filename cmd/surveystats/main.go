package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"surveystats/internal/config"
	"surveystats/internal/dataprocessing"
	"surveystats/internal/errors"
	"surveystats/internal/exporter"
	"surveystats/internal/infrastructure"
	"surveystats/internal/validation"
	"surveystats/pkg/contracts"
)

// stdinPath selects standard input for --input.
const stdinPath = "-"

// options holds the raw flag values shared by the commands.
type options struct {
	input       string
	format      string
	output      string
	configPath  string
	logLevel    string
	metricsFile string
	traceFile   string
}

// cli carries the process streams so commands can be run from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	opts   options
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "surveystats",
		Short: "Summarize student survey responses",
		Long: `surveystats reads a survey file (header lines, respondent count, then one
row per respondent) and prints relative answer frequencies, average answers
per question and demographic breakdowns.

Running it without a subcommand is the same as "surveystats report".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runReport,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&c.opts.input, "input", "i", stdinPath, "survey file to read (- for stdin)")
	persistent.StringVar(&c.opts.configPath, "config", "", "YAML configuration file")
	persistent.StringVar(&c.opts.logLevel, "log-level", "", "log level: debug|info|warn|error")
	persistent.StringVar(&c.opts.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here after the run")
	persistent.StringVar(&c.opts.traceFile, "trace-file", "", "write pipeline spans as JSON here")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Parse, validate and summarize a survey",
		Args:  cobra.NoArgs,
		RunE:  c.runReport,
	}

	// The root command and report share the output flags.
	for _, cmd := range []*cobra.Command{rootCmd, reportCmd} {
		cmd.Flags().StringVarP(&c.opts.format, "format", "f", "", "report format: text|csv|json|xlsx (default from config or output extension)")
		cmd.Flags().StringVarP(&c.opts.output, "output", "o", "", "write the report to this file instead of stdout")
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a survey file without producing a report",
		Args:  cobra.NoArgs,
		RunE:  c.runValidate,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, contracts.FullVersionString())
		},
	}

	rootCmd.AddCommand(reportCmd, validateCmd, versionCmd)
	return rootCmd
}

// session is the per-run state built from configuration and flags.
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	stderr    io.Writer
	telemetry *infrastructure.Telemetry
	ctx       context.Context
}

func (c *cli) start(cmd *cobra.Command) (*session, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, c.stderr)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize logging", err)
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	logger.DebugContext(ctx, "run started",
		slog.String("command", cmd.Name()),
		slog.String("input", c.opts.input),
		slog.String("version", contracts.Version))

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		closeLog(c.stderr, closer)
		return nil, errors.NewConfigError("failed to initialize telemetry", err)
	}

	return &session{cfg: cfg, logger: logger, logCloser: closer, stderr: c.stderr, telemetry: tel, ctx: ctx}, nil
}

// closeLog closes the log sink and reports a failure on stderr.
func closeLog(stderr io.Writer, closer io.Closer) {
	if err := closer.Close(); err != nil {
		fmt.Fprintf(stderr, "warning: failed to close log file: %v\n", err)
	}
}

// finish flushes metrics and spans. Flush failures are logged and do not
// fail the run.
func (s *session) finish() {
	if err := s.telemetry.WriteMetrics(""); err != nil {
		s.logger.WarnContext(s.ctx, "failed to write metrics file", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.WarnContext(s.ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
	closeLog(s.stderr, s.logCloser)
}

// fail logs err with its context before it is returned to the caller.
func (s *session) fail(err error) error {
	attrs := []any{slog.String("error", err.Error())}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		attrs = append(attrs, appErr.LogAttrs()...)
	}
	s.logger.ErrorContext(s.ctx, "run failed", attrs...)
	return err
}

// loadConfig loads the configuration and applies flag overrides on top.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.opts.configPath)
	if err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.opts.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = c.opts.metricsFile
	}
	if flags.Changed("trace-file") {
		cfg.Telemetry.TraceFile = c.opts.traceFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// reportFormat picks the explicit --format, then the output extension, then
// the configured default.
func (c *cli) reportFormat(cfg *config.Config) (exporter.Format, error) {
	if c.opts.format != "" {
		return exporter.ParseFormat(c.opts.format)
	}
	if c.opts.output != "" {
		if f, ok := exporter.FormatFromPath(c.opts.output); ok {
			return f, nil
		}
	}
	return exporter.ParseFormat(cfg.Report.Format)
}

// openInput returns the survey reader for --input.
func (c *cli) openInput(logger *slog.Logger) (io.ReadCloser, error) {
	if c.opts.input == "" || c.opts.input == stdinPath {
		return io.NopCloser(c.stdin), nil
	}

	if err := validation.NewFileValidator(logger).ValidateFile(c.opts.input); err != nil {
		return nil, errors.NewStorageError("cannot read input", err)
	}

	f, err := os.Open(c.opts.input)
	if err != nil {
		return nil, errors.NewStorageError("cannot open input", err)
	}
	return f, nil
}

func (c *cli) newPipeline(s *session) *dataprocessing.Pipeline {
	opts := dataprocessing.PipelineOptions{
		Parser: dataprocessing.ParserOptionsFromConfig(s.cfg.Parser),
	}
	return dataprocessing.NewPipeline(s.logger, opts, s.telemetry)
}

func (c *cli) runReport(cmd *cobra.Command, args []string) error {
	s, err := c.start(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	format, err := c.reportFormat(s.cfg)
	if err != nil {
		return s.fail(err)
	}

	in, err := c.openInput(s.logger)
	if err != nil {
		return s.fail(err)
	}
	defer in.Close()

	result, err := c.newPipeline(s).Run(s.ctx, in)
	if err != nil {
		return s.fail(err)
	}

	exp := exporter.NewExporter(s.logger, exporter.OptionsFromConfig(s.cfg.Report), s.telemetry.Metrics)

	if c.opts.output != "" {
		if err := exp.WriteFile(s.ctx, c.opts.output, format, result.Statistics); err != nil {
			return s.fail(err)
		}
		return nil
	}

	content, err := exp.Render(s.ctx, format, result.Statistics)
	if err != nil {
		return s.fail(err)
	}
	if _, err := c.stdout.Write(content); err != nil {
		return s.fail(errors.NewStorageError("failed to write report", err))
	}
	return nil
}

func (c *cli) runValidate(cmd *cobra.Command, args []string) error {
	s, err := c.start(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	in, err := c.openInput(s.logger)
	if err != nil {
		return s.fail(err)
	}
	defer in.Close()

	result, err := c.newPipeline(s).Validate(s.ctx, in)
	if err != nil {
		return s.fail(err)
	}

	fmt.Fprintf(c.stdout, "ok: %d respondents, %d questions, %d answer options (%d lines, %d comments)\n",
		result.Survey.NumRespondents(),
		result.Survey.NumQuestions(),
		len(result.Survey.AnswerOptions),
		result.ParseStats.Lines,
		result.ParseStats.CommentLines)
	return nil
}
