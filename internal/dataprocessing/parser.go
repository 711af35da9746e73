package dataprocessing

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"surveystats/internal/config"
	"surveystats/internal/errors"
	"surveystats/pkg/contracts/domain"
)

// ParseState names the header line or record the parser expects next.
type ParseState int

const (
	AwaitFlags ParseState = iota
	AwaitUndergradOptions
	AwaitResidenceOptions
	AwaitQuestions
	AwaitAnswerOptions
	AwaitRespondentCount
	ReadingRespondents
)

var stateFields = [...]string{
	AwaitFlags:            "report flags",
	AwaitUndergradOptions: "undergraduate options",
	AwaitResidenceOptions: "residence options",
	AwaitQuestions:        "questions",
	AwaitAnswerOptions:    "answer options",
	AwaitRespondentCount:  "respondent count",
	ReadingRespondents:    "respondent",
}

// Field returns the human-readable name of the line awaited in this state.
func (s ParseState) Field() string {
	if s < 0 || int(s) >= len(stateFields) {
		return "unknown"
	}
	return stateFields[s]
}

func (s ParseState) String() string {
	switch s {
	case AwaitFlags:
		return "AwaitFlags"
	case AwaitUndergradOptions:
		return "AwaitUndergradOptions"
	case AwaitResidenceOptions:
		return "AwaitResidenceOptions"
	case AwaitQuestions:
		return "AwaitQuestions"
	case AwaitAnswerOptions:
		return "AwaitAnswerOptions"
	case AwaitRespondentCount:
		return "AwaitRespondentCount"
	case ReadingRespondents:
		return "ReadingRespondents"
	default:
		return fmt.Sprintf("ParseState(%d)", int(s))
	}
}

const (
	optionSeparator   = ","
	questionSeparator = ";"
	defaultMaxLine    = 1 << 20
	defaultMaxRows    = 1_000_000
	initialRowCap     = 1024
)

// ParserOptions controls comment detection, excess row handling, the
// maximum physical line length and the largest accepted respondent count.
type ParserOptions struct {
	CommentPrefix  string
	ExcessRows     string // config.ExcessRowsReject or config.ExcessRowsIgnore
	MaxLineBytes   int
	MaxRespondents int
}

// DefaultParserOptions returns the options used when nothing is configured.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		CommentPrefix:  "#",
		ExcessRows:     config.ExcessRowsReject,
		MaxLineBytes:   defaultMaxLine,
		MaxRespondents: defaultMaxRows,
	}
}

// ParserOptionsFromConfig maps the parser section of the configuration.
func ParserOptionsFromConfig(cfg config.ParserConfig) ParserOptions {
	return ParserOptions{
		CommentPrefix:  cfg.CommentPrefix,
		ExcessRows:     cfg.ExcessRows,
		MaxLineBytes:   cfg.MaxLineBytes,
		MaxRespondents: cfg.MaxRespondents,
	}
}

// ParseStats describes the physical input consumed by one parse.
type ParseStats struct {
	Lines          int `json:"lines"`
	CommentLines   int `json:"comment_lines"`
	BlankLines     int `json:"blank_lines"`
	RespondentRows int `json:"respondent_rows"`
	IgnoredRows    int `json:"ignored_rows"`
}

// Parser reads the line-oriented survey format into a domain.SurveyData.
//
// Comment and blank lines are skipped without advancing the state machine,
// so header lines are recognized by order rather than by line number.
type Parser struct {
	logger *slog.Logger
	opts   ParserOptions
}

// NewParser creates a parser. Zero-valued options fall back to the defaults.
func NewParser(logger *slog.Logger, opts ParserOptions) *Parser {
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultParserOptions()
	if opts.CommentPrefix == "" {
		opts.CommentPrefix = defaults.CommentPrefix
	}
	if opts.ExcessRows == "" {
		opts.ExcessRows = defaults.ExcessRows
	}
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = defaults.MaxLineBytes
	}
	if opts.MaxRespondents <= 0 {
		opts.MaxRespondents = defaults.MaxRespondents
	}

	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		opts:   opts,
	}
}

// Parse reads a complete survey from r.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*domain.SurveyData, error) {
	data, _, err := p.ParseWithStats(ctx, r)
	return data, err
}

// ParseWithStats reads a complete survey from r and reports what was consumed.
// The stats are filled in even when parsing fails.
func (p *Parser) ParseWithStats(ctx context.Context, r io.Reader) (*domain.SurveyData, ParseStats, error) {
	run := &parseRun{
		parser: p,
		ctx:    ctx,
		data:   domain.NewSurveyData(),
		state:  AwaitFlags,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, p.opts.MaxLineBytes)), p.opts.MaxLineBytes)

	for scanner.Scan() {
		run.line++
		run.stats.Lines++

		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, p.opts.CommentPrefix):
			run.stats.CommentLines++
			continue
		case strings.TrimSpace(line) == "":
			run.stats.BlankLines++
			continue
		}

		if err := run.consume(line); err != nil {
			p.logFailure(ctx, err)
			return nil, run.stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		var parseErr *errors.AppError
		if stderrors.Is(err, bufio.ErrTooLong) {
			parseErr = errors.NewLineError(run.line+1, run.state.Field(),
				fmt.Sprintf("line exceeds %d bytes", p.opts.MaxLineBytes), errors.ErrLineTooLong)
		} else {
			parseErr = errors.NewParsingError("failed to read survey input", err)
		}
		p.logFailure(ctx, parseErr)
		return nil, run.stats, parseErr
	}

	if err := run.finish(); err != nil {
		p.logFailure(ctx, err)
		return nil, run.stats, err
	}

	p.logger.InfoContext(ctx, "survey parsed",
		slog.Int("lines", run.stats.Lines),
		slog.Int("questions", run.data.NumQuestions()),
		slog.Int("respondents", run.data.Filled),
		slog.Int("ignored_rows", run.stats.IgnoredRows))

	return run.data, run.stats, nil
}

func (p *Parser) logFailure(ctx context.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		p.logger.ErrorContext(ctx, "survey parse failed", append(appErr.LogAttrs(), "error", err.Error())...)
		return
	}
	p.logger.ErrorContext(ctx, "survey parse failed", slog.String("error", err.Error()))
}

// parseRun is the mutable state of a single ParseWithStats call.
type parseRun struct {
	parser *Parser
	ctx    context.Context
	data   *domain.SurveyData
	state  ParseState
	line   int
	stats  ParseStats
	warned bool
}

func (r *parseRun) consume(line string) error {
	var err error
	switch r.state {
	case AwaitFlags:
		r.data.Flags, err = r.parseFlags(line)
	case AwaitUndergradOptions:
		r.data.UndergradOptions = splitOptions(line)
	case AwaitResidenceOptions:
		r.data.ResidenceOptions = splitOptions(line)
	case AwaitQuestions:
		r.data.Questions = splitQuestions(line)
	case AwaitAnswerOptions:
		r.data.AnswerOptions = splitOptions(line)
	case AwaitRespondentCount:
		err = r.parseRespondentCount(line)
	case ReadingRespondents:
		return r.parseRespondent(line)
	}
	if err != nil {
		return err
	}

	r.advance()
	return nil
}

func (r *parseRun) advance() {
	next := r.state + 1
	r.parser.logger.DebugContext(r.ctx, "parser state change",
		slog.Int("line", r.line),
		slog.String("from", r.state.String()),
		slog.String("to", next.String()))
	r.state = next
}

func (r *parseRun) fail(message string, cause error) *errors.AppError {
	return errors.NewLineError(r.line, r.state.Field(), message, cause)
}

// parseFlags accepts "f0,f1,f2" or the two-flag legacy form "f0,f1".
func (r *parseRun) parseFlags(line string) (domain.ReportFlags, error) {
	fields := strings.Split(line, optionSeparator)
	if len(fields) != 2 && len(fields) != 3 {
		return domain.ReportFlags{}, r.fail(fmt.Sprintf("expected 3 values, found %d", len(fields)), errors.ErrInvalidHeader)
	}

	values := make([]bool, 3)
	for i, field := range fields {
		field = strings.TrimSpace(field)
		n, err := strconv.Atoi(field)
		if err != nil {
			return domain.ReportFlags{}, r.fail(fmt.Sprintf("%q is not an integer", field), errors.ErrInvalidHeader)
		}
		if n != 0 && n != 1 {
			return domain.ReportFlags{}, r.fail(fmt.Sprintf("flag %d must be 0 or 1, got %d", i+1, n), errors.ErrInvalidHeader)
		}
		values[i] = n == 1
	}

	return domain.ReportFlags{
		RelativePercents: values[0],
		Averages:         values[1],
		Demographics:     values[2],
	}, nil
}

func (r *parseRun) parseRespondentCount(line string) error {
	field := strings.TrimSpace(line)
	n, err := strconv.Atoi(field)
	if err != nil {
		return r.fail(fmt.Sprintf("%q is not an integer", field), errors.ErrInvalidHeader)
	}
	if n < 0 {
		return r.fail(fmt.Sprintf("count must not be negative, got %d", n), errors.ErrInvalidHeader)
	}
	if limit := r.parser.opts.MaxRespondents; n > limit {
		return r.fail(fmt.Sprintf("count %d exceeds the limit of %d", n, limit), errors.ErrInvalidHeader)
	}

	// Rows are appended as they arrive; the declared count only bounds them.
	r.data.DeclaredCount = n
	r.data.Respondents = make([]domain.Respondent, 0, min(n, initialRowCap))
	return nil
}

func (r *parseRun) parseRespondent(line string) error {
	if r.data.Filled >= r.data.DeclaredCount {
		if r.parser.opts.ExcessRows != config.ExcessRowsIgnore {
			return r.fail(fmt.Sprintf("row exceeds declared respondent count %d", r.data.DeclaredCount),
				errors.ErrTooManyRespondents)
		}
		r.stats.IgnoredRows++
		if !r.warned {
			r.warned = true
			r.parser.logger.WarnContext(r.ctx, "ignoring respondent rows beyond declared count",
				slog.Int("line", r.line),
				slog.Int("declared", r.data.DeclaredCount))
		}
		return nil
	}

	fields := strings.Split(line, optionSeparator)
	want := 2 + r.data.NumQuestions()
	if len(fields) != want {
		return r.fail(fmt.Sprintf("expected %d fields, found %d", want, len(fields)), errors.ErrFieldCount)
	}

	r.data.Respondents = append(r.data.Respondents, domain.Respondent{
		UndergradProgram: fields[0],
		ResidenceStatus:  fields[1],
		Answers:          fields[2:],
	})
	r.data.Filled = len(r.data.Respondents)
	r.stats.RespondentRows++
	return nil
}

func (r *parseRun) finish() error {
	if r.state != ReadingRespondents {
		return errors.NewParsingError(
			fmt.Sprintf("input ended after line %d while waiting for %s", r.line, r.state.Field()),
			errors.ErrUnexpectedEOF).
			WithContext("line", r.line).
			WithContext("field", r.state.Field())
	}

	if r.data.Filled < r.data.DeclaredCount {
		return errors.NewParsingError(
			fmt.Sprintf("expected %d respondent rows, found %d", r.data.DeclaredCount, r.data.Filled),
			errors.ErrTooFewRespondents).
			WithContext("line", r.line).
			WithContext("field", r.state.Field())
	}

	return nil
}

// splitLabels splits a header line and drops empty tokens, so "CS,EE," and
// "CS,,EE" both yield two labels.
func splitLabels(line, sep string) []string {
	labels := make([]string, 0, strings.Count(line, sep)+1)
	for _, label := range strings.Split(line, sep) {
		if label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func splitOptions(line string) domain.OptionSet {
	return domain.OptionSet(splitLabels(line, optionSeparator))
}

func splitQuestions(line string) []domain.Question {
	labels := splitLabels(line, questionSeparator)
	questions := make([]domain.Question, len(labels))
	for i, label := range labels {
		questions[i] = domain.Question{Index: i, Label: label}
	}
	return questions
}
