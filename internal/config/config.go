package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the namespace for environment overrides, e.g. SURVEY_LOGGING_LEVEL.
const EnvPrefix = "SURVEY"

// Excess respondent row policies.
const (
	ExcessRowsReject = "reject"
	ExcessRowsIgnore = "ignore"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Parser    ParserConfig    `yaml:"parser" envconfig:"PARSER"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ParserConfig controls how the survey input is read
type ParserConfig struct {
	CommentPrefix  string `yaml:"comment_prefix" envconfig:"COMMENT_PREFIX"`
	ExcessRows     string `yaml:"excess_rows" envconfig:"EXCESS_ROWS"`
	MaxLineBytes   int    `yaml:"max_line_bytes" envconfig:"MAX_LINE_BYTES"`
	MaxRespondents int    `yaml:"max_respondents" envconfig:"MAX_RESPONDENTS"` // upper bound on the declared count
}

// ReportConfig controls report rendering and export
type ReportConfig struct {
	Title      string `yaml:"title" envconfig:"TITLE"`
	Format     string `yaml:"format" envconfig:"FORMAT"`
	CSVBOM     bool   `yaml:"csv_bom" envconfig:"CSV_BOM"`
	JSONIndent bool   `yaml:"json_indent" envconfig:"JSON_INDENT"`
}

// TelemetryConfig controls the trace and metrics files written after a run.
// Empty paths disable the corresponding output.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/surveystats.log",
		},
		Parser: ParserConfig{
			CommentPrefix:  "#",
			ExcessRows:     ExcessRowsReject,
			MaxLineBytes:   1 << 20, // 1MB
			MaxRespondents: 1_000_000,
		},
		Report: ReportConfig{
			Title:      "ECS Student Survey",
			Format:     "text",
			CSVBOM:     false,
			JSONIndent: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "surveystats",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and SURVEY_* environment variables, in increasing precedence.
// An empty path falls back to SURVEY_CONFIG and then to the well-known
// locations; a missing file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = getConfigFilePath()
	}

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Only variables that are set override; unset ones leave file values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks the configuration and normalizes case-insensitive values
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	c.Logging.Output = strings.ToLower(c.Logging.Output)
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	if c.Parser.CommentPrefix == "" {
		return fmt.Errorf("comment prefix must not be empty")
	}

	c.Parser.ExcessRows = strings.ToLower(c.Parser.ExcessRows)
	if c.Parser.ExcessRows != ExcessRowsReject && c.Parser.ExcessRows != ExcessRowsIgnore {
		return fmt.Errorf("invalid excess rows policy: %q", c.Parser.ExcessRows)
	}

	if c.Parser.MaxLineBytes <= 0 {
		return fmt.Errorf("max line bytes must be positive")
	}

	if c.Parser.MaxRespondents <= 0 {
		return fmt.Errorf("max respondents must be positive")
	}

	c.Report.Format = strings.ToLower(c.Report.Format)
	switch c.Report.Format {
	case "text", "csv", "json", "xlsx":
	default:
		return fmt.Errorf("invalid report format: %q", c.Report.Format)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"surveystats.yaml",
		"configs/surveystats.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}
