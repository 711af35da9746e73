package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surveystats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "#", cfg.Parser.CommentPrefix)
	assert.Equal(t, ExcessRowsReject, cfg.Parser.ExcessRows)
	assert.Equal(t, 1<<20, cfg.Parser.MaxLineBytes)
	assert.Equal(t, 1_000_000, cfg.Parser.MaxRespondents)
	assert.Equal(t, "ECS Student Survey", cfg.Report.Title)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.Empty(t, cfg.Telemetry.TraceFile)
	assert.Empty(t, cfg.Telemetry.MetricsFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
logging:
  level: debug
parser:
  excess_rows: ignore
report:
  title: Engineering Survey
  format: json
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, ExcessRowsIgnore, cfg.Parser.ExcessRows)
				assert.Equal(t, "Engineering Survey", cfg.Report.Title)
				assert.Equal(t, "json", cfg.Report.Format)
				// untouched fields keep defaults
				assert.Equal(t, "#", cfg.Parser.CommentPrefix)
			},
		},
		{
			name: "env overrides file",
			file: `
report:
  title: From File
`,
			env: map[string]string{
				"SURVEY_REPORT_TITLE":           "From Env",
				"SURVEY_LOGGING_LEVEL":          "ERROR",
				"SURVEY_PARSER_MAX_LINE_BYTES":  "4096",
				"SURVEY_PARSER_MAX_RESPONDENTS": "500",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "From Env", cfg.Report.Title)
				assert.Equal(t, "error", cfg.Logging.Level)
				assert.Equal(t, 4096, cfg.Parser.MaxLineBytes)
				assert.Equal(t, 500, cfg.Parser.MaxRespondents)
			},
		},
		{
			name: "telemetry paths from env",
			env: map[string]string{
				"SURVEY_TELEMETRY_METRICS_FILE": "/tmp/survey.prom",
				"SURVEY_TELEMETRY_TRACE_FILE":   "/tmp/trace.json",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/tmp/survey.prom", cfg.Telemetry.MetricsFile)
				assert.Equal(t, "/tmp/trace.json", cfg.Telemetry.TraceFile)
			},
		},
		{
			name:    "unknown file key is rejected",
			file:    "report:\n  colour: red\n",
			wantErr: "failed to load config from file",
		},
		{
			name:    "invalid env value",
			env:     map[string]string{"SURVEY_PARSER_MAX_LINE_BYTES": "lots"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "invalid policy fails validation",
			env:     map[string]string{"SURVEY_PARSER_EXCESS_ROWS": "grow"},
			wantErr: "invalid excess rows policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			t.Setenv("SURVEY_CONFIG", "")

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}
			// keep well-known locations out of the picture
			chdir(t, t.TempDir())

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ExampleFileMatchesDefaults(t *testing.T) {
	t.Setenv("SURVEY_CONFIG", "")

	cfg, err := Load(filepath.Join("..", "..", "configs", "surveystats.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	path := writeConfigFile(t, "report:\n  title: Via Env Path\n")
	t.Setenv("SURVEY_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Via Env Path", cfg.Report.Title)
}

func TestLoad_WellKnownLocation(t *testing.T) {
	t.Setenv("SURVEY_CONFIG", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "surveystats.yaml"), []byte("report:\n  format: csv\n"), 0644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Report.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid defaults", mutate: func(*Config) {}},
		{name: "uppercase values normalized", mutate: func(c *Config) {
			c.Logging.Level = "DEBUG"
			c.Report.Format = "XLSX"
		}},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: "invalid log level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid log format"},
		{name: "bad output", mutate: func(c *Config) { c.Logging.Output = "stdout" }, wantErr: "invalid log output"},
		{name: "file output needs path", mutate: func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, wantErr: "log file path is required"},
		{name: "empty comment prefix", mutate: func(c *Config) { c.Parser.CommentPrefix = "" }, wantErr: "comment prefix"},
		{name: "zero line limit", mutate: func(c *Config) { c.Parser.MaxLineBytes = 0 }, wantErr: "max line bytes"},
		{name: "zero respondent limit", mutate: func(c *Config) { c.Parser.MaxRespondents = 0 }, wantErr: "max respondents"},
		{name: "bad report format", mutate: func(c *Config) { c.Report.Format = "pdf" }, wantErr: "invalid report format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
