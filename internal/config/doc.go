// Package config provides configuration management for surveystats.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources in order of precedence:
//
//	1. Command-line flags (applied by cmd/surveystats after Load)
//	2. Environment variables with the SURVEY_ prefix
//	3. A YAML configuration file
//	4. Default values
//
// # Environment Variables
//
//	SURVEY_CONFIG=/etc/surveystats.yaml
//	SURVEY_LOGGING_LEVEL=debug
//	SURVEY_PARSER_EXCESS_ROWS=ignore
//	SURVEY_REPORT_TITLE="ECS Student Survey"
//	SURVEY_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/surveystats.prom
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, use config.Default() which needs no files or environment.
package config
