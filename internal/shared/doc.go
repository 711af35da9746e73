// Package shared holds helpers used across surveystats packages that belong
// to no single layer.
//
// # Test Utilities
//
// The testutil subpackage provides a capturing slog handler so tests can
// assert on the structured logs emitted by the parser, validator,
// aggregator and exporter:
//
//	logger, logs := testutil.NewTestLogger(t)
//	parser := dataprocessing.NewParser(logger, opts)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "ignoring respondent rows")
//	testutil.AssertLogAttr(t, logs, "component", "parser")
package shared
