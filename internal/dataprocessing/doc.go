// Package dataprocessing turns a survey input stream into report statistics.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: a state machine over the line-oriented survey format
// 2. Aggregator: relative percents, averages, and demographic frequencies
// 3. Pipeline: parse, validate, and aggregate with logging, spans, and metrics
//
// # Input Format
//
// Lines starting with the comment prefix ("#" by default) and blank lines are
// skipped wherever they appear. The remaining lines are read in order:
//
//	1,1,1                      report flags: percents, averages, demographics
//	CS,EE                      undergraduate programs
//	OnCampus,OffCampus         residence statuses
//	Do you like X;Do you like Y questions, semicolon separated
//	disagree,...,agree         answer options, lowest to highest agreement
//	2                          respondent count
//	CS,OnCampus,agree,disagree one row per respondent
//
// # Usage
//
//	pipeline := dataprocessing.NewPipeline(logger, dataprocessing.PipelineOptions{
//	    Parser: dataprocessing.ParserOptionsFromConfig(cfg.Parser),
//	}, telemetry)
//	result, err := pipeline.Run(ctx, os.Stdin)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Statistics.NumRespondents)
//
// # Data Flow
//
//	io.Reader → Parser → SurveyData → SurveyValidator → Aggregator → SurveyStatistics
//
// # Error Handling
//
// Parse failures are *errors.AppError values of type PARSING that carry the
// 1-based line number and the name of the awaited field. Aggregation over a
// survey with no respondents fails with errors.ErrNoRespondents from the
// section functions, while Aggregator.Aggregate returns empty sections.
package dataprocessing
