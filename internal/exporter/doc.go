// Package exporter renders survey statistics as reports.
//
// Four formats are supported:
//
// text: the plain-text report, with the intro followed by the sections the
// survey's flags select. Byte-for-byte stable so it can be diffed.
//
// csv: one long-format table (Section, Item, Question, Label, Count, Percent,
// Average) written through CSVWriter, with an optional UTF-8 BOM for
// spreadsheet tools.
//
// json: the statistics with the report title and tool version.
//
// xlsx: a workbook with a Summary sheet plus one sheet per selected section.
//
// Example usage:
//
//	exp := exporter.NewExporter(logger, exporter.OptionsFromConfig(cfg.Report), tel.Metrics)
//	out, err := exp.Render(ctx, exporter.FormatText, stats)
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(out)
package exporter
