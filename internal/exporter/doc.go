// Package exporter writes the analyzer's tables to their output
// surfaces: CSV files, an XLSX workbook, colored console tables, and
// an optional Google Sheet.
//
// The package contains five components:
//
// CSVWriter: Core CSV writing with support for headers, streaming,
// appending, and a UTF-8 BOM for Excel compatibility.
//
// CleanExporter: Writes the recoded movie table and the wide/long
// genre layouts under data/clean/.
//
// AggregateExporter: Writes one CSV per reduction under
// data/aggregates/.
//
// WorkbookExporter: Writes analysis.xlsx with one sheet per aggregate.
//
// SheetsPublisher and ConsolePrinter: The optional Google Sheets
// target and the terminal tables.
//
// Example usage:
//
//	cleanExporter := exporter.NewCleanExporter(paths)
//	err := cleanExporter.ExportCleanMovies(cleaned, paths.CleanMoviesCSV)
//
//	aggExporter := exporter.NewAggregateExporter(paths)
//	err = aggExporter.ExportAll(result)
//
//	workbook := exporter.NewWorkbookExporter(logger)
//	err = workbook.Export(paths.WorkbookXLSX, result)
package exporter
