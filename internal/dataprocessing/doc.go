// Package dataprocessing transforms the decoded movie dataset into the
// tables the report is built from. It covers the middle of the pipeline:
// category recoding, genre expansion, grouped reductions, and the
// dataset overview.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Cleaner: recodes raw test codes into display categories
// 2. GenreExpander: derives per-genre flags and the long genre layout
// 3. Aggregator: computes the grouped reductions behind every chart
// 4. Summarizer: builds the run-level dataset overview document
//
// # Usage
//
// Recode and order the decoded records:
//
//	cleaner := dataprocessing.NewCleaner(logger)
//	cleaned := cleaner.Clean(ctx, records)
//
// Expand genres and reduce:
//
//	expansion := dataprocessing.NewGenreExpander(logger).Expand(ctx, cleaned)
//	aggregator := dataprocessing.NewAggregator(logger)
//	result := aggregator.Aggregate(ctx, dataprocessing.AggregateInput{
//	    Movies:  cleaned,
//	    Genres:  expansion,
//	    Ratings: ratings,
//	})
//
// # Data Flow
//
// The typical flow through this package:
//
//	MovieRecords → Cleaner → CleanMovies → GenreExpander → wide/long tables → Aggregator → AnalysisResult
//
// # Missing Values
//
// Reductions never fail on missing data. NaN budgets and unparseable
// gross text are excluded from the affected sum or median while the
// record keeps contributing to row counts; records without genre text
// are excluded from genre tables entirely and reported in the overview.
//
// # Testing
//
// The package includes table-driven tests for every transform. Keep
// fixtures small and assert exact row orders, since the output order is
// part of the contract the charts depend on.
package dataprocessing
