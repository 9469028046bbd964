package exporter

import (
	"fmt"

	"bechdelcli/internal/config"
	"bechdelcli/pkg/contracts/domain"
)

// AggregateExporter writes one CSV per reduction of the analysis result
type AggregateExporter struct {
	csvWriter *CSVWriter
}

// NewAggregateExporter creates a new aggregate exporter
func NewAggregateExporter(paths *config.Paths) *AggregateExporter {
	return &AggregateExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportAll writes every aggregate table under the aggregates directory
// using the standard file names
func (a *AggregateExporter) ExportAll(result *domain.AnalysisResult) error {
	if err := a.ExportMedianBudget(result.MedianBudget, config.MedianBudgetFile); err != nil {
		return err
	}
	if err := a.ExportGenreOutcome(result.GenreOutcome, config.GenreOutcomeFile); err != nil {
		return err
	}
	if err := a.ExportCategoryGenre(result.CategoryGenre, config.CategoryGenreFile); err != nil {
		return err
	}
	if err := a.ExportYearlyFinance(result.YearlyFinance, config.YearlyFinanceFile); err != nil {
		return err
	}
	if err := a.ExportRatingDistribution(result.RatingDistribution, config.RatingDistributionFile); err != nil {
		return err
	}
	return nil
}

// ExportMedianBudget writes the median-budget-by-category table
func (a *AggregateExporter) ExportMedianBudget(rows []domain.MedianBudgetRow, outputPath string) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			string(row.Category),
			formatOptionalFloat(row.MedianBudget),
			formatInt(row.SampleCount),
		})
	}

	headers := []string{"category", "median_budget", "sample_count"}
	if err := a.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords); err != nil {
		return fmt.Errorf("failed to write median budget table: %w", err)
	}
	return nil
}

// ExportGenreOutcome writes the genre-by-outcome count table
func (a *AggregateExporter) ExportGenreOutcome(rows []domain.GenreOutcomeCount, outputPath string) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			row.Genre,
			string(row.Binary),
			formatInt(row.Count),
		})
	}

	headers := []string{"genre", "binary", "count"}
	if err := a.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords); err != nil {
		return fmt.Errorf("failed to write genre outcome table: %w", err)
	}
	return nil
}

// ExportCategoryGenre writes the category-by-genre count table behind
// the heatmap
func (a *AggregateExporter) ExportCategoryGenre(rows []domain.CategoryGenreCount, outputPath string) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			string(row.Category),
			row.Genre,
			formatInt(row.Count),
		})
	}

	headers := []string{"category", "genre", "count"}
	if err := a.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords); err != nil {
		return fmt.Errorf("failed to write category genre table: %w", err)
	}
	return nil
}

// ExportYearlyFinance writes the per-year budget and gross sums split
// by outcome
func (a *AggregateExporter) ExportYearlyFinance(rows []domain.YearlyFinance, outputPath string) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			formatInt(row.Year),
			string(row.Binary),
			formatFloat(row.BudgetTotal),
			formatInt(row.BudgetCount),
			formatFloat(row.GrossTotal),
			formatInt(row.GrossCount),
		})
	}

	headers := []string{"year", "binary", "budget_total", "budget_count", "gross_total", "gross_count"}
	if err := a.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords); err != nil {
		return fmt.Errorf("failed to write yearly finance table: %w", err)
	}
	return nil
}

// ExportRatingDistribution writes the supplemental 0-3 rating counts
func (a *AggregateExporter) ExportRatingDistribution(rows []domain.RatingCount, outputPath string) error {
	csvRecords := make([][]string, 0, len(rows))
	for _, row := range rows {
		csvRecords = append(csvRecords, []string{
			formatInt(row.Rating),
			row.Description,
			formatInt(row.Count),
		})
	}

	headers := []string{"rating", "description", "count"}
	if err := a.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords); err != nil {
		return fmt.Errorf("failed to write rating distribution table: %w", err)
	}
	return nil
}
