package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"bechdelcli/pkg/contracts/domain"
)

// WorkbookExporter writes the full analysis result as a single XLSX
// workbook with one sheet per aggregate table
type WorkbookExporter struct {
	logger *slog.Logger
}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter(logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{logger: logger}
}

// workbookSheet is one sheet of the workbook in build order
type workbookSheet struct {
	name    string
	headers []interface{}
	rows    [][]interface{}
}

// Export writes the workbook to the given path. Sheets keep the same
// rows and orders as the aggregate CSV files.
func (w *WorkbookExporter) Export(outputPath string, result *domain.AnalysisResult) error {
	sheets := []workbookSheet{
		w.overviewSheet(result.Overview),
		w.columnQualitySheet(result.Overview),
		w.medianBudgetSheet(result.MedianBudget),
		w.genreOutcomeSheet(result.GenreOutcome),
		w.categoryGenreSheet(result.CategoryGenre),
		w.yearlyFinanceSheet(result.YearlyFinance),
		w.ratingDistributionSheet(result.RatingDistribution),
	}

	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			w.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	for i, sheet := range sheets {
		if i == 0 {
			// Reuse the default sheet for the first table
			if err := file.SetSheetName("Sheet1", sheet.name); err != nil {
				return fmt.Errorf("failed to rename default sheet: %w", err)
			}
		} else {
			if _, err := file.NewSheet(sheet.name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
			}
		}

		if err := w.writeSheet(file, sheet); err != nil {
			return err
		}
	}

	if err := file.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Workbook written",
		slog.String("path", outputPath),
		slog.Int("sheets", len(sheets)))
	return nil
}

// writeSheet streams one header row plus data rows into a sheet
func (w *WorkbookExporter) writeSheet(file *excelize.File, sheet workbookSheet) error {
	stream, err := file.NewStreamWriter(sheet.name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for sheet %s: %w", sheet.name, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header cell: %w", err)
	}
	if err := stream.SetRow(cell, sheet.headers); err != nil {
		return fmt.Errorf("failed to write headers for sheet %s: %w", sheet.name, err)
	}

	for i, row := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to resolve row cell: %w", err)
		}
		if err := stream.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %s: %w", i, sheet.name, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", sheet.name, err)
	}
	return nil
}

func (w *WorkbookExporter) overviewSheet(overview domain.DatasetOverview) workbookSheet {
	return workbookSheet{
		name:    "Overview",
		headers: []interface{}{"field", "value"},
		rows: [][]interface{}{
			{"run_id", overview.RunID},
			{"generated_at", overview.GeneratedAt.Format("2006-01-02 15:04:05")},
			{"source_rows", overview.SourceRows},
			{"year_min", overview.YearMin},
			{"year_max", overview.YearMax},
			{"pass_count", overview.PassCount},
			{"fail_count", overview.FailCount},
			{"pass_rate", overview.PassRate},
			{"genre_missing", overview.GenreMissing},
			{"genre_unmatched", overview.GenreUnmatched},
			{"genre_long_rows", overview.GenreLongRows},
			{"schema_violations", overview.SchemaViolations},
		},
	}
}

func (w *WorkbookExporter) columnQualitySheet(overview domain.DatasetOverview) workbookSheet {
	rows := make([][]interface{}, 0, len(overview.Columns))
	for _, col := range overview.Columns {
		rows = append(rows, []interface{}{col.Column, col.Present, col.Missing})
	}
	return workbookSheet{
		name:    "Column Quality",
		headers: []interface{}{"column", "present", "missing"},
		rows:    rows,
	}
}

func (w *WorkbookExporter) medianBudgetSheet(table []domain.MedianBudgetRow) workbookSheet {
	rows := make([][]interface{}, 0, len(table))
	for _, row := range table {
		median := interface{}(row.MedianBudget)
		if formatOptionalFloat(row.MedianBudget) == "" {
			median = nil // NaN is not a valid cell value
		}
		rows = append(rows, []interface{}{string(row.Category), median, row.SampleCount})
	}
	return workbookSheet{
		name:    "Median Budget",
		headers: []interface{}{"category", "median_budget", "sample_count"},
		rows:    rows,
	}
}

func (w *WorkbookExporter) genreOutcomeSheet(table []domain.GenreOutcomeCount) workbookSheet {
	rows := make([][]interface{}, 0, len(table))
	for _, row := range table {
		rows = append(rows, []interface{}{row.Genre, string(row.Binary), row.Count})
	}
	return workbookSheet{
		name:    "Genre Outcome",
		headers: []interface{}{"genre", "binary", "count"},
		rows:    rows,
	}
}

func (w *WorkbookExporter) categoryGenreSheet(table []domain.CategoryGenreCount) workbookSheet {
	rows := make([][]interface{}, 0, len(table))
	for _, row := range table {
		rows = append(rows, []interface{}{string(row.Category), row.Genre, row.Count})
	}
	return workbookSheet{
		name:    "Category Genre",
		headers: []interface{}{"category", "genre", "count"},
		rows:    rows,
	}
}

func (w *WorkbookExporter) yearlyFinanceSheet(table []domain.YearlyFinance) workbookSheet {
	rows := make([][]interface{}, 0, len(table))
	for _, row := range table {
		rows = append(rows, []interface{}{
			row.Year, string(row.Binary),
			row.BudgetTotal, row.BudgetCount,
			row.GrossTotal, row.GrossCount,
		})
	}
	return workbookSheet{
		name:    "Yearly Finance",
		headers: []interface{}{"year", "binary", "budget_total", "budget_count", "gross_total", "gross_count"},
		rows:    rows,
	}
}

func (w *WorkbookExporter) ratingDistributionSheet(table []domain.RatingCount) workbookSheet {
	rows := make([][]interface{}, 0, len(table))
	for _, row := range table {
		rows = append(rows, []interface{}{row.Rating, row.Description, row.Count})
	}
	return workbookSheet{
		name:    "Rating Distribution",
		headers: []interface{}{"rating", "description", "count"},
		rows:    rows,
	}
}
