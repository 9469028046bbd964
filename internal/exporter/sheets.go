package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"bechdelcli/internal/config"
	apperrors "bechdelcli/internal/errors"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/pkg/contracts/domain"
)

// SheetsPublisher pushes the headline aggregates of a run to a
// configured Google Sheet. Publishing is optional: without a
// spreadsheet ID or credentials the publisher reports itself disabled
// and the caller skips it.
type SheetsPublisher struct {
	cfg         config.SheetsConfig
	credentials []byte
	logger      *slog.Logger
	metrics     *infrastructure.PipelineMetrics
}

// NewSheetsPublisher creates a publisher for the given sheet target.
// The credentials are service-account JSON, already decrypted if they
// were stored encrypted at rest.
func NewSheetsPublisher(cfg config.SheetsConfig, credentials []byte, logger *slog.Logger) *SheetsPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsPublisher{
		cfg:         cfg,
		credentials: credentials,
		logger:      logger,
	}
}

// WithMetrics attaches pipeline metrics for publish attempt counting
func (p *SheetsPublisher) WithMetrics(metrics *infrastructure.PipelineMetrics) *SheetsPublisher {
	p.metrics = metrics
	return p
}

// Enabled reports whether a publish target and credentials are both
// configured
func (p *SheetsPublisher) Enabled() bool {
	return p.cfg.SpreadsheetID != "" && p.cfg.SheetName != "" && len(p.credentials) > 0
}

// Publish replaces the median-budget block at the top of the sheet and
// appends one run-log row below the existing data
func (p *SheetsPublisher) Publish(ctx context.Context, result *domain.AnalysisResult) error {
	if !p.Enabled() {
		return apperrors.NewConfigError("sheets publishing is not configured", nil)
	}

	if p.metrics != nil {
		p.metrics.PublishAttempts.Add(ctx, 1)
	}

	credentialsOption := option.WithCredentialsJSON(p.credentials)
	sheetsService, err := sheets.NewService(ctx, credentialsOption)
	if err != nil {
		p.recordFailure(ctx)
		return apperrors.NewNetworkError("failed to create sheets service", err)
	}

	rangeStr := fmt.Sprintf("%s!A1", p.cfg.SheetName)
	valueRange := &sheets.ValueRange{Values: p.medianBudgetValues(result.MedianBudget)}

	_, err = sheetsService.Spreadsheets.Values.Update(
		p.cfg.SpreadsheetID,
		rangeStr,
		valueRange,
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		p.recordFailure(ctx)
		return apperrors.NewNetworkError("failed to update aggregate block", err)
	}

	runRange := &sheets.ValueRange{Values: [][]interface{}{p.runLogRow(result.Overview)}}
	_, err = sheetsService.Spreadsheets.Values.Append(
		p.cfg.SpreadsheetID,
		rangeStr,
		runRange,
	).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		p.recordFailure(ctx)
		return apperrors.NewNetworkError("failed to append run log row", err)
	}

	p.logger.InfoContext(ctx, "Aggregates published to Google Sheets",
		slog.String("spreadsheet_id", p.cfg.SpreadsheetID),
		slog.String("sheet", p.cfg.SheetName),
		slog.Int("median_budget_rows", len(result.MedianBudget)))
	return nil
}

// medianBudgetValues builds the header plus one row per category
func (p *SheetsPublisher) medianBudgetValues(rows []domain.MedianBudgetRow) [][]interface{} {
	values := [][]interface{}{
		{"category", "median_budget", "sample_count"},
	}
	for _, row := range rows {
		values = append(values, []interface{}{
			string(row.Category),
			formatOptionalFloat(row.MedianBudget),
			row.SampleCount,
		})
	}
	return values
}

// runLogRow summarizes one run for the appended log
func (p *SheetsPublisher) runLogRow(overview domain.DatasetOverview) []interface{} {
	return []interface{}{
		overview.RunID,
		overview.GeneratedAt.Format("2006-01-02 15:04:05"),
		overview.SourceRows,
		overview.PassCount,
		overview.FailCount,
		formatFloat(overview.PassRate),
	}
}

func (p *SheetsPublisher) recordFailure(ctx context.Context) {
	if p.metrics != nil {
		p.metrics.PublishFailures.Add(ctx, 1)
	}
}
