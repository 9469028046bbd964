package dataprocessing

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"bechdelcli/internal/errors"
	"bechdelcli/pkg/contracts/domain"
)

// Summarizer builds the dataset overview document: row counts, year
// span, pass rate, per-column completeness, and schema violations. It
// is the single place run-level quality numbers come from, so the JSON
// summary, the console output, and the report header always agree.
type Summarizer struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewSummarizer creates a summarizer. A nil logger falls back to
// slog.Default().
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{
		logger:   logger,
		validate: validator.New(),
	}
}

// columnCheck pairs an analysis column with its missing-value rule.
// Missing means NaN for numeric columns, unparseable text for the raw
// gross columns, and the empty string for text columns.
type columnCheck struct {
	name    string
	missing func(domain.MovieRecord) bool
}

var columnChecks = []columnCheck{
	{"year", func(m domain.MovieRecord) bool { return m.Year == 0 }},
	{"clean_test", func(m domain.MovieRecord) bool { return m.CleanTest == "" }},
	{"binary", func(m domain.MovieRecord) bool { return m.Binary == "" }},
	{"budget_2013", func(m domain.MovieRecord) bool { return math.IsNaN(m.Budget2013) }},
	{"domgross_2013", func(m domain.MovieRecord) bool { return !coercible(m.DomGross2013) }},
	{"intgross_2013", func(m domain.MovieRecord) bool { return !coercible(m.IntGross2013) }},
	{"metascore", func(m domain.MovieRecord) bool { return math.IsNaN(m.Metascore) }},
	{"imdb_rating", func(m domain.MovieRecord) bool { return math.IsNaN(m.ImdbRating) }},
	{"genre", func(m domain.MovieRecord) bool { return !m.HasGenre() }},
}

func coercible(raw string) bool {
	_, ok := CoerceGross(raw)
	return ok
}

// Overview summarizes one run over the decoded dataset. The genre
// expansion contributes its exclusion counts so the overview reflects
// exactly what the genre aggregates saw.
func (s *Summarizer) Overview(ctx context.Context, runID string, records []domain.MovieRecord, expansion GenreExpansion) domain.DatasetOverview {
	overview := domain.DatasetOverview{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		SourceRows:     len(records),
		GenreMissing:   expansion.Missing,
		GenreUnmatched: expansion.Unmatched,
		GenreLongRows:  len(expansion.Long),
		Columns:        make([]domain.ColumnQuality, len(columnChecks)),
	}

	for i, check := range columnChecks {
		overview.Columns[i] = domain.ColumnQuality{Column: check.name}
	}

	for _, record := range records {
		if record.Year > 0 {
			if overview.YearMin == 0 || record.Year < overview.YearMin {
				overview.YearMin = record.Year
			}
			if record.Year > overview.YearMax {
				overview.YearMax = record.Year
			}
		}
		switch record.Binary {
		case domain.TestOutcomePass:
			overview.PassCount++
		case domain.TestOutcomeFail:
			overview.FailCount++
		}

		for i, check := range columnChecks {
			if check.missing(record) {
				overview.Columns[i].Missing++
			} else {
				overview.Columns[i].Present++
			}
		}

		if err := s.validate.Struct(record); err != nil {
			overview.SchemaViolations++
		}
	}

	if decided := overview.PassCount + overview.FailCount; decided > 0 {
		overview.PassRate = float64(overview.PassCount) / float64(decided)
	}

	s.logger.InfoContext(ctx, "summarized dataset",
		slog.String("run_id", runID),
		slog.Int("rows", overview.SourceRows),
		slog.Int("year_min", overview.YearMin),
		slog.Int("year_max", overview.YearMax),
		slog.Float64("pass_rate", overview.PassRate),
		slog.Int("schema_violations", overview.SchemaViolations))

	return overview
}

// WriteJSON writes the overview document to a JSON file, creating the
// parent directory if needed.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, overview domain.DatasetOverview) error {
	s.logger.InfoContext(ctx, "writing dataset overview",
		slog.String("path", path))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for overview output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create overview JSON file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(overview); err != nil {
		return errors.NewStorageError("failed to encode dataset overview to JSON", err)
	}

	return nil
}
