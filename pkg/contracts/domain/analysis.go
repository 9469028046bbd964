package domain

import (
	"time"
)

// MedianBudgetRow represents the median 2013-adjusted budget of one
// test-result category. Records without a budget are excluded from the
// median, not from the row count.
type MedianBudgetRow struct {
	Category     CategoryLabel `json:"category"`
	MedianBudget float64       `json:"median_budget"`
	SampleCount  int           `json:"sample_count"`
}

// GenreOutcomeCount represents the number of (record, genre) pairs for
// one genre and one pass/fail outcome.
type GenreOutcomeCount struct {
	Genre  string      `json:"genre"`
	Binary TestOutcome `json:"binary"`
	Count  int         `json:"count"`
}

// CategoryGenreCount represents the number of (record, genre) pairs for
// one category and one genre; the heatmap input.
type CategoryGenreCount struct {
	Category CategoryLabel `json:"category"`
	Genre    string        `json:"genre"`
	Count    int           `json:"count"`
}

// YearlyFinance represents the budget and coerced-gross sums of one
// release year and outcome. The counts record how many records entered
// each sum after missing and non-numeric values were excluded.
type YearlyFinance struct {
	Year        int         `json:"year"`
	Binary      TestOutcome `json:"binary"`
	BudgetTotal float64     `json:"budget_total"`
	BudgetCount int         `json:"budget_count"`
	GrossTotal  float64     `json:"gross_total"`
	GrossCount  int         `json:"gross_count"`
}

// RatingCount represents the number of movies holding one 0-3 score in
// the supplemental raw Bechdel dataset.
type RatingCount struct {
	Rating      int    `json:"rating"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// ColumnQuality represents per-column completeness of the loaded table
type ColumnQuality struct {
	Column  string `json:"column"`
	Present int    `json:"present"`
	Missing int    `json:"missing"`
}

// DatasetOverview summarizes one analyzer run over the loaded dataset
type DatasetOverview struct {
	RunID            string          `json:"run_id"`
	GeneratedAt      time.Time       `json:"generated_at"`
	SourceRows       int             `json:"source_rows"`
	YearMin          int             `json:"year_min"`
	YearMax          int             `json:"year_max"`
	PassCount        int             `json:"pass_count"`
	FailCount        int             `json:"fail_count"`
	PassRate         float64         `json:"pass_rate"`
	GenreMissing     int             `json:"genre_missing"`
	GenreUnmatched   int             `json:"genre_unmatched"` // non-empty genre text, zero known tokens
	GenreLongRows    int             `json:"genre_long_rows"`
	SchemaViolations int             `json:"schema_violations"`
	Columns          []ColumnQuality `json:"columns"`
}

// AnalysisResult bundles every aggregate of one analyzer run
type AnalysisResult struct {
	Overview           DatasetOverview      `json:"overview"`
	MedianBudget       []MedianBudgetRow    `json:"median_budget"`
	GenreOutcome       []GenreOutcomeCount  `json:"genre_outcome"`
	CategoryGenre      []CategoryGenreCount `json:"category_genre"`
	YearlyFinance      []YearlyFinance      `json:"yearly_finance"`
	RatingDistribution []RatingCount        `json:"rating_distribution"`
}
