package config

import "time"

// Application constants shared across the pipeline binaries
const (
	// Application Info
	AppName   = "Bechdel Movie Analysis"
	AppVendor = "bechdelcli"
	EnvPrefix = "BECHDEL"

	// Published dataset sources
	DefaultMoviesURL  = "https://raw.githubusercontent.com/rfordatascience/tidytuesday/master/data/2021/2021-03-09/movies.csv"
	DefaultBechdelURL = "https://raw.githubusercontent.com/rfordatascience/tidytuesday/master/data/2021/2021-03-09/raw_bechdel.csv"

	// Fetch behavior
	DefaultFetchTimeout = 60 * time.Second
	DefaultCacheTTL     = 24 * time.Hour

	// Analysis defaults
	DefaultHistogramBins = 20
	DefaultTrendWindow   = 15

	// Report rendering
	DefaultSnapshotTimeout = 90 * time.Second

	// File names (under the data directory, see paths.go)
	MoviesRawFile          = "movies.csv"
	BechdelRawFile         = "raw_bechdel.csv"
	CleanMoviesFile        = "movies_clean.csv"
	GenresWideFile         = "genres_wide.csv"
	GenresLongFile         = "genres_long.csv"
	SummaryFile            = "summary.json"
	WorkbookFile           = "analysis.xlsx"
	ReportFile             = "bechdel_report.html"
	MedianBudgetFile       = "median_budget_by_category.csv"
	GenreOutcomeFile       = "counts_genre_binary.csv"
	CategoryGenreFile      = "counts_category_genre.csv"
	YearlyFinanceFile      = "yearly_finance.csv"
	RatingDistributionFile = "rating_distribution.csv"

	// Credentials files (root of executable directory)
	CredentialsFileName          = "credentials.json"
	EncryptedCredentialsFileName = "credentials.json.enc"
)
