// +build example

package config

import (
	"log/slog"
	"os"
)

// ExampleUsage demonstrates how to use the paths package throughout the application
func ExampleUsage() {
	// Always get paths from the centralized GetPaths() function
	paths, err := GetPaths()
	if err != nil {
		slog.Error("Failed to get paths", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure all directories exist at startup
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Log all resolved paths for debugging
	paths.LogPathResolution()

	// Example 1: Fetcher writing raw dataset files
	slog.Info("Raw movies dataset", slog.String("path", paths.MoviesRawCSV))
	slog.Info("Raw Bechdel ratings", slog.String("path", paths.BechdelRawCSV))

	// Example 2: Analyzer writing cleaned and expanded tables
	slog.Info("Clean movies table", slog.String("path", paths.CleanMoviesCSV))
	slog.Info("Long genre table", slog.String("path", paths.GenresLongCSV))

	// Example 3: Aggregate outputs by file name
	median := paths.GetAggregatePath("median_budget_by_category.csv")
	slog.Info("Median budget aggregate", slog.String("path", median))

	// Example 4: Report and per-chart figure snapshots
	slog.Info("HTML report", slog.String("path", paths.ReportHTML))
	figure := paths.GetFigurePath("budget-by-category")
	slog.Info("Chart snapshot", slog.String("path", figure))

	// Example 5: Google Sheets credentials
	slog.Info("Credentials file", slog.String("path", paths.CredentialsFile))
	slog.Info("Encrypted credentials", slog.String("path", paths.EncryptedCredentialsFile))
}

// Migration Guide:
//
// OLD CODE (problematic):
//   rawPath := filepath.Join(os.Getwd(), "movies.csv")
//   reportPath := "data/reports/report.html"
//
// NEW CODE (correct):
//   paths, _ := config.GetPaths()
//   rawPath := paths.MoviesRawCSV
//   reportPath := paths.ReportHTML
//
// Benefits:
// 1. All paths relative to executable, not working directory
// 2. Consistent across all components
// 3. Cross-platform path handling
// 4. Centralized logging and debugging
// 5. Easy to test and mock
