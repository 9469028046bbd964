// Package config provides centralized configuration management for the Bechdel
// analysis pipeline. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (config.yaml next to the executable)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BECHDEL_* for namespacing:
//
//	BECHDEL_DATASET_MOVIES_URL=https://mirror.example.com/movies.csv
//	BECHDEL_DATASET_FETCH_TIMEOUT=2m
//	BECHDEL_ANALYSIS_HISTOGRAM_BINS=40
//	BECHDEL_LOGGING_LEVEL=debug
//	BECHDEL_METRICS_GATEWAY_URL=http://pushgateway:9091
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which resolves all file system paths relative to the executable location,
// never the working directory:
//
//	paths, err := config.GetPaths()
//	rawCSV := paths.MoviesRawCSV
//	figure := paths.GetFigurePath("budget-by-category")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- Dataset URLs are properly formatted
//	- Dependent settings are consistent (a spreadsheet ID needs a sheet name)
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
