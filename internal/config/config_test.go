package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFrom tests configuration loading with various scenarios
func TestLoadFrom(t *testing.T) {
	// Save original environment to restore later
	originalEnv := make(map[string]string)
	envVars := []string{
		"BECHDEL_DATASET_MOVIES_URL", "BECHDEL_DATASET_BECHDEL_URL",
		"BECHDEL_DATASET_FETCH_TIMEOUT", "BECHDEL_DATASET_CACHE_TTL",
		"BECHDEL_ANALYSIS_HISTOGRAM_BINS", "BECHDEL_ANALYSIS_TREND_WINDOW",
		"BECHDEL_CHARTS_PAGE_TITLE",
		"BECHDEL_SHEETS_SPREADSHEET_ID", "BECHDEL_SHEETS_SHEET_NAME",
		"BECHDEL_METRICS_GATEWAY_URL", "BECHDEL_METRICS_JOB_NAME",
		"BECHDEL_LOGGING_LEVEL", "BECHDEL_LOGGING_FORMAT", "BECHDEL_LOGGING_OUTPUT",
		"BECHDEL_PATHS_DATA_DIR",
	}

	for _, envVar := range envVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}

	defer func() {
		for _, envVar := range envVars {
			if val, exists := originalEnv[envVar]; exists && val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	}()

	clearEnv := func() {
		for _, envVar := range envVars {
			os.Unsetenv(envVar)
		}
	}

	tests := []struct {
		name        string
		setupEnv    func()
		setupFile   func(t *testing.T) string // returns config file path
		wantErr     bool
		errContains string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name:     "default configuration with no env vars",
			setupEnv: clearEnv,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultMoviesURL, cfg.Dataset.MoviesURL)
				assert.Equal(t, DefaultBechdelURL, cfg.Dataset.BechdelURL)
				assert.Equal(t, DefaultFetchTimeout, cfg.Dataset.FetchTimeout)
				assert.Equal(t, DefaultCacheTTL, cfg.Dataset.CacheTTL)
				assert.Equal(t, 1.0, cfg.Dataset.RateRPS)
				assert.Equal(t, 1, cfg.Dataset.RateBurst)

				assert.Equal(t, DefaultHistogramBins, cfg.Analysis.HistogramBins)
				assert.Equal(t, DefaultTrendWindow, cfg.Analysis.TrendWindow)

				assert.Equal(t, "Bechdel Test Movie Analysis", cfg.Charts.PageTitle)
				assert.Equal(t, "aggregates", cfg.Sheets.SheetName)
				assert.Empty(t, cfg.Sheets.SpreadsheetID)
				assert.Empty(t, cfg.Metrics.GatewayURL)
				assert.Equal(t, "bechdel_analysis", cfg.Metrics.JobName)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_DATASET_MOVIES_URL", "https://mirror.example.com/movies.csv")
				os.Setenv("BECHDEL_DATASET_FETCH_TIMEOUT", "2m")
				os.Setenv("BECHDEL_ANALYSIS_HISTOGRAM_BINS", "40")
				os.Setenv("BECHDEL_LOGGING_LEVEL", "DEBUG")
				os.Setenv("BECHDEL_LOGGING_FORMAT", "text")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://mirror.example.com/movies.csv", cfg.Dataset.MoviesURL)
				assert.Equal(t, 2*time.Minute, cfg.Dataset.FetchTimeout)
				assert.Equal(t, 40, cfg.Analysis.HistogramBins)
				assert.Equal(t, "debug", cfg.Logging.Level, "level is lowercased")
				assert.Equal(t, "json", cfg.Logging.Format, "validate() forces json")
				// untouched values keep defaults
				assert.Equal(t, DefaultBechdelURL, cfg.Dataset.BechdelURL)
			},
		},
		{
			name:     "yaml file overlays defaults",
			setupEnv: clearEnv,
			setupFile: func(t *testing.T) string {
				content := `
dataset:
  movies_url: https://files.example.com/movies.csv
analysis:
  histogram_bins: 25
sheets:
  spreadsheet_id: 1abcDEF
  sheet_name: published
`
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://files.example.com/movies.csv", cfg.Dataset.MoviesURL)
				assert.Equal(t, 25, cfg.Analysis.HistogramBins)
				assert.Equal(t, "1abcDEF", cfg.Sheets.SpreadsheetID)
				assert.Equal(t, "published", cfg.Sheets.SheetName)
				// keys absent from the file keep defaults
				assert.Equal(t, DefaultBechdelURL, cfg.Dataset.BechdelURL)
				assert.Equal(t, DefaultTrendWindow, cfg.Analysis.TrendWindow)
			},
		},
		{
			name: "environment wins over file",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_ANALYSIS_HISTOGRAM_BINS", "60")
			},
			setupFile: func(t *testing.T) string {
				content := "analysis:\n  histogram_bins: 25\n"
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 60, cfg.Analysis.HistogramBins)
			},
		},
		{
			name: "invalid movies URL",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_DATASET_MOVIES_URL", "not-a-url")
			},
			wantErr: true,
		},
		{
			name: "histogram bins out of range",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_ANALYSIS_HISTOGRAM_BINS", "1")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_LOGGING_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid gateway URL",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_METRICS_GATEWAY_URL", "::/bad")
			},
			wantErr: true,
		},
		{
			name: "sheets id without sheet name",
			setupEnv: func() {
				clearEnv()
				os.Setenv("BECHDEL_SHEETS_SPREADSHEET_ID", "1abcDEF")
				os.Setenv("BECHDEL_SHEETS_SHEET_NAME", "")
			},
			setupFile: func(t *testing.T) string {
				content := "sheets:\n  sheet_name: \"\"\n"
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(content), 0644))
				return path
			},
			wantErr:     true,
			errContains: "sheet name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()

			configFile := ""
			if tt.setupFile != nil {
				configFile = tt.setupFile(t)
			}

			cfg, err := LoadFrom(configFile)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: [not a map"), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, DefaultMoviesURL, cfg.Dataset.MoviesURL)
	assert.True(t, cfg.Telemetry.TracingEnabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRatio)
	assert.Equal(t, 10*time.Second, cfg.Metrics.PushTimeout)

	// defaults themselves must validate
	assert.NoError(t, cfg.validate())
}
