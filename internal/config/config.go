package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Metrics   MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// DatasetConfig contains the dataset sources and fetch behavior
type DatasetConfig struct {
	MoviesURL    string        `yaml:"movies_url" envconfig:"MOVIES_URL" validate:"required,url"`
	BechdelURL   string        `yaml:"bechdel_url" envconfig:"BECHDEL_URL" validate:"required,url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
	CacheTTL     time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" validate:"gte=0"`
	RateRPS      float64       `yaml:"rate_rps" envconfig:"RATE_RPS" validate:"gt=0"`
	RateBurst    int           `yaml:"rate_burst" envconfig:"RATE_BURST" validate:"gte=1"`
}

// AnalysisConfig contains tunables of the statistical summaries
type AnalysisConfig struct {
	HistogramBins int `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"gte=2,lte=200"`
	TrendWindow   int `yaml:"trend_window" envconfig:"TREND_WINDOW" validate:"gte=1"`
}

// ChartsConfig contains report rendering configuration
type ChartsConfig struct {
	PageTitle       string        `yaml:"page_title" envconfig:"PAGE_TITLE" validate:"required"`
	Width           string        `yaml:"width" envconfig:"WIDTH"`
	Height          string        `yaml:"height" envconfig:"HEIGHT"`
	SnapshotTimeout time.Duration `yaml:"snapshot_timeout" envconfig:"SNAPSHOT_TIMEOUT" validate:"gt=0"`
	SnapshotDelay   time.Duration `yaml:"snapshot_delay" envconfig:"SNAPSHOT_DELAY" validate:"gte=0"`
}

// SheetsConfig contains the optional Google Sheets publishing target.
// Publishing is disabled while SpreadsheetID is empty. The passphrase
// decrypts an encrypted credentials file and is env-only on purpose.
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName     string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	Passphrase    string `yaml:"-" envconfig:"PASSPHRASE"`
}

// MetricsConfig contains the optional Pushgateway target. Pushing is
// disabled while GatewayURL is empty.
type MetricsConfig struct {
	GatewayURL  string        `yaml:"gateway_url" envconfig:"GATEWAY_URL" validate:"omitempty,url"`
	JobName     string        `yaml:"job_name" envconfig:"JOB_NAME" validate:"required"`
	PushTimeout time.Duration `yaml:"push_timeout" envconfig:"PUSH_TIMEOUT" validate:"gt=0"`
}

// TelemetryConfig contains tracing configuration
type TelemetryConfig struct {
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	PrettyPrint    bool    `yaml:"pretty_print" envconfig:"PRETTY_PRINT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration. DataDir may be
// absolute or relative to the executable directory; empty means the
// default data directory next to the executable.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
}

// Load loads configuration with precedence env > file > defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration using the given YAML file (may be empty)
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	// Overlay file values; keys absent from the file keep defaults
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := loadFromFile(configFile, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// Environment wins over file and defaults
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	return nil
}

// validate normalizes derived fields and checks the struct tags
func (c *Config) validate() error {
	// Always JSON format, always dual output
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.SheetName == "" {
		return fmt.Errorf("sheets publishing requires a sheet name")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			MoviesURL:    DefaultMoviesURL,
			BechdelURL:   DefaultBechdelURL,
			FetchTimeout: DefaultFetchTimeout,
			CacheTTL:     DefaultCacheTTL,
			RateRPS:      1,
			RateBurst:    1,
		},
		Analysis: AnalysisConfig{
			HistogramBins: DefaultHistogramBins,
			TrendWindow:   DefaultTrendWindow,
		},
		Charts: ChartsConfig{
			PageTitle:       "Bechdel Test Movie Analysis",
			Width:           "900px",
			Height:          "500px",
			SnapshotTimeout: DefaultSnapshotTimeout,
			SnapshotDelay:   1500 * time.Millisecond,
		},
		Sheets: SheetsConfig{
			SheetName: "aggregates",
		},
		Metrics: MetricsConfig{
			JobName:     "bechdel_analysis",
			PushTimeout: 10 * time.Second,
		},
		Telemetry: TelemetryConfig{
			TracingEnabled: true,
			SampleRatio:    1.0,
			PrettyPrint:    false,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: true,
		},
		Paths: PathsConfig{},
	}
}
