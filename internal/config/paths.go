package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for ALL file paths in the application.
type Paths struct {
	ExecutableDir string
	DataDir       string
	RawDir        string
	CleanDir      string
	AggregatesDir string
	ReportsDir    string
	FiguresDir    string
	LogsDir       string

	// Config files (root of executable directory)
	CredentialsFile          string
	EncryptedCredentialsFile string

	// Well-known data files
	MoviesRawCSV   string
	BechdelRawCSV  string
	CleanMoviesCSV string
	GenresWideCSV  string
	GenresLongCSV  string
	SummaryJSON    string
	WorkbookXLSX   string
	ReportHTML     string
}

// GetPaths returns the application paths relative to the executable
// location. Paths are never resolved against the working directory, so
// binaries behave the same wherever they are started from.
func GetPaths() (*Paths, error) {
	return GetPathsFrom("")
}

// GetPathsFrom returns the application paths with an overridden data
// directory. An empty override selects the default data directory next
// to the executable; a relative override is resolved against it.
func GetPathsFrom(dataDir string) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)

	switch {
	case dataDir == "":
		dataDir = filepath.Join(exeDir, "data")
	case !filepath.IsAbs(dataDir):
		dataDir = filepath.Join(exeDir, dataDir)
	}

	// Directory structure:
	// <exe dir>/
	//   ├── credentials.json        (optional, sheets publishing)
	//   ├── credentials.json.enc    (optional, encrypted variant)
	//   ├── data/
	//   │   ├── raw/         (downloaded datasets)
	//   │   ├── clean/       (recoded and expanded tables)
	//   │   ├── aggregates/  (grouped summaries, workbook, overview)
	//   │   └── reports/     (chart report and PNG figures)
	//   └── logs/

	rawDir := filepath.Join(dataDir, "raw")
	cleanDir := filepath.Join(dataDir, "clean")
	aggregatesDir := filepath.Join(dataDir, "aggregates")
	reportsDir := filepath.Join(dataDir, "reports")
	figuresDir := filepath.Join(reportsDir, "figures")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		RawDir:        rawDir,
		CleanDir:      cleanDir,
		AggregatesDir: aggregatesDir,
		ReportsDir:    reportsDir,
		FiguresDir:    figuresDir,
		LogsDir:       filepath.Join(exeDir, "logs"),

		CredentialsFile:          filepath.Join(exeDir, CredentialsFileName),
		EncryptedCredentialsFile: filepath.Join(exeDir, EncryptedCredentialsFileName),

		MoviesRawCSV:   filepath.Join(rawDir, MoviesRawFile),
		BechdelRawCSV:  filepath.Join(rawDir, BechdelRawFile),
		CleanMoviesCSV: filepath.Join(cleanDir, CleanMoviesFile),
		GenresWideCSV:  filepath.Join(cleanDir, GenresWideFile),
		GenresLongCSV:  filepath.Join(cleanDir, GenresLongFile),
		SummaryJSON:    filepath.Join(aggregatesDir, SummaryFile),
		WorkbookXLSX:   filepath.Join(aggregatesDir, WorkbookFile),
		ReportHTML:     filepath.Join(reportsDir, ReportFile),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.RawDir,
		p.CleanDir,
		p.AggregatesDir,
		p.ReportsDir,
		p.FiguresDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetAggregatePath returns the path for an aggregate CSV file
func (p *Paths) GetAggregatePath(filename string) string {
	return filepath.Join(p.AggregatesDir, filename)
}

// GetCleanPath returns the path for a cleaned table file
func (p *Paths) GetCleanPath(filename string) string {
	return filepath.Join(p.CleanDir, filename)
}

// GetFigurePath returns the path for a snapshot PNG of one chart
func (p *Paths) GetFigurePath(chartID string) string {
	return filepath.Join(p.FiguresDir, chartID+".png")
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetRawPath returns the path for a downloaded dataset file
func (p *Paths) GetRawPath(filename string) string {
	return filepath.Join(p.RawDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("raw", p.RawDir),
			slog.String("clean", p.CleanDir),
			slog.String("aggregates", p.AggregatesDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("config_files",
			slog.String("credentials", p.CredentialsFile),
		),
		slog.Group("data_files",
			slog.String("movies_raw", p.MoviesRawCSV),
			slog.String("clean_movies", p.CleanMoviesCSV),
			slog.String("report_html", p.ReportHTML),
		))
}
