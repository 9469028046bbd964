package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"bechdelcli/internal/charts"
	"bechdelcli/internal/config"
	"bechdelcli/internal/dataprocessing"
	"bechdelcli/internal/exporter"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/internal/pipeline"
	"bechdelcli/internal/security"
	"bechdelcli/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (defaults to config.yaml next to the binary)")
	logLevel := flag.String("log-level", "", "log level override: debug | info | warn | error")
	dataDir := flag.String("data-dir", "", "data directory (defaults to data relative to executable)")
	snapshot := flag.Bool("snapshot", false, "capture a PNG figure per chart with headless Chrome")
	publish := flag.Bool("publish", false, "publish aggregate tables to the configured Google Sheet")
	encryptCredentials := flag.Bool("encrypt-credentials", false, "encrypt credentials.json with the configured passphrase and exit")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	// Data directory: the flag wins over the config file
	dir := *dataDir
	if dir == "" {
		dir = cfg.Paths.DataDir
	}
	paths, err := config.GetPathsFrom(dir)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Each binary writes its own log file under the executable's logs dir
	cfg.Logging.FilePath = paths.GetLogPath("report.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	// One-shot utility mode: encrypt the plaintext service-account file
	// so only the encrypted copy needs to live next to the binary.
	if *encryptCredentials {
		if cfg.Sheets.Passphrase == "" {
			logger.Error("Credential encryption requires a passphrase",
				slog.String("hint", "set "+config.EnvPrefix+"_SHEETS_PASSPHRASE"))
			os.Exit(1)
		}
		if err := security.EncryptCredentialsFile(paths.CredentialsFile, paths.EncryptedCredentialsFile, cfg.Sheets.Passphrase); err != nil {
			logger.Error("Failed to encrypt credentials", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Credentials encrypted",
			slog.String("source", paths.CredentialsFile),
			slog.String("destination", paths.EncryptedCredentialsFile),
			slog.String("hint", "remove the plaintext file once the encrypted copy is verified"))
		return
	}

	logger.Info("Starting Bechdel report generation",
		slog.Bool("snapshot", *snapshot),
		slog.Bool("publish", *publish),
		slog.String("data_dir", paths.DataDir),
		slog.String("executable_dir", paths.ExecutableDir))

	// The report consumes the analyzer's output
	if !config.FileExists(paths.CleanMoviesCSV) {
		logger.Error("Clean movie table not found",
			slog.String("path", paths.CleanMoviesCSV),
			slog.String("hint", "Run analyzer first to generate the clean tables"))
		os.Exit(1)
	}
	if !config.FileExists(paths.SummaryJSON) {
		logger.Error("Run summary not found",
			slog.String("path", paths.SummaryJSON),
			slog.String("hint", "Run analyzer first to generate the aggregates"))
		os.Exit(1)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		logger.Warn("Failed to initialize OpenTelemetry, continuing without instrumentation",
			slog.String("error", err.Error()))
		providers = nil
	}

	var metrics *infrastructure.PipelineMetrics
	var runtimeMetrics *infrastructure.RuntimeMetrics
	if providers != nil {
		metrics, err = infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			logger.Warn("Failed to create pipeline metrics",
				slog.String("error", err.Error()))
			metrics = nil
		}
		runtimeMetrics, err = infrastructure.NewRuntimeMetrics(providers.Meter)
		if err != nil {
			logger.Warn("Failed to create runtime metrics",
				slog.String("error", err.Error()))
			runtimeMetrics = nil
		}
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	runID := uuid.NewString()

	aggregator := dataprocessing.NewAggregator(logger)
	builder := charts.NewBuilder(cfg.Analysis, logger)
	renderer := charts.NewRenderer(cfg.Charts, logger)
	if metrics != nil {
		renderer = renderer.WithMetrics(metrics)
	}

	// Tables handed from stage to stage
	var (
		movies     []domain.CleanMovie
		genreRows  []domain.GenreLongRow
		ratingRows []domain.RatingCount
		overview   domain.DatasetOverview
		result     domain.AnalysisResult
		configs    []domain.ChartConfig
	)

	runner := pipeline.NewRunner(logger).WithMetrics(metrics).WithRuntimeMetrics(runtimeMetrics)
	if providers != nil {
		runner = runner.WithTracer(providers.Tracer)
	}

	runner.AddStage(pipeline.NewStageFunc("load", "Load analyzer output",
		func(ctx context.Context, state *pipeline.RunState) error {
			var err error
			movies, err = loadCleanMovies(paths.CleanMoviesCSV)
			if err != nil {
				return err
			}
			genreRows, err = loadGenreRows(paths.GenresLongCSV)
			if err != nil {
				return err
			}
			ratingRows, err = loadRatingCounts(paths.GetAggregatePath(config.RatingDistributionFile))
			if err != nil {
				return err
			}
			overview, err = loadOverview(paths.SummaryJSON)
			if err != nil {
				return err
			}
			state.GetStage("load").SetRowsOut(int64(len(movies)))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("aggregate", "Compute report statistics",
		func(ctx context.Context, state *pipeline.RunState) error {
			result = domain.AnalysisResult{
				Overview:           overview,
				MedianBudget:       aggregator.MedianBudgetByCategory(movies),
				GenreOutcome:       aggregator.CountByGenreOutcome(genreRows),
				CategoryGenre:      aggregator.CountByCategoryGenre(genreRows),
				YearlyFinance:      aggregator.YearlyFinanceByOutcome(movies),
				RatingDistribution: ratingRows,
			}
			rows := len(result.MedianBudget) + len(result.GenreOutcome) +
				len(result.CategoryGenre) + len(result.YearlyFinance) +
				len(result.RatingDistribution)
			state.GetStage("aggregate").SetRowsOut(int64(rows))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("render", "Render chart report",
		func(ctx context.Context, state *pipeline.RunState) error {
			configs = builder.Build(ctx, charts.BuildInput{Movies: movies, Result: result})
			if err := renderer.RenderHTML(ctx, paths.ReportHTML, configs); err != nil {
				return err
			}
			state.GetStage("render").SetRowsOut(int64(len(configs)))
			return nil
		}))

	state, err := runner.Run(ctx, runID)
	if err != nil {
		logger.Error("Report run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		finishRun(ctx, cfg, providers, logger, runID)
		os.Exit(1)
	}

	// Degraded outputs from here on: each failure logs a warning, the
	// rendered report above is already on disk.
	if *snapshot {
		snapshotter := charts.NewSnapshotter(cfg.Charts, logger)
		if metrics != nil {
			snapshotter = snapshotter.WithMetrics(metrics)
		}
		ids := make([]string, 0, len(configs))
		for _, c := range configs {
			ids = append(ids, c.ID)
		}
		if err := snapshotter.Snapshot(ctx, paths.ReportHTML, paths.FiguresDir, ids); err != nil {
			logger.Warn("Chart snapshot failed, report is still available",
				slog.String("report", paths.ReportHTML),
				slog.String("error", err.Error()))
		}
	}

	printer := exporter.NewConsolePrinter(nil)
	printer.PrintSummary(&result)

	if *publish {
		publishAggregates(ctx, cfg, paths, logger, metrics, &result)
	}

	logger.Info("Report run completed",
		slog.String("run_id", runID),
		slog.String("report", paths.ReportHTML),
		slog.Int("charts", len(configs)),
		slog.Duration("duration", state.Duration()))

	finishRun(ctx, cfg, providers, logger, runID)
}

// publishAggregates pushes the aggregate tables to the configured Google
// Sheet. Every failure is a warning: publishing is an optional output.
func publishAggregates(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, metrics *infrastructure.PipelineMetrics, result *domain.AnalysisResult) {
	credentials, err := security.LoadCredentials(paths, cfg.Sheets.Passphrase)
	if err != nil {
		logger.Warn("Sheets publishing skipped, no usable credentials",
			slog.String("error", err.Error()))
		return
	}
	defer credentials.Clear()

	publisher := exporter.NewSheetsPublisher(cfg.Sheets, credentials.Data(), logger)
	if metrics != nil {
		publisher = publisher.WithMetrics(metrics)
	}
	if !publisher.Enabled() {
		logger.Warn("Sheets publishing skipped, spreadsheet not configured",
			slog.String("hint", "set "+config.EnvPrefix+"_SHEETS_SPREADSHEET_ID and "+config.EnvPrefix+"_SHEETS_SHEET_NAME"))
		return
	}

	if err := publisher.Publish(ctx, result); err != nil {
		logger.Warn("Sheets publishing failed",
			slog.String("spreadsheet_id", cfg.Sheets.SpreadsheetID),
			slog.String("error", err.Error()))
		return
	}

	logger.Info("Aggregates published",
		slog.String("spreadsheet_id", cfg.Sheets.SpreadsheetID),
		slog.String("sheet", cfg.Sheets.SheetName))
}

// finishRun pushes the run's metrics and shuts the telemetry providers
// down, best-effort on both counts.
func finishRun(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger, runID string) {
	if providers == nil {
		return
	}

	pusher := infrastructure.NewMetricsPusher(cfg.Metrics, providers.Registry, logger)
	if err := pusher.Push(ctx, runID); err != nil {
		logger.Warn("Failed to push run metrics",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("OpenTelemetry shutdown failed",
			slog.String("error", err.Error()))
	}
}

// loadCleanMovies reads the analyzer's cleaned movie table. Only the
// columns the report statistics draw on are decoded; the remaining
// descriptive columns are ignored.
func loadCleanMovies(csvPath string) ([]domain.CleanMovie, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open clean movie table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	// Find column indices
	yearIdx := -1
	titleIdx := -1
	binaryIdx := -1
	categoryIdx := -1
	budgetIdx := -1
	domGrossIdx := -1
	intGrossIdx := -1
	budget2013Idx := -1
	domGross2013Idx := -1
	metascoreIdx := -1
	imdbRatingIdx := -1

	for i, col := range header {
		switch col {
		case "year":
			yearIdx = i
		case "title":
			titleIdx = i
		case "binary":
			binaryIdx = i
		case "category":
			categoryIdx = i
		case "budget":
			budgetIdx = i
		case "domgross":
			domGrossIdx = i
		case "intgross":
			intGrossIdx = i
		case "budget_2013":
			budget2013Idx = i
		case "domgross_2013":
			domGross2013Idx = i
		case "metascore":
			metascoreIdx = i
		case "imdb_rating":
			imdbRatingIdx = i
		}
	}

	if yearIdx < 0 || binaryIdx < 0 || categoryIdx < 0 || budget2013Idx < 0 {
		return nil, fmt.Errorf("clean movie table %s is missing required columns", csvPath)
	}

	var movies []domain.CleanMovie
	for {
		record, err := reader.Read()
		if err != nil {
			break // EOF or error
		}

		// Skip rows without a parseable release year
		year, err := strconv.Atoi(field(record, yearIdx))
		if err != nil {
			continue
		}

		movie := domain.CleanMovie{
			Category: domain.CategoryLabel(field(record, categoryIdx)),
		}
		movie.Year = year
		movie.Title = field(record, titleIdx)
		movie.Binary = domain.TestOutcome(field(record, binaryIdx))
		movie.Budget = optionalFloat(field(record, budgetIdx))
		movie.DomGross = field(record, domGrossIdx)
		movie.IntGross = field(record, intGrossIdx)
		movie.Budget2013 = optionalFloat(field(record, budget2013Idx))
		movie.DomGross2013 = field(record, domGross2013Idx)
		movie.Metascore = optionalFloat(field(record, metascoreIdx))
		movie.ImdbRating = optionalFloat(field(record, imdbRatingIdx))

		movies = append(movies, movie)
	}

	return movies, nil
}

// loadGenreRows reads the analyzer's long-layout genre table
func loadGenreRows(csvPath string) ([]domain.GenreLongRow, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open genre table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	imdbIdx := -1
	titleIdx := -1
	yearIdx := -1
	binaryIdx := -1
	categoryIdx := -1
	genreIdx := -1

	for i, col := range header {
		switch col {
		case "imdb_id":
			imdbIdx = i
		case "title":
			titleIdx = i
		case "year":
			yearIdx = i
		case "binary":
			binaryIdx = i
		case "category":
			categoryIdx = i
		case "genre":
			genreIdx = i
		}
	}

	if binaryIdx < 0 || categoryIdx < 0 || genreIdx < 0 {
		return nil, fmt.Errorf("genre table %s is missing required columns", csvPath)
	}

	var rows []domain.GenreLongRow
	for {
		record, err := reader.Read()
		if err != nil {
			break // EOF or error
		}

		genre := field(record, genreIdx)
		if genre == "" {
			continue
		}

		year, _ := strconv.Atoi(field(record, yearIdx))
		rows = append(rows, domain.GenreLongRow{
			ImdbID:   field(record, imdbIdx),
			Title:    field(record, titleIdx),
			Year:     year,
			Binary:   domain.TestOutcome(field(record, binaryIdx)),
			Category: domain.CategoryLabel(field(record, categoryIdx)),
			Genre:    genre,
		})
	}

	return rows, nil
}

// loadRatingCounts reads the analyzer's rating distribution aggregate
func loadRatingCounts(csvPath string) ([]domain.RatingCount, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open rating distribution: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	ratingIdx := -1
	descriptionIdx := -1
	countIdx := -1

	for i, col := range header {
		switch col {
		case "rating":
			ratingIdx = i
		case "description":
			descriptionIdx = i
		case "count":
			countIdx = i
		}
	}

	if ratingIdx < 0 || countIdx < 0 {
		return nil, fmt.Errorf("rating distribution %s is missing required columns", csvPath)
	}

	var rows []domain.RatingCount
	for {
		record, err := reader.Read()
		if err != nil {
			break // EOF or error
		}

		rating, err := strconv.Atoi(field(record, ratingIdx))
		if err != nil {
			continue
		}

		count, _ := strconv.Atoi(field(record, countIdx))
		rows = append(rows, domain.RatingCount{
			Rating:      rating,
			Description: field(record, descriptionIdx),
			Count:       count,
		})
	}

	return rows, nil
}

// loadOverview reads the analyzer's run summary document
func loadOverview(jsonPath string) (domain.DatasetOverview, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return domain.DatasetOverview{}, fmt.Errorf("read run summary: %w", err)
	}

	var overview domain.DatasetOverview
	if err := json.Unmarshal(data, &overview); err != nil {
		return domain.DatasetOverview{}, fmt.Errorf("decode run summary: %w", err)
	}
	return overview, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// optionalFloat parses a possibly-empty numeric cell. Empty and
// non-numeric cells come back as NaN, matching the clean-table encoding
// of missing values.
func optionalFloat(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return value
}
