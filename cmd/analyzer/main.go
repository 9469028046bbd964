package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"bechdelcli/internal/config"
	"bechdelcli/internal/dataprocessing"
	"bechdelcli/internal/dataset"
	"bechdelcli/internal/exporter"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/internal/pipeline"
	"bechdelcli/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (defaults to config.yaml next to the binary)")
	logLevel := flag.String("log-level", "", "log level override: debug | info | warn | error")
	dataDir := flag.String("data-dir", "", "data directory (defaults to data relative to executable)")
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

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Each binary writes its own log file under the executable's logs dir
	cfg.Logging.FilePath = paths.GetLogPath("analyze.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting Bechdel dataset analysis",
		slog.String("data_dir", paths.DataDir),
		slog.String("executable_dir", paths.ExecutableDir))

	// The analyzer consumes the fetcher's output
	if !config.FileExists(paths.MoviesRawCSV) {
		logger.Error("Raw movie dataset not found",
			slog.String("path", paths.MoviesRawCSV),
			slog.String("hint", "Run fetcher first to download the datasets"))
		os.Exit(1)
	}
	if !config.FileExists(paths.BechdelRawCSV) {
		logger.Error("Raw Bechdel dataset not found",
			slog.String("path", paths.BechdelRawCSV),
			slog.String("hint", "Run fetcher first to download the datasets"))
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

	reader := dataset.NewReader(logger)
	cleaner := dataprocessing.NewCleaner(logger)
	expander := dataprocessing.NewGenreExpander(logger)
	aggregator := dataprocessing.NewAggregator(logger)
	summarizer := dataprocessing.NewSummarizer(logger)
	cleanExporter := exporter.NewCleanExporter(paths)
	aggregateExporter := exporter.NewAggregateExporter(paths)
	workbookExporter := exporter.NewWorkbookExporter(logger)

	// Tables handed from stage to stage
	var (
		records   []domain.MovieRecord
		ratings   []domain.BechdelRating
		movies    []domain.CleanMovie
		expansion dataprocessing.GenreExpansion
		result    domain.AnalysisResult
	)

	runner := pipeline.NewRunner(logger).WithMetrics(metrics).WithRuntimeMetrics(runtimeMetrics)
	if providers != nil {
		runner = runner.WithTracer(providers.Tracer)
	}

	runner.AddStage(pipeline.NewStageFunc("load", "Load raw datasets",
		func(ctx context.Context, state *pipeline.RunState) error {
			var err error
			records, err = reader.ReadMovies(paths.MoviesRawCSV)
			if err != nil {
				return err
			}
			ratings, err = reader.ReadBechdelRatings(paths.BechdelRawCSV)
			if err != nil {
				return err
			}
			state.GetStage("load").SetRowsOut(int64(len(records)))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("clean", "Recode test categories",
		func(ctx context.Context, state *pipeline.RunState) error {
			movies = cleaner.Clean(ctx, records)
			state.GetStage("clean").SetRowsOut(int64(len(movies)))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("expand", "Expand genre flags",
		func(ctx context.Context, state *pipeline.RunState) error {
			expansion = expander.Expand(ctx, movies)
			state.GetStage("expand").SetRowsOut(int64(len(expansion.Long)))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("aggregate", "Compute aggregates",
		func(ctx context.Context, state *pipeline.RunState) error {
			result = aggregator.Aggregate(ctx, dataprocessing.AggregateInput{
				Movies:  movies,
				Genres:  expansion,
				Ratings: ratings,
			})
			result.Overview = summarizer.Overview(ctx, runID, records, expansion)
			rows := len(result.MedianBudget) + len(result.GenreOutcome) +
				len(result.CategoryGenre) + len(result.YearlyFinance) +
				len(result.RatingDistribution)
			state.GetStage("aggregate").SetRowsOut(int64(rows))
			return nil
		}))

	runner.AddStage(pipeline.NewStageFunc("export", "Write clean tables and aggregates",
		func(ctx context.Context, state *pipeline.RunState) error {
			if err := cleanExporter.ExportCleanMovies(movies, paths.CleanMoviesCSV); err != nil {
				return err
			}
			if err := cleanExporter.ExportGenresWide(expansion.Wide, paths.GenresWideCSV); err != nil {
				return err
			}
			if err := cleanExporter.ExportGenresLong(expansion.Long, paths.GenresLongCSV); err != nil {
				return err
			}
			if err := aggregateExporter.ExportAll(&result); err != nil {
				return err
			}
			if err := summarizer.WriteJSON(ctx, paths.SummaryJSON, result.Overview); err != nil {
				return err
			}
			if err := workbookExporter.Export(paths.WorkbookXLSX, &result); err != nil {
				return err
			}
			rows := len(movies) + len(expansion.Wide) + len(expansion.Long)
			state.GetStage("export").SetRowsOut(int64(rows))
			return nil
		}))

	state, err := runner.Run(ctx, runID)
	if err != nil {
		logger.Error("Analysis run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		finishRun(ctx, cfg, providers, logger, runID)
		os.Exit(1)
	}

	logger.Info("Analysis run completed",
		slog.String("run_id", runID),
		slog.Int("source_rows", result.Overview.SourceRows),
		slog.Int("clean_rows", len(movies)),
		slog.Int("genre_rows", len(expansion.Long)),
		slog.Float64("pass_rate", result.Overview.PassRate),
		slog.String("summary", paths.SummaryJSON),
		slog.String("workbook", paths.WorkbookXLSX),
		slog.Duration("duration", state.Duration()))

	fmt.Printf("Analysis complete: %d records, %d genre rows\n", len(movies), len(expansion.Long))

	finishRun(ctx, cfg, providers, logger, runID)
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
