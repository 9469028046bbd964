package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"bechdelcli/internal/config"
	"bechdelcli/internal/dataset"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/internal/pipeline"
)

func main() {
	// Add panic recovery at the very start to catch any crashes
	var logger *slog.Logger // Declare logger early for use in panic handler
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("PANIC RECOVERED: %v\n", r)
			fmt.Printf("Stack trace:\n%s\n", debug.Stack())

			if logger != nil {
				logger.Error("Fetcher panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
			}
			os.Exit(1)
		}
	}()

	configFile := flag.String("config", "", "path to YAML config file (defaults to config.yaml next to the binary)")
	logLevel := flag.String("log-level", "", "log level override: debug | info | warn | error")
	dataDir := flag.String("data-dir", "", "data directory (defaults to data relative to executable)")
	force := flag.Bool("force", false, "redownload datasets even when the cached copies are still fresh")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
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
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	// Each binary writes its own log file under the executable's logs dir
	cfg.Logging.FilePath = paths.GetLogPath("fetch.log")

	// Assign to pre-declared logger variable for panic handler
	var err2 error
	logger, err2 = infrastructure.InitializeLogger(cfg.Logging)
	if err2 != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err2)
		logger = slog.Default()
	}

	// Start resource monitoring in background
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			logger.Info("Resource usage",
				slog.Uint64("memory_alloc_mb", m.Alloc/1024/1024),
				slog.Uint64("memory_sys_mb", m.Sys/1024/1024),
				slog.Int("goroutines", runtime.NumGoroutine()))
		}
	}()

	slog.Info("🎬 Bechdel Dataset Fetcher")
	slog.Info("══════════════════════════")
	logger.Info("Bechdel dataset fetcher starting",
		slog.String("movies_url", cfg.Dataset.MoviesURL),
		slog.String("bechdel_url", cfg.Dataset.BechdelURL),
		slog.Bool("force", *force),
		slog.String("data_dir", paths.DataDir),
		slog.String("executable_dir", paths.ExecutableDir))

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

	fetcher := dataset.NewFetcher(cfg.Dataset, logger)
	if metrics != nil {
		fetcher = fetcher.WithMetrics(metrics)
	}

	var results []*dataset.FetchResult
	runner := pipeline.NewRunner(logger).WithMetrics(metrics).WithRuntimeMetrics(runtimeMetrics)
	if providers != nil {
		runner = runner.WithTracer(providers.Tracer)
	}
	runner.AddStage(pipeline.NewStageFunc("fetch", "Download datasets",
		func(ctx context.Context, state *pipeline.RunState) error {
			fetched, err := fetcher.FetchAll(ctx, paths, *force)
			if err != nil {
				return err
			}
			results = fetched
			state.GetStage("fetch").SetRowsOut(int64(len(fetched)))
			return nil
		}))

	state, err := runner.Run(ctx, runID)
	if err != nil {
		logger.Error("Fetch run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		finishRun(ctx, cfg, providers, logger, runID)
		os.Exit(1)
	}

	for _, res := range results {
		logger.Info("Dataset ready",
			slog.String("url", res.URL),
			slog.String("path", res.Path),
			slog.Int64("bytes", res.Bytes),
			slog.String("sha256", res.Checksum),
			slog.Bool("cached", res.Cached),
			slog.Duration("duration", res.Duration))
	}

	logger.Info("Fetch run completed",
		slog.String("run_id", runID),
		slog.Int("datasets", len(results)),
		slog.Duration("duration", state.Duration()))

	finishRun(ctx, cfg, providers, logger, runID)
}

// finishRun pushes the run's metrics and shuts the telemetry providers
// down. Both steps are best-effort: a missing gateway or a slow exporter
// must not turn a finished fetch into a failure.
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
