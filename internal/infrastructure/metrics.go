package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"bechdelcli/internal/config"
)

// MetricsPusher delivers a completed run's metrics to a Prometheus
// Pushgateway. Batch runs exit before any scraper could reach them, so the
// push happens once, right before shutdown.
type MetricsPusher struct {
	cfg      config.MetricsConfig
	registry prometheus.Gatherer
	logger   *slog.Logger
}

// NewMetricsPusher creates a pusher bound to the run's metric registry
func NewMetricsPusher(cfg config.MetricsConfig, registry prometheus.Gatherer, logger *slog.Logger) *MetricsPusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsPusher{
		cfg:      cfg,
		registry: registry,
		logger:   logger,
	}
}

// Push sends all gathered metrics, grouped by run ID. An unset gateway URL
// disables the push entirely.
func (mp *MetricsPusher) Push(ctx context.Context, runID string) error {
	if mp.cfg.GatewayURL == "" {
		mp.logger.DebugContext(ctx, "Pushgateway URL not configured, skipping metrics push")
		return nil
	}
	if mp.registry == nil {
		return fmt.Errorf("metrics registry not initialized")
	}

	pushCtx, cancel := context.WithTimeout(ctx, mp.cfg.PushTimeout)
	defer cancel()

	pusher := push.New(mp.cfg.GatewayURL, mp.cfg.JobName).
		Gatherer(mp.registry).
		Grouping("run_id", runID)

	start := time.Now()
	if err := pusher.PushContext(pushCtx); err != nil {
		return fmt.Errorf("failed to push metrics to gateway: %w", err)
	}

	mp.logger.InfoContext(ctx, "Metrics pushed to gateway",
		slog.String("gateway", mp.cfg.GatewayURL),
		slog.String("job", mp.cfg.JobName),
		slog.String("run_id", runID),
		slog.Duration("duration", time.Since(start)))

	return nil
}
