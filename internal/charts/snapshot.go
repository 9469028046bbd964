package charts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"bechdelcli/internal/config"
	"bechdelcli/internal/errors"
	"bechdelcli/internal/infrastructure"
)

// Snapshotter drives headless Chrome over the rendered report and
// captures one PNG per chart element. Chrome being unavailable is an
// error the caller downgrades to a warning: the HTML report already
// exists by the time snapshots run.
type Snapshotter struct {
	cfg     config.ChartsConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewSnapshotter creates a snapshotter. A nil logger falls back to
// slog.Default().
func NewSnapshotter(cfg config.ChartsConfig, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{cfg: cfg, logger: logger}
}

// WithMetrics attaches pipeline metrics; snapshot durations are
// recorded when set.
func (s *Snapshotter) WithMetrics(metrics *infrastructure.PipelineMetrics) *Snapshotter {
	s.metrics = metrics
	return s
}

// Snapshot loads the report page and writes <figuresDir>/<id>.png for
// every chart id. The whole session shares one timeout; the delay
// after page load gives the charts time to paint onto their canvases.
func (s *Snapshotter) Snapshot(ctx context.Context, reportPath, figuresDir string, chartIDs []string) error {
	start := time.Now()

	absPath, err := filepath.Abs(reportPath)
	if err != nil {
		return errors.NewStorageError("failed to resolve report path", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return errors.NewStorageError("report file not found for snapshotting", err)
	}
	if err := os.MkdirAll(figuresDir, 0755); err != nil {
		return errors.NewStorageError("failed to create figures directory", err)
	}

	// setup ChromeDP
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, s.cfg.SnapshotTimeout)
	defer cancelRun()

	s.logger.InfoContext(ctx, "snapshotting report charts",
		slog.String("report", absPath),
		slog.Int("charts", len(chartIDs)))

	buffers := make(map[string][]byte, len(chartIDs))
	if err := chromedp.Run(runCtx, s.captureTasks(absPath, chartIDs, buffers)); err != nil {
		return errors.NewRenderError("failed to snapshot report charts", err)
	}

	for _, id := range chartIDs {
		buf, ok := buffers[id]
		if !ok {
			return errors.NewRenderError(fmt.Sprintf("no snapshot captured for chart %s", id), nil)
		}
		path := filepath.Join(figuresDir, id+".png")
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write snapshot %s", path), err)
		}
		s.logger.InfoContext(ctx, "saved chart snapshot",
			slog.String("chart", id),
			slog.String("path", path),
			slog.Int("bytes", len(buf)))
	}

	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.SnapshotDuration.Record(ctx, duration.Seconds())
	}
	s.logger.InfoContext(ctx, "snapshot session complete",
		slog.Int("charts", len(chartIDs)),
		slog.Duration("duration", duration))
	return nil
}

// captureTasks builds the browser script: open the page, wait for
// every chart element, let the canvases paint, then screenshot each
// element into buffers.
func (s *Snapshotter) captureTasks(absPath string, chartIDs []string, buffers map[string][]byte) chromedp.Tasks {
	actions := []chromedp.Action{
		chromedp.Navigate(fileURL(absPath)),
	}
	for _, id := range chartIDs {
		actions = append(actions, chromedp.WaitVisible("#"+id, chromedp.ByID))
	}
	if s.cfg.SnapshotDelay > 0 {
		actions = append(actions, chromedp.Sleep(s.cfg.SnapshotDelay))
	}
	for _, id := range chartIDs {
		id := id
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			var buf []byte
			if err := chromedp.Screenshot("#"+id, &buf, chromedp.NodeVisible, chromedp.ByQuery).Do(ctx); err != nil {
				return fmt.Errorf("failed to capture chart %s: %w", id, err)
			}
			buffers[id] = buf
			return nil
		}))
	}
	return chromedp.Tasks(actions)
}

// fileURL converts an absolute filesystem path to a file:// URL.
func fileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
