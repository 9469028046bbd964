package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"bechdelcli/internal/config"
	apperrors "bechdelcli/internal/errors"
	"bechdelcli/internal/infrastructure"
	"bechdelcli/pkg/contracts"
)

// userAgent identifies the fetcher to the dataset hosts.
const userAgent = "bechdelcli/" + contracts.Version

// FetchResult describes a completed (or cache-satisfied) download.
type FetchResult struct {
	URL      string
	Path     string
	Bytes    int64
	Checksum string
	Cached   bool
	Duration time.Duration
}

// Fetcher downloads the raw dataset files. Downloads are rate limited so a
// scheduled run cannot hammer the upstream host, and a fresh cached copy
// short-circuits the network entirely.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     config.DatasetConfig
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewFetcher creates a dataset fetcher
func NewFetcher(cfg config.DatasetConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		cfg:     cfg,
		logger:  logger,
	}
}

// WithMetrics attaches pipeline metrics to the fetcher
func (f *Fetcher) WithMetrics(metrics *infrastructure.PipelineMetrics) *Fetcher {
	f.metrics = metrics
	return f
}

// FetchAll downloads both dataset files into the raw data directory. Any
// failure is returned as-is: a partial dataset is worse than none, so the
// caller is expected to treat it as fatal.
func (f *Fetcher) FetchAll(ctx context.Context, paths *config.Paths, force bool) ([]*FetchResult, error) {
	targets := []struct {
		url  string
		dest string
	}{
		{f.cfg.MoviesURL, paths.MoviesRawCSV},
		{f.cfg.BechdelURL, paths.BechdelRawCSV},
	}

	results := make([]*FetchResult, 0, len(targets))
	for _, t := range targets {
		result, err := f.Fetch(ctx, t.url, t.dest, force)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Fetch downloads url into destPath. When force is false and a cached copy is
// younger than the configured TTL, the cached file is returned instead.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string, force bool) (*FetchResult, error) {
	if !force && f.isFresh(destPath) {
		checksum, err := checksumFile(destPath)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to checksum cached file %s", destPath), err)
		}
		info, err := os.Stat(destPath)
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat cached file %s", destPath), err)
		}

		f.logger.InfoContext(ctx, "Using cached dataset file",
			slog.String("path", destPath),
			slog.Int64("bytes", info.Size()),
			slog.Time("fetched_at", info.ModTime()))

		return &FetchResult{
			URL:      url,
			Path:     destPath,
			Bytes:    info.Size(),
			Checksum: checksum,
			Cached:   true,
		}, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	start := time.Now()
	if f.metrics != nil {
		f.metrics.FetchRequestsTotal.Add(ctx, 1)
	}

	f.logger.InfoContext(ctx, "Downloading dataset file",
		slog.String("url", url),
		slog.String("destination", destPath))

	bytes, checksum, err := f.download(ctx, url, destPath)
	duration := time.Since(start)
	if f.metrics != nil {
		f.metrics.FetchDuration.Record(ctx, duration.Seconds())
	}
	if err != nil {
		return nil, err
	}
	if f.metrics != nil {
		f.metrics.FetchBytesTotal.Add(ctx, bytes)
	}

	f.logger.InfoContext(ctx, "Dataset file downloaded",
		slog.String("url", url),
		slog.String("path", destPath),
		slog.Int64("bytes", bytes),
		slog.String("sha256", checksum),
		slog.Duration("duration", duration))

	return &FetchResult{
		URL:      url,
		Path:     destPath,
		Bytes:    bytes,
		Checksum: checksum,
		Duration: duration,
	}, nil
}

// download performs the HTTP transfer into a temporary file and renames it
// into place, so an interrupted run never leaves a half-written file that the
// freshness check would mistake for a good copy.
func (f *Fetcher) download(ctx context.Context, url, destPath string) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", apperrors.NewNetworkError(fmt.Sprintf("failed to build request for %s", url), err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", apperrors.NewNetworkError(fmt.Sprintf("failed to download %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", apperrors.NewNetworkError(
			fmt.Sprintf("download of %s failed with status %d", url, resp.StatusCode), nil)
	}

	tempPath := destPath + ".download"
	out, err := os.Create(tempPath)
	if err != nil {
		return 0, "", apperrors.NewStorageError(fmt.Sprintf("failed to create %s", tempPath), err)
	}

	hasher := sha256.New()
	bytes, err := io.Copy(out, io.TeeReader(resp.Body, hasher))
	closeErr := out.Close()
	if err != nil {
		os.Remove(tempPath)
		return 0, "", apperrors.NewNetworkError(fmt.Sprintf("failed to read body of %s", url), err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return 0, "", apperrors.NewStorageError(fmt.Sprintf("failed to close %s", tempPath), closeErr)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return 0, "", apperrors.NewStorageError(fmt.Sprintf("failed to move download into %s", destPath), err)
	}

	return bytes, hex.EncodeToString(hasher.Sum(nil)), nil
}

// isFresh reports whether destPath exists, is non-empty, and is younger than
// the cache TTL. A zero TTL disables caching.
func (f *Fetcher) isFresh(destPath string) bool {
	if f.cfg.CacheTTL <= 0 {
		return false
	}
	info, err := os.Stat(destPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	return time.Since(info.ModTime()) < f.cfg.CacheTTL
}

// checksumFile hashes an existing file on disk
func checksumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
