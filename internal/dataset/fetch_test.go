package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bechdelcli/internal/config"
	apperrors "bechdelcli/internal/errors"
)

func testDatasetConfig() config.DatasetConfig {
	return config.DatasetConfig{
		FetchTimeout: 5 * time.Second,
		CacheTTL:     time.Hour,
		RateRPS:      100,
		RateBurst:    10,
	}
}

func TestFetcherFetch(t *testing.T) {
	body := "year,title\n2013,Frozen\n"
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Contains(t, r.Header.Get("User-Agent"), "bechdelcli/")
		w.Write([]byte(body))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "movies.csv")
	fetcher := NewFetcher(testDatasetConfig(), nil)

	result, err := fetcher.Fetch(context.Background(), server.URL, dest, false)
	require.NoError(t, err)

	wantSum := sha256.Sum256([]byte(body))
	assert.Equal(t, int64(len(body)), result.Bytes)
	assert.Equal(t, hex.EncodeToString(wantSum[:]), result.Checksum)
	assert.False(t, result.Cached)
	assert.Equal(t, 1, requests)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(written))

	// A second fetch inside the TTL must not touch the network
	cached, err := fetcher.Fetch(context.Background(), server.URL, dest, false)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, result.Checksum, cached.Checksum)
	assert.Equal(t, 1, requests)

	// force bypasses the cache
	forced, err := fetcher.Fetch(context.Background(), server.URL, dest, true)
	require.NoError(t, err)
	assert.False(t, forced.Cached)
	assert.Equal(t, 2, requests)
}

func TestFetcherFetch_ZeroTTLDisablesCache(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("data\n"))
	}))
	defer server.Close()

	cfg := testDatasetConfig()
	cfg.CacheTTL = 0
	fetcher := NewFetcher(cfg, nil)
	dest := filepath.Join(t.TempDir(), "movies.csv")

	_, err := fetcher.Fetch(context.Background(), server.URL, dest, false)
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), server.URL, dest, false)
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
}

func TestFetcherFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testDatasetConfig(), nil)
	dest := filepath.Join(t.TempDir(), "movies.csv")

	_, err := fetcher.Fetch(context.Background(), server.URL, dest, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNetwork, appErr.Type)

	// No half-written file may remain
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetcherFetch_ServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewFetcher(testDatasetConfig(), nil)
	dest := filepath.Join(t.TempDir(), "movies.csv")

	_, err := fetcher.Fetch(context.Background(), url, dest, false)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeNetwork, appErr.Type)
}

func TestFetcherFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data\n"))
	}))
	defer server.Close()

	fetcher := NewFetcher(testDatasetConfig(), nil)
	dest := filepath.Join(t.TempDir(), "movies.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, server.URL, dest, false)
	require.Error(t, err)
}

func TestFetcherFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movies.csv":
			w.Write([]byte("year,title\n2013,Frozen\n"))
		case "/raw_bechdel.csv":
			w.Write([]byte("year,id,imdb_id,title,rating\n2013,4982,2294629,Frozen,3\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	rawDir := t.TempDir()
	paths := &config.Paths{
		RawDir:        rawDir,
		MoviesRawCSV:  filepath.Join(rawDir, "movies.csv"),
		BechdelRawCSV: filepath.Join(rawDir, "raw_bechdel.csv"),
	}

	cfg := testDatasetConfig()
	cfg.MoviesURL = server.URL + "/movies.csv"
	cfg.BechdelURL = server.URL + "/raw_bechdel.csv"

	fetcher := NewFetcher(cfg, nil)
	results, err := fetcher.FetchAll(context.Background(), paths, false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.FileExists(t, paths.MoviesRawCSV)
	assert.FileExists(t, paths.BechdelRawCSV)
	assert.Greater(t, results[0].Bytes, int64(0))
	assert.Greater(t, results[1].Bytes, int64(0))
}

func TestFetcherFetchAll_StopsOnFirstFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	rawDir := t.TempDir()
	paths := &config.Paths{
		RawDir:        rawDir,
		MoviesRawCSV:  filepath.Join(rawDir, "movies.csv"),
		BechdelRawCSV: filepath.Join(rawDir, "raw_bechdel.csv"),
	}

	cfg := testDatasetConfig()
	cfg.MoviesURL = server.URL + "/movies.csv"
	cfg.BechdelURL = server.URL + "/raw_bechdel.csv"

	fetcher := NewFetcher(cfg, nil)
	results, err := fetcher.FetchAll(context.Background(), paths, false)
	require.Error(t, err)
	assert.Empty(t, results)
}
