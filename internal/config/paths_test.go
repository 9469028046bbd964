package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetPaths tests path resolution with various scenarios
func TestGetPaths(t *testing.T) {
	t.Run("basic path resolution", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)
		require.NotNil(t, paths)

		// Verify all paths are absolute
		assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.DataDir), "DataDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.LogsDir), "LogsDir should be absolute")
		assert.True(t, filepath.IsAbs(paths.CredentialsFile), "CredentialsFile should be absolute")

		// Verify paths are correctly related to executable dir
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "credentials.json"), paths.CredentialsFile)
	})

	t.Run("consistent calls return same paths", func(t *testing.T) {
		paths1, err1 := GetPaths()
		require.NoError(t, err1)

		paths2, err2 := GetPaths()
		require.NoError(t, err2)

		assert.Equal(t, paths1.ExecutableDir, paths2.ExecutableDir)
		assert.Equal(t, paths1.DataDir, paths2.DataDir)
		assert.Equal(t, paths1.ReportHTML, paths2.ReportHTML)
	})

	t.Run("nested directory structure", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(paths.DataDir, "raw"), paths.RawDir)
		assert.Equal(t, filepath.Join(paths.DataDir, "clean"), paths.CleanDir)
		assert.Equal(t, filepath.Join(paths.DataDir, "aggregates"), paths.AggregatesDir)
		assert.Equal(t, filepath.Join(paths.DataDir, "reports"), paths.ReportsDir)
		assert.Equal(t, filepath.Join(paths.ReportsDir, "figures"), paths.FiguresDir)
	})

	t.Run("well-known data files", func(t *testing.T) {
		paths, err := GetPaths()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(paths.MoviesRawCSV, paths.RawDir))
		assert.True(t, strings.HasPrefix(paths.CleanMoviesCSV, paths.CleanDir))
		assert.True(t, strings.HasPrefix(paths.GenresLongCSV, paths.CleanDir))
		assert.True(t, strings.HasPrefix(paths.SummaryJSON, paths.AggregatesDir))
		assert.True(t, strings.HasPrefix(paths.ReportHTML, paths.ReportsDir))

		assert.Equal(t, "movies.csv", filepath.Base(paths.MoviesRawCSV))
		assert.Equal(t, "raw_bechdel.csv", filepath.Base(paths.BechdelRawCSV))
		assert.Equal(t, "movies_clean.csv", filepath.Base(paths.CleanMoviesCSV))
		assert.Equal(t, "genres_long.csv", filepath.Base(paths.GenresLongCSV))
		assert.Equal(t, "analysis.xlsx", filepath.Base(paths.WorkbookXLSX))
		assert.Equal(t, "bechdel_report.html", filepath.Base(paths.ReportHTML))
	})
}

// TestGetPathsFrom tests the data directory override
func TestGetPathsFrom(t *testing.T) {
	t.Run("absolute override", func(t *testing.T) {
		dataDir := t.TempDir()

		paths, err := GetPathsFrom(dataDir)
		require.NoError(t, err)

		assert.Equal(t, dataDir, paths.DataDir)
		assert.Equal(t, filepath.Join(dataDir, "raw"), paths.RawDir)
		assert.Equal(t, filepath.Join(dataDir, "reports", "figures"), paths.FiguresDir)

		// logs stay next to the executable regardless of the override
		assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
	})

	t.Run("relative override resolves against executable dir", func(t *testing.T) {
		paths, err := GetPathsFrom("testdata")
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(paths.ExecutableDir, "testdata"), paths.DataDir)
	})

	t.Run("empty override matches GetPaths", func(t *testing.T) {
		fromEmpty, err := GetPathsFrom("")
		require.NoError(t, err)

		plain, err := GetPaths()
		require.NoError(t, err)

		assert.Equal(t, plain.DataDir, fromEmpty.DataDir)
	})
}

// TestEnsureDirectories tests directory creation functionality
func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	paths := &Paths{
		ExecutableDir: tempDir,
		DataDir:       filepath.Join(tempDir, "data"),
		RawDir:        filepath.Join(tempDir, "data", "raw"),
		CleanDir:      filepath.Join(tempDir, "data", "clean"),
		AggregatesDir: filepath.Join(tempDir, "data", "aggregates"),
		ReportsDir:    filepath.Join(tempDir, "data", "reports"),
		FiguresDir:    filepath.Join(tempDir, "data", "reports", "figures"),
		LogsDir:       filepath.Join(tempDir, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{
		paths.DataDir, paths.RawDir, paths.CleanDir,
		paths.AggregatesDir, paths.ReportsDir, paths.FiguresDir, paths.LogsDir,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "directory %s should exist", dir)
		assert.True(t, info.IsDir())
	}

	// idempotent on existing directories
	assert.NoError(t, paths.EnsureDirectories())
}

func TestPathHelpers(t *testing.T) {
	paths := &Paths{
		RawDir:        "/base/data/raw",
		AggregatesDir: "/base/data/aggregates",
		FiguresDir:    "/base/data/reports/figures",
		LogsDir:       "/base/logs",
	}

	assert.Equal(t, filepath.Join("/base/data/aggregates", "yearly_finance.csv"),
		paths.GetAggregatePath("yearly_finance.csv"))
	assert.Equal(t, filepath.Join("/base/data/reports/figures", "budget-by-category.png"),
		paths.GetFigurePath("budget-by-category"))
	assert.Equal(t, filepath.Join("/base/logs", "analyzer.log"), paths.GetLogPath("analyzer.log"))
	assert.Equal(t, filepath.Join("/base/data/raw", "movies.csv"), paths.GetRawPath("movies.csv"))
}

func TestFileExists(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "present.csv")
	require.NoError(t, os.WriteFile(existing, []byte("year\n2010\n"), 0644))

	assert.True(t, FileExists(existing))
	assert.False(t, FileExists(filepath.Join(tempDir, "absent.csv")))
}
