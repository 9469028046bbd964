package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bechdelcli/internal/config"
	"bechdelcli/internal/dataprocessing"
	"bechdelcli/internal/exporter"
	"bechdelcli/pkg/contracts/domain"
)

func analyzerOutputDir(t *testing.T) (*config.Paths, string) {
	t.Helper()

	tempDir := t.TempDir()
	paths := &config.Paths{
		DataDir:       tempDir,
		RawDir:        filepath.Join(tempDir, "raw"),
		CleanDir:      filepath.Join(tempDir, "clean"),
		AggregatesDir: filepath.Join(tempDir, "aggregates"),
		ReportsDir:    filepath.Join(tempDir, "reports"),
		FiguresDir:    filepath.Join(tempDir, "reports", "figures"),
		LogsDir:       filepath.Join(tempDir, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())
	return paths, tempDir
}

func TestLoadCleanMovies_RoundTrip(t *testing.T) {
	paths, tempDir := analyzerOutputDir(t)

	movies := []domain.CleanMovie{
		{
			MovieRecord: domain.MovieRecord{
				Year:         2013,
				Title:        "21 & Over",
				Binary:       domain.TestOutcomeFail,
				Budget:       13000000,
				DomGross:     "25682380",
				IntGross:     "42195766",
				Budget2013:   13000000,
				DomGross2013: "25682380",
				Metascore:    math.NaN(),
				ImdbRating:   5.9,
			},
			Category: domain.CategoryNoTalk,
		},
		{
			MovieRecord: domain.MovieRecord{
				Year:         1971,
				Title:        "Escape from the Planet of the Apes",
				Binary:       domain.TestOutcomePass,
				Budget:       math.NaN(),
				Budget2013:   20000000,
				DomGross2013: "#N/A",
				Metascore:    math.NaN(),
				ImdbRating:   math.NaN(),
			},
			Category: domain.CategoryPassed,
		},
	}

	clean := exporter.NewCleanExporter(paths)
	outputPath := filepath.Join(tempDir, "clean", "movies_clean.csv")
	require.NoError(t, clean.ExportCleanMovies(movies, outputPath))

	loaded, err := loadCleanMovies(outputPath)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	first := loaded[0]
	assert.Equal(t, 2013, first.Year)
	assert.Equal(t, "21 & Over", first.Title)
	assert.Equal(t, domain.TestOutcomeFail, first.Binary)
	assert.Equal(t, domain.CategoryNoTalk, first.Category)
	assert.Equal(t, float64(13000000), first.Budget2013)
	assert.Equal(t, "25682380", first.DomGross2013)
	assert.True(t, math.IsNaN(first.Metascore), "empty metascore cell loads as NaN")
	assert.Equal(t, 5.9, first.ImdbRating)

	second := loaded[1]
	assert.Equal(t, domain.CategoryPassed, second.Category)
	assert.Equal(t, "#N/A", second.DomGross2013, "gross text survives unparsed")
	assert.True(t, math.IsNaN(second.Metascore))
}

func TestLoadCleanMovies_MissingColumns(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "movies_clean.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,genre\nFoo,Comedy\n"), 0644))

	_, err := loadCleanMovies(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestLoadCleanMovies_FileMissing(t *testing.T) {
	_, err := loadCleanMovies(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestLoadGenreRows_RoundTrip(t *testing.T) {
	paths, tempDir := analyzerOutputDir(t)

	rows := []domain.GenreLongRow{
		{ImdbID: "tt1711425", Title: "21 & Over", Year: 2013, Binary: domain.TestOutcomeFail, Category: domain.CategoryNoTalk, Genre: "Comedy"},
		{ImdbID: "tt2024544", Title: "12 Years a Slave", Year: 2013, Binary: domain.TestOutcomeFail, Category: domain.CategoryFewerWomen, Genre: "Biography"},
		{ImdbID: "tt2024544", Title: "12 Years a Slave", Year: 2013, Binary: domain.TestOutcomeFail, Category: domain.CategoryFewerWomen, Genre: "Drama"},
	}

	clean := exporter.NewCleanExporter(paths)
	outputPath := filepath.Join(tempDir, "clean", "genres_long.csv")
	require.NoError(t, clean.ExportGenresLong(rows, outputPath))

	loaded, err := loadGenreRows(outputPath)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, rows, loaded)
}

func TestLoadRatingCounts_RoundTrip(t *testing.T) {
	paths, tempDir := analyzerOutputDir(t)

	rows := []domain.RatingCount{
		{Rating: 0, Description: "unscored", Count: 12},
		{Rating: 3, Description: "passes all three criteria", Count: 803},
	}

	aggregates := exporter.NewAggregateExporter(paths)
	outputPath := filepath.Join(tempDir, "aggregates", "rating_distribution.csv")
	require.NoError(t, aggregates.ExportRatingDistribution(rows, outputPath))

	loaded, err := loadRatingCounts(outputPath)
	require.NoError(t, err)
	assert.Equal(t, rows, loaded)
}

func TestLoadOverview_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "summary.json")

	overview := domain.DatasetOverview{
		RunID:       "run-123",
		GeneratedAt: time.Date(2021, 3, 9, 12, 0, 0, 0, time.UTC),
		SourceRows:  1794,
		YearMin:     1970,
		YearMax:     2013,
		PassCount:   803,
		FailCount:   991,
		PassRate:    0.4476,
		Columns: []domain.ColumnQuality{
			{Column: "budget_2013", Present: 1794, Missing: 0},
		},
	}

	summarizer := dataprocessing.NewSummarizer(nil)
	require.NoError(t, summarizer.WriteJSON(context.Background(), path, overview))

	loaded, err := loadOverview(path)
	require.NoError(t, err)
	assert.Equal(t, overview, loaded)
}

func TestOptionalFloat(t *testing.T) {
	assert.True(t, math.IsNaN(optionalFloat("")))
	assert.True(t, math.IsNaN(optionalFloat("#N/A")))
	assert.Equal(t, 13000000.0, optionalFloat("13000000"))
	assert.Equal(t, 5.9, optionalFloat("5.9"))
}

func TestField(t *testing.T) {
	record := []string{"a", " b ", "c"}
	assert.Equal(t, "b", field(record, 1))
	assert.Equal(t, "", field(record, -1))
	assert.Equal(t, "", field(record, 3))
}
