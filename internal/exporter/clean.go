package exporter

import (
	"fmt"

	"bechdelcli/internal/config"
	"bechdelcli/pkg/contracts/domain"
)

// CleanExporter writes the cleaned movie table and the derived genre
// layouts produced by the analyzer
type CleanExporter struct {
	csvWriter *CSVWriter
}

// NewCleanExporter creates a new clean-table exporter
func NewCleanExporter(paths *config.Paths) *CleanExporter {
	return &CleanExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCleanMovies writes the full recoded movie table. The rows keep
// the order the cleaner produced (category order, source order within
// one category).
func (c *CleanExporter) ExportCleanMovies(movies []domain.CleanMovie, outputPath string) error {
	csvRecords := make([][]string, 0, len(movies))
	for _, movie := range movies {
		csvRecords = append(csvRecords, c.movieToCSVRow(movie))
	}

	if err := c.csvWriter.WriteSimpleCSV(outputPath, c.getMovieHeaders(), csvRecords); err != nil {
		return fmt.Errorf("failed to write clean movie table: %w", err)
	}
	return nil
}

// ExportGenresWide streams the wide genre layout, one boolean column per
// known genre token
func (c *CleanExporter) ExportGenresWide(rows []domain.GenreWideRow, outputPath string) error {
	headers := append([]string{"imdb_id", "title", "year", "binary", "category"}, domain.GenreTokens()...)

	stream, err := c.csvWriter.CreateStreamWriter(outputPath, headers)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for wide genre table: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ImdbID,
			row.Title,
			formatInt(row.Year),
			string(row.Binary),
			string(row.Category),
		}
		for _, flag := range row.Flags {
			record = append(record, formatBool(flag))
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write wide genre row: %w", err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close wide genre table: %w", err)
	}
	return nil
}

// ExportGenresLong streams the long genre layout, one row per
// (record, matched genre) pair
func (c *CleanExporter) ExportGenresLong(rows []domain.GenreLongRow, outputPath string) error {
	headers := []string{"imdb_id", "title", "year", "binary", "category", "genre"}

	stream, err := c.csvWriter.CreateStreamWriter(outputPath, headers)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for long genre table: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.ImdbID,
			row.Title,
			formatInt(row.Year),
			string(row.Binary),
			string(row.Category),
			row.Genre,
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write long genre row: %w", err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close long genre table: %w", err)
	}
	return nil
}

// getMovieHeaders returns the CSV headers for the cleaned movie table.
// The column order follows the source dataset with the derived category
// appended last.
func (c *CleanExporter) getMovieHeaders() []string {
	return []string{
		"year", "imdb", "title", "test", "clean_test", "binary",
		"budget", "domgross", "intgross", "code",
		"budget_2013", "domgross_2013", "intgross_2013",
		"period_code", "decade_code",
		"imdb_id", "plot", "rating", "response", "language", "country",
		"writer", "metascore", "imdb_rating", "director", "released",
		"actors", "genre", "awards", "runtime", "type", "poster",
		"imdb_votes", "error", "category",
	}
}

// movieToCSVRow converts a cleaned movie record to a CSV row
func (c *CleanExporter) movieToCSVRow(movie domain.CleanMovie) []string {
	return []string{
		formatInt(movie.Year),
		movie.Imdb,
		movie.Title,
		movie.Test,
		string(movie.CleanTest),
		string(movie.Binary),
		formatOptionalFloat(movie.Budget),
		movie.DomGross,
		movie.IntGross,
		movie.Code,
		formatOptionalFloat(movie.Budget2013),
		movie.DomGross2013,
		movie.IntGross2013,
		formatOptionalInt(movie.PeriodCode),
		formatOptionalInt(movie.DecadeCode),
		movie.ImdbID,
		movie.Plot,
		movie.Rating,
		movie.Response,
		movie.Language,
		movie.Country,
		movie.Writer,
		formatOptionalFloat(movie.Metascore),
		formatOptionalFloat(movie.ImdbRating),
		movie.Director,
		movie.Released,
		movie.Actors,
		movie.Genre,
		movie.Awards,
		movie.Runtime,
		movie.Type,
		movie.Poster,
		formatOptionalFloat(movie.ImdbVotes),
		movie.Error,
		string(movie.Category),
	}
}
