package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "bechdelcli/internal/errors"
	"bechdelcli/pkg/contracts/domain"
)

// utf8BOM is stripped from the first header cell when present. The raw
// TidyTuesday exports carry it and so do our own CSV outputs.
const utf8BOM = "\ufeff"

// Reader decodes the raw dataset CSV files into typed records. Columns are
// located by header name, never by position, so reordered exports still parse.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a dataset reader
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadMovies decodes the joined movie/Bechdel table. Missing or non-numeric
// values in numeric columns come back as NaN; the 2013 gross columns stay raw.
func (r *Reader) ReadMovies(path string) ([]domain.MovieRecord, error) {
	rows, columnMap, err := readTable(path)
	if err != nil {
		return nil, err
	}

	required := []string{"year", "title", "clean_test", "binary", "budget_2013"}
	for _, col := range required {
		if _, exists := columnMap[col]; !exists {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("movies table is missing required column %q", col), nil)
		}
	}

	records := make([]domain.MovieRecord, 0, len(rows))
	for i, row := range rows {
		getString := func(col string) string {
			if idx, exists := columnMap[col]; exists && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		parseFloat := func(col string) float64 {
			raw := strings.ReplaceAll(getString(col), ",", "")
			if raw == "" {
				return math.NaN()
			}
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return math.NaN()
			}
			return val
		}
		parseInt := func(col string) int {
			raw := strings.ReplaceAll(getString(col), ",", "")
			val, err := strconv.Atoi(raw)
			if err != nil {
				return 0
			}
			return val
		}

		// Skip rows that carry no identifying data at all
		if getString("title") == "" && getString("imdb") == "" && getString("year") == "" {
			r.logger.Debug("Skipping empty movies row", slog.Int("row", i+2))
			continue
		}

		record := domain.MovieRecord{
			Year:         parseInt("year"),
			Imdb:         getString("imdb"),
			Title:        getString("title"),
			Test:         getString("test"),
			CleanTest:    domain.ReasonCode(getString("clean_test")),
			Binary:       domain.TestOutcome(strings.ToUpper(getString("binary"))),
			Budget:       parseFloat("budget"),
			DomGross:     getString("domgross"),
			IntGross:     getString("intgross"),
			Code:         getString("code"),
			Budget2013:   parseFloat("budget_2013"),
			DomGross2013: getString("domgross_2013"),
			IntGross2013: getString("intgross_2013"),
			PeriodCode:   parseInt("period_code"),
			DecadeCode:   parseInt("decade_code"),
			ImdbID:       getString("imdb_id"),
			Plot:         getString("plot"),
			Rating:       getString("rating"),
			Response:     getString("response"),
			Language:     getString("language"),
			Country:      getString("country"),
			Writer:       getString("writer"),
			Metascore:    parseFloat("metascore"),
			ImdbRating:   parseFloat("imdb_rating"),
			Director:     getString("director"),
			Released:     getString("released"),
			Actors:       getString("actors"),
			Genre:        getString("genre"),
			Awards:       getString("awards"),
			Runtime:      getString("runtime"),
			Type:         getString("type"),
			Poster:       getString("poster"),
			ImdbVotes:    parseFloat("imdb_votes"),
			Error:        getString("error"),
		}
		records = append(records, record)
	}

	r.logger.Info("Movies table decoded",
		slog.String("path", path),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(columnMap)))

	return records, nil
}

// ReadBechdelRatings decodes the standalone 0-3 rating table
func (r *Reader) ReadBechdelRatings(path string) ([]domain.BechdelRating, error) {
	rows, columnMap, err := readTable(path)
	if err != nil {
		return nil, err
	}

	for _, col := range []string{"year", "imdb_id", "rating"} {
		if _, exists := columnMap[col]; !exists {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("bechdel ratings table is missing required column %q", col), nil)
		}
	}

	ratings := make([]domain.BechdelRating, 0, len(rows))
	for i, row := range rows {
		getString := func(col string) string {
			if idx, exists := columnMap[col]; exists && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		parseInt := func(col string) int {
			val, err := strconv.Atoi(getString(col))
			if err != nil {
				return 0
			}
			return val
		}

		if getString("imdb_id") == "" && getString("title") == "" {
			r.logger.Debug("Skipping empty ratings row", slog.Int("row", i+2))
			continue
		}

		ratings = append(ratings, domain.BechdelRating{
			Year:   parseInt("year"),
			ID:     parseInt("id"),
			ImdbID: getString("imdb_id"),
			Title:  getString("title"),
			Rating: parseInt("rating"),
		})
	}

	r.logger.Info("Bechdel ratings decoded",
		slog.String("path", path),
		slog.Int("rows", len(ratings)))

	return ratings, nil
}

// readTable reads a CSV file and returns its data rows plus a lower-cased
// header-name to column-index map.
func readTable(path string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("%s is empty", path), nil)
	}
	if err != nil {
		return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to read header of %s", path), err)
	}

	columnMap := buildColumnMap(header)

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
		}
		rows = append(rows, row)
	}

	return rows, columnMap, nil
}

// buildColumnMap maps normalized header names to their column index
func buildColumnMap(header []string) map[string]int {
	columnMap := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := columnMap[normalized]; !exists {
			columnMap[normalized] = i
		}
	}
	return columnMap
}
