package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bechdelcli/internal/config"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()

	// Create subdirectories
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "raw"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "clean"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "aggregates"), 0755))

	writer := NewCSVWriter(&config.Paths{
		RawDir:        filepath.Join(tempDir, "raw"),
		CleanDir:      filepath.Join(tempDir, "clean"),
		AggregatesDir: filepath.Join(tempDir, "aggregates"),
	})

	return writer, tempDir
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name        string
		filePath    string
		options     WriteOptions
		expectError bool
		validate    func(t *testing.T, filePath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"Title", "Year", "Binary"},
				Records: [][]string{
					{"Frozen", "2013", "PASS"},
					{"21 & Over", "2013", "FAIL"},
				},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "Title,Year,Binary", lines[0])
				assert.Equal(t, "Frozen,2013,PASS", lines[1])
				assert.Equal(t, "21 & Over,2013,FAIL", lines[2])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers: []string{"Category", "Count"},
				Records: [][]string{
					{"Passed", "803"},
				},
				Append:    false,
				BOMPrefix: true,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				// Check for UTF-8 BOM
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

				// Remove BOM and check content
				contentWithoutBOM := content[3:]
				lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")
				assert.Equal(t, "Category,Count", lines[0])
				assert.Equal(t, "Passed,803", lines[1])
			},
		},
		{
			name:     "write without headers",
			filePath: "test_no_headers.csv",
			options: WriteOptions{
				Headers: nil,
				Records: [][]string{
					{"Data1", "Data2"},
					{"Data3", "Data4"},
				},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 2) // only records, no headers
				assert.Equal(t, "Data1,Data2", lines[0])
				assert.Equal(t, "Data3,Data4", lines[1])
			},
		},
		{
			name:     "empty records",
			filePath: "test_empty.csv",
			options: WriteOptions{
				Headers:   []string{"Col1", "Col2"},
				Records:   [][]string{},
				Append:    false,
				BOMPrefix: false,
			},
			expectError: false,
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 1) // only headers
				assert.Equal(t, "Col1,Col2", lines[0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath := filepath.Join(tempDir, "aggregates", tt.filePath)

			err := writer.WriteCSV(tt.filePath, tt.options)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				tt.validate(t, fullPath)
			}
		})
	}
}

func TestCSVWriter_WriteSimpleCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	headers := []string{"genre", "binary", "count"}
	records := [][]string{
		{"Action", "FAIL", "120"},
		{"Comedy", "PASS", "225"},
	}

	err := writer.WriteSimpleCSV("simple_test.csv", headers, records)
	assert.NoError(t, err)

	// Validate file content
	filePath := filepath.Join(tempDir, "aggregates", "simple_test.csv")
	content, err := os.ReadFile(filePath)
	require.NoError(t, err)

	// Check for BOM (WriteSimpleCSV uses BOMPrefix: true)
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))

	// Remove BOM and check content
	contentWithoutBOM := content[3:]
	lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")
	assert.Len(t, lines, 3) // header + 2 records
	assert.Equal(t, "genre,binary,count", lines[0])
	assert.Equal(t, "Action,FAIL,120", lines[1])
	assert.Equal(t, "Comedy,PASS,225", lines[2])
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	filePath := "append_test.csv"
	fullPath := filepath.Join(tempDir, "aggregates", filePath)

	// Create initial file
	initialRecords := [][]string{
		{"Initial1", "Initial2"},
		{"Data1", "Data2"},
	}
	err := writer.WriteSimpleCSV(filePath, []string{"Col1", "Col2"}, initialRecords)
	require.NoError(t, err)

	// Append new records
	appendRecords := [][]string{
		{"Appended1", "Appended2"},
		{"NewData1", "NewData2"},
	}
	err = writer.AppendToCSV(filePath, appendRecords)
	assert.NoError(t, err)

	// Validate content
	content, err := os.ReadFile(fullPath)
	require.NoError(t, err)

	// Remove BOM for easier parsing
	contentWithoutBOM := content[3:]
	lines := strings.Split(strings.TrimSpace(string(contentWithoutBOM)), "\n")

	assert.Len(t, lines, 5) // header + 2 initial + 2 appended
	assert.Equal(t, "Col1,Col2", lines[0])
	assert.Equal(t, "Initial1,Initial2", lines[1])
	assert.Equal(t, "Data1,Data2", lines[2])
	assert.Equal(t, "Appended1,Appended2", lines[3])
	assert.Equal(t, "NewData1,NewData2", lines[4])
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name           string
		inputPath      string
		expectedSuffix string
		isAbsolute     bool
	}{
		{
			name:           "absolute path",
			inputPath:      filepath.Join(tempDir, "elsewhere", "file.csv"),
			expectedSuffix: filepath.Join("elsewhere", "file.csv"),
			isAbsolute:     true,
		},
		{
			name:           "raw path",
			inputPath:      "raw/movies.csv",
			expectedSuffix: filepath.Join("raw", "movies.csv"),
			isAbsolute:     false,
		},
		{
			name:           "clean path",
			inputPath:      "clean/movies_clean.csv",
			expectedSuffix: filepath.Join("clean", "movies_clean.csv"),
			isAbsolute:     false,
		},
		{
			name:           "default to aggregates",
			inputPath:      "median_budget_by_category.csv",
			expectedSuffix: filepath.Join("aggregates", "median_budget_by_category.csv"),
			isAbsolute:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := writer.resolvePath(tt.inputPath)

			if tt.isAbsolute {
				assert.Equal(t, tt.inputPath, result)
			} else {
				assert.True(t, strings.HasSuffix(result, tt.expectedSuffix),
					"expected %s to end with %s", result, tt.expectedSuffix)
			}
		})
	}
}

func TestCSVWriter_SpecialCharacters(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	// Titles with characters that need CSV escaping
	headers := []string{"title", "plot", "genre"}
	records := [][]string{
		{"Monsters, Inc.", "Plot with \"quotes\"", "Animation, Comedy"},
		{"Amélie", "Café scenes: crème brûlée", "Comedy, Romance"},
		{"What's Your Number?", "Text,with,commas", "Comedy"},
	}

	err := writer.WriteSimpleCSV("special_chars.csv", headers, records)
	assert.NoError(t, err)

	// Read back and parse to verify CSV escaping worked correctly
	filePath := filepath.Join(tempDir, "aggregates", "special_chars.csv")
	file, err := os.Open(filePath)
	require.NoError(t, err)
	defer file.Close()

	// Skip BOM
	bom := make([]byte, 3)
	_, err = file.Read(bom)
	require.NoError(t, err)

	reader := csv.NewReader(file)
	allRecords, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Len(t, allRecords, 4) // header + 3 records

	assert.Equal(t, headers, allRecords[0])
	assert.Equal(t, "Monsters, Inc.", allRecords[1][0])
	assert.Equal(t, "Plot with \"quotes\"", allRecords[1][1])
	assert.Equal(t, "Amélie", allRecords[2][0])
	assert.Equal(t, "Café scenes: crème brûlée", allRecords[2][1])
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("clean/streamed.csv", []string{"imdb_id", "genre"})
	require.NoError(t, err)

	records := [][]string{
		{"tt1711425", "Comedy"},
		{"tt2024544", "Biography"},
		{"tt2024544", "Drama"},
	}
	for _, record := range records {
		require.NoError(t, stream.WriteRecord(record))
	}
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(filepath.Join(tempDir, "clean", "streamed.csv"))
	require.NoError(t, err)

	// BOM then header then records
	assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "imdb_id,genre", lines[0])
	assert.Equal(t, "tt1711425,Comedy", lines[1])
	assert.Equal(t, "tt2024544,Drama", lines[3])
}
