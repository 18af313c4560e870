// =============================================================================
// CSV to QDC Codebook Converter - CSV Parser Module
// =============================================================================
//
// This module reads code-list CSV files. A code list has no header row; each
// row is one code:
//
//   column 0 : label
//   column 1 : description (optional)
//
// Rows are returned as raw string slices so the loader can decide whether a
// row has the expected (label, description) shape. Blank rows are skipped.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile reads every non-blank row of a code-list CSV file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the configuration.
//
// RETURNS:
//   - The rows, each a slice of trimmed column values.
//   - An error if the file cannot be opened or parsed. A missing file is
//     reported with an error wrapping fs.ErrNotExist.
func ReadFile(filePath string, settings config.CSVSettings) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := Parse(bufio.NewReader(file), settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	return rows, nil
}

// Parse reads every non-blank row from r.
func Parse(r io.Reader, settings config.CSVSettings) ([][]string, error) {
	reader := csv.NewReader(r)
	if err := configureReader(reader, settings); err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		row := cleanRow(record)
		if isRowEmpty(row) {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := settings.Comma()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Code lists mix one- and two-column rows.
	reader.FieldsPerRecord = -1

	// Hand-edited spreadsheets export stray quotes.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true

	return nil
}

// cleanRow trims whitespace from every cell and strips a UTF-8 byte order mark
// from the first one.
func cleanRow(record []string) []string {
	row := make([]string, len(record))
	for i, cell := range record {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}
		row[i] = strings.TrimSpace(cell)
	}
	return row
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
