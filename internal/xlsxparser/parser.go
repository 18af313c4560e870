// =============================================================================
// CSV to QDC Codebook Converter - XLSX Code List Parser
// =============================================================================
//
// This module reads code lists kept as Excel workbooks instead of CSV files.
// The layout is the same as a CSV code list:
//
//   | Column A | Column B                 |
//   |----------|--------------------------|
//   | apple    | a fruit                  |
//   | banana   |                          |
//
// Only one sheet is read: the configured sheet, or the first sheet when none
// is configured. Trailing empty cells are dropped by excelize, so a row with
// no description comes back with a single column.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadFile reads every non-blank row of a code-list workbook.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: The XLSX settings from the configuration.
//
// RETURNS:
//   - The rows, each a slice of trimmed cell values.
//   - An error if the workbook or sheet cannot be read. A missing file is
//     reported with an error wrapping fs.ErrNotExist.
func ReadFile(filePath string, settings config.XLSXSettings) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := resolveSheet(f, settings.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	raw, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read rows: %w", filePath, err)
	}

	var rows [][]string
	for _, record := range raw {
		row := cleanRow(record)
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// resolveSheet returns the configured sheet if it exists, or the first sheet.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	if sheet == "" {
		name := f.GetSheetName(0)
		if name == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return name, nil
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil || index < 0 {
		return "", fmt.Errorf("sheet %q not found", sheet)
	}

	return sheet, nil
}

// cleanRow trims every cell and drops trailing empty cells. A row made only of
// empty cells comes back empty.
func cleanRow(record []string) []string {
	row := make([]string, len(record))
	for i, cell := range record {
		row[i] = strings.TrimSpace(cell)
	}

	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}

	return row[:end]
}
