package xlsxparser

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
)

// writeWorkbook saves a workbook whose first sheet holds the given rows.
func writeWorkbook(t *testing.T, rows [][]string, extraSheet string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}

	if extraSheet != "" {
		_, err := f.NewSheet(extraSheet)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(extraSheet, "A1", "other"))
		require.NoError(t, f.SetCellValue(extraSheet, "B1", "from second sheet"))
	}

	path := filepath.Join(t.TempDir(), "fruit.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFileFirstSheet(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"apple", "a fruit"},
		{"", ""},
		{" banana ", ""},
		{"cherry", " red "},
	}, "")

	rows, err := ReadFile(path, config.XLSXSettings{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"apple", "a fruit"},
		{"banana"},
		{"cherry", "red"},
	}, rows)
}

func TestReadFileNamedSheet(t *testing.T) {
	path := writeWorkbook(t, [][]string{{"apple", "a fruit"}}, "Extra")

	rows, err := ReadFile(path, config.XLSXSettings{Sheet: "Extra"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"other", "from second sheet"}}, rows)

	_, err = ReadFile(path, config.XLSXSettings{Sheet: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"), config.XLSXSettings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
