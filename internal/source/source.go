// =============================================================================
// CSV to QDC Codebook Converter - Code List Source
// =============================================================================
//
// Directory resolves a (project, list) pair to a file under the import
// directory and reads its rows:
//
//   <import>/<project>/<list>.csv    (read with csvparser)
//   <import>/<project>/<list>.xlsx   (read with xlsxparser)
//
// When both exist the CSV file wins. File names are matched case-insensitively
// because discovery lower-cases list names.
//
// =============================================================================

package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/csvparser"
	"github.com/ginjaninja78/CSV-to-QDC/internal/xlsxparser"
)

// Extensions lists the supported code-list extensions in priority order.
var Extensions = []string{".csv", ".xlsx"}

// Directory reads code lists from an import directory.
type Directory struct {
	Root string
	CSV  config.CSVSettings
	XLSX config.XLSXSettings
}

// NewDirectory creates a Directory from the configuration.
func NewDirectory(cfg *config.MainConfig) *Directory {
	return &Directory{
		Root: cfg.ImportDir,
		CSV:  cfg.CSVSettings,
		XLSX: cfg.XLSXSettings,
	}
}

// Rows returns the parsed rows of a project's code list.
// A list with no backing file yields an error wrapping fs.ErrNotExist.
func (d *Directory) Rows(project, list string) ([][]string, error) {
	path, ext, err := d.Locate(project, list)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".xlsx":
		return xlsxparser.ReadFile(path, d.XLSX)
	default:
		return csvparser.ReadFile(path, d.CSV)
	}
}

// Locate finds the file backing a code list.
//
// RETURNS:
//   - The file path and its lower-cased extension.
//   - An error wrapping fs.ErrNotExist if no supported file matches.
func (d *Directory) Locate(project, list string) (string, string, error) {
	dir := filepath.Join(d.Root, project)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("code list %s/%s: %w", project, list, err)
	}

	found := make(map[string]string, len(Extensions))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.EqualFold(base, list) {
			if _, dup := found[ext]; !dup {
				found[ext] = filepath.Join(dir, name)
			}
		}
	}

	for _, ext := range Extensions {
		if path, ok := found[ext]; ok {
			return path, ext, nil
		}
	}

	return "", "", fmt.Errorf("code list %s/%s: %w", project, list, fs.ErrNotExist)
}
