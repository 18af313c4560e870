// =============================================================================
// CSV to QDC Codebook Converter - File Manager Utility
// =============================================================================
//
// This module provides the filesystem side of the converter:
//   - Project discovery under the import directory
//   - Persisting rendered codebooks under the export directory
//   - Per-project error log paths
//   - Directory management
//
// DIRECTORY LAYOUT:
//   <import>/<project>/<list>.csv|.xlsx     code lists, one file per list
//   <export>/<project>/<timestamp>.qdc      one file per successful write
//   <errors>/<project>.txt                  anomalies of the project's runs
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/CSV-to-QDC/internal/codebook"
	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
	"github.com/ginjaninja78/CSV-to-QDC/internal/source"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// ImportDir holds one subdirectory per project.
	ImportDir string

	// ExportDir receives rendered codebooks.
	ExportDir string

	// ErrorsDir receives per-project error logs.
	ErrorsDir string

	// TimestampFormat is the time layout of output file names.
	TimestampFormat string

	// Extension is appended to output file names, e.g. ".qdc".
	Extension string

	// now returns the current time. Tests replace it.
	now func() time.Time
}

// NewFileManager creates a FileManager from the configuration.
func NewFileManager(cfg *config.MainConfig) *FileManager {
	return &FileManager{
		ImportDir:       cfg.ImportDir,
		ExportDir:       cfg.ExportDir,
		ErrorsDir:       cfg.ErrorsDir,
		TimestampFormat: cfg.TimestampFormat,
		Extension:       cfg.OutputExtension,
		now:             time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the export and errors directories if they don't
// exist. The import directory is never created; a missing one is an error.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	if _, err := os.Stat(fm.ImportDir); err != nil {
		return fmt.Errorf("import directory %s: %w", fm.ImportDir, err)
	}

	for _, dir := range []string{fm.ExportDir, fm.ErrorsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// PROJECT DISCOVERY
// =============================================================================

// DiscoverProjects scans the import directory.
//
// Every subdirectory is a project. Its code lists are the lower-cased base
// names of the supported files it directly contains, deduplicated and
// sorted. A list present as both .csv and .xlsx appears once.
//
// RETURNS:
//   - The project index. Projects without code lists map to an empty slice.
//   - An error if the import directory cannot be read.
func (fm *FileManager) DiscoverProjects() (codebook.Index, error) {
	entries, err := os.ReadDir(fm.ImportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan import directory: %w", err)
	}

	index := make(codebook.Index)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		project := entry.Name()
		lists, err := fm.discoverLists(filepath.Join(fm.ImportDir, project))
		if err != nil {
			return nil, err
		}
		index[project] = lists
	}

	return index, nil
}

// discoverLists returns the code-list names found in one project directory.
func (fm *FileManager) discoverLists(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project directory %s: %w", dir, err)
	}

	seen := make(map[string]bool)
	lists := []string{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(source.Extensions, ext) {
			continue
		}

		list := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if list == "" || seen[list] {
			continue
		}
		seen[list] = true
		lists = append(lists, list)
	}

	slices.Sort(lists)
	return lists, nil
}

// Projects returns the sorted project names of an index.
func Projects(index codebook.Index) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// Persist writes a rendered codebook to <export>/<project>/<timestamp><ext>.
// It implements codebook.Persister.
//
// When a file with the same timestamp already exists, a short random suffix
// is added so earlier output is never overwritten.
//
// RETURNS:
//   - The absolute path of the written file.
//   - An error if the directory or file cannot be written.
func (fm *FileManager) Persist(project, text string) (string, error) {
	dir := filepath.Join(fm.ExportDir, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fm.OutputFileName())
	if _, err := os.Stat(path); err == nil {
		stem := strings.TrimSuffix(filepath.Base(path), fm.Extension)
		path = filepath.Join(dir, stem+"-"+uuid.NewString()[:8]+fm.Extension)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write codebook %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// OutputFileName returns the file name of a codebook written now.
//
// EXAMPLE:
//   format: "20060102-150405", extension: ".qdc"
//   output: "20240115-143022.qdc"
func (fm *FileManager) OutputFileName() string {
	now := time.Now
	if fm.now != nil {
		now = fm.now
	}
	return now().Format(fm.TimestampFormat) + fm.Extension
}

// ErrorLogPath returns the error log file of a project.
func (fm *FileManager) ErrorLogPath(project string) string {
	return filepath.Join(fm.ErrorsDir, project+".txt")
}
