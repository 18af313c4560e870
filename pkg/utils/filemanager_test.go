package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/CSV-to-QDC/internal/codebook"
	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.ImportDir = filepath.Join(root, "import")
	cfg.ExportDir = filepath.Join(root, "export")
	cfg.ErrorsDir = filepath.Join(root, "export", "errors")

	fm := NewFileManager(cfg)
	fm.now = func() time.Time {
		return time.Date(2024, time.January, 15, 14, 30, 22, 0, time.UTC)
	}
	return fm
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))
}

func TestDiscoverProjects(t *testing.T) {
	fm := newTestManager(t)

	touch(t, filepath.Join(fm.ImportDir, "demo", "Fruit.csv"))
	touch(t, filepath.Join(fm.ImportDir, "demo", "fruit.xlsx"))
	touch(t, filepath.Join(fm.ImportDir, "demo", "top-level-codes.csv"))
	touch(t, filepath.Join(fm.ImportDir, "demo", "notes.txt"))
	touch(t, filepath.Join(fm.ImportDir, "demo", ".csv"))
	touch(t, filepath.Join(fm.ImportDir, "demo", "nested", "deep.csv"))
	touch(t, filepath.Join(fm.ImportDir, "stray.csv"))
	require.NoError(t, os.MkdirAll(filepath.Join(fm.ImportDir, "empty"), 0755))

	index, err := fm.DiscoverProjects()
	require.NoError(t, err)

	assert.Equal(t, codebook.Index{
		"demo":  {"fruit", "top-level-codes"},
		"empty": {},
	}, index)
	assert.Equal(t, []string{"demo", "empty"}, Projects(index))
}

func TestDiscoverProjectsMissingImportDir(t *testing.T) {
	fm := newTestManager(t)

	_, err := fm.DiscoverProjects()
	assert.Error(t, err)
}

func TestPersist(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.Persist("demo", "<CodeBook/>")
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, filepath.Join(fm.ExportDir, "demo", "20240115-143022.qdc"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<CodeBook/>", string(data))
}

func TestPersistDoesNotOverwrite(t *testing.T) {
	fm := newTestManager(t)

	first, err := fm.Persist("demo", "first")
	require.NoError(t, err)
	second, err := fm.Persist("demo", "second")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(second), "20240115-143022-"))
	assert.True(t, strings.HasSuffix(second, ".qdc"))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestPersistUnwritableExportDir(t *testing.T) {
	fm := newTestManager(t)

	// A regular file where the export directory should be.
	touch(t, fm.ExportDir)

	_, err := fm.Persist("demo", "text")
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestManager(t)

	assert.Error(t, fm.EnsureDirectories(), "missing import directory")

	require.NoError(t, os.MkdirAll(fm.ImportDir, 0755))
	require.NoError(t, fm.EnsureDirectories())

	for _, dir := range []string{fm.ExportDir, fm.ErrorsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestErrorLogPath(t *testing.T) {
	fm := newTestManager(t)
	assert.Equal(t, filepath.Join(fm.ErrorsDir, "demo.txt"), fm.ErrorLogPath("demo"))
}
