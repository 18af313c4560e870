package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/CSV-to-QDC/internal/codebook"
	"github.com/ginjaninja78/CSV-to-QDC/internal/config"
)

func TestSelectProjects(t *testing.T) {
	index := codebook.Index{"b": nil, "a": {"fruit"}}

	got, err := selectProjects(index, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = selectProjects(index, []string{"b", "ghost"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "ghost"}, got)

	_, err = selectProjects(index, nil, false)
	assert.Error(t, err)

	_, err = selectProjects(index, []string{"a"}, true)
	assert.Error(t, err)
}

// writeConfig writes a configuration rooted at dir and returns its path.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	cfg := config.Default()
	cfg.ImportDir = filepath.Join(dir, "import")
	cfg.ExportDir = filepath.Join(dir, "export")
	cfg.ErrorsDir = filepath.Join(dir, "export", "errors")
	cfg.LogLevel = "error"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestGenerateCommandWritesCodebook(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	list := filepath.Join(dir, "import", "demo", "fruit.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(list), 0755))
	require.NoError(t, os.WriteFile(list, []byte("apple,a fruit\n"), 0644))

	t.Cleanup(func() {
		allProjects, dryRun, parallel = false, false, 0
	})

	rootCmd.SetArgs([]string{"--config", cfgPath, "generate", "demo"})
	require.NoError(t, rootCmd.Execute())

	entries, err := os.ReadDir(filepath.Join(dir, "export", "demo"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".qdc"))

	data, err := os.ReadFile(filepath.Join(dir, "export", "demo", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="Fruit"`)
}

func TestGenerateCommandReportsFailures(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "import"), 0755))

	t.Cleanup(func() {
		allProjects, dryRun, parallel = false, false, 0
	})

	rootCmd.SetArgs([]string{"--config", cfgPath, "generate", "ghost"})
	assert.Error(t, rootCmd.Execute())
}
