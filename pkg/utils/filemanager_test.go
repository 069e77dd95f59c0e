package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	return NewFileManager(
		filepath.Join(root, "config"),
		filepath.Join(root, "data"),
		filepath.Join(root, "log"),
		filepath.Join(root, "temp"),
	)
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestManager(t)
	require.NoError(t, fm.EnsureDirectories())

	for _, dir := range []string{fm.DataDir, fm.LogDir, fm.TempDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(fm.ConfigDir), "config directory is never created")
}

func TestEnsureDirectoriesUnavailable(t *testing.T) {
	fm := newTestManager(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	fm.DataDir = filepath.Join(blocker, "data")

	assert.ErrorIs(t, fm.EnsureDirectories(), ErrIOUnavailable)
}

func TestReadConfig(t *testing.T) {
	fm := newTestManager(t)
	require.NoError(t, os.MkdirAll(fm.ConfigDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fm.ConfigDir, "trust_deaths.csv"), []byte("Royal Free"), 0o644))

	content, err := fm.ReadConfig("trust_deaths.csv")
	require.NoError(t, err)
	assert.Equal(t, "Royal Free", string(content))

	_, err = fm.ReadConfig("pillar1_configuration.csv")
	assert.ErrorIs(t, err, ErrIOUnavailable)
}

func TestConfigPath(t *testing.T) {
	fm := newTestManager(t)
	assert.Equal(t, filepath.Join(fm.ConfigDir, "pillar1_configuration.csv"), fm.ConfigPath("pillar1_configuration.csv"))

	abs := filepath.Join(t.TempDir(), "custom.csv")
	assert.Equal(t, abs, fm.ConfigPath(abs))
}

func TestSaveTemp(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.SaveTemp("trust_deaths.xlsx", []byte("first"))
	require.NoError(t, err)
	path, err = fm.SaveTemp("trust_deaths.xlsx", []byte("second"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))
	assert.False(t, FileExists(path+".part"))
	assert.Equal(t, fm.DataPath("a.csv"), filepath.Join(fm.DataDir, "a.csv"))
}
