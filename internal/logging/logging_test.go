package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "log.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0o644))

	var console bytes.Buffer
	sink, err := Setup(path, "info", &console)
	require.NoError(t, err)

	sink.Entry("pillar1").Info("Started")
	sink.Entry("pillar1").Warn("Attention flag set")
	sink.Entry("pillar1").Debug("hidden at info level")
	require.NoError(t, sink.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "earlier run\n"), "file is appended to")
	assert.Contains(t, text, "pillar1")
	assert.Contains(t, text, "Started")
	assert.Contains(t, text, "Attention flag set")
	assert.Contains(t, text, sink.RunID)
	assert.NotContains(t, text, "hidden at info level")
	assert.Equal(t, text[len("earlier run\n"):], console.String())
}

func TestSetupUnknownLevelSelectsDebug(t *testing.T) {
	sink, err := Setup("", "chatty", nil)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, sink.Logger.GetLevel())
}

func TestSetupUnavailableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "log")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	var console bytes.Buffer
	sink, err := Setup(filepath.Join(blocker, "log.txt"), "info", &console)
	assert.ErrorIs(t, err, ErrLogUnavailable)
	require.NotNil(t, sink)

	sink.Entry("trust_deaths").Info("still logged")
	assert.Contains(t, console.String(), "still logged")
	assert.NoError(t, sink.Close())
}
