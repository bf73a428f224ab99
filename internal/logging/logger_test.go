package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "verbose"})
	require.Error(t, err)
}

func TestNewJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "log.json")

	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "info", line["level"])
}

func TestNewDefault(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, NewDefault())
}
