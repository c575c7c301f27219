package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.log")

	log, closer, err := New(logrus.InfoLevel, path)
	require.NoError(t, err)
	log.WithField("booking_code", "BK-1").Info("booking created")
	log.Debug("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "booking created", entry["msg"])
	assert.Equal(t, "BK-1", entry["booking_code"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, _, err := New(logrus.InfoLevel, filepath.Join(blocker, "client.log"))

	assert.Error(t, err)
}
