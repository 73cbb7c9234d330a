package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("CreateBooking: provider=%d", 1)
	log.Warn("CreateBooking: slot taken, provider=%d", 2)
	log.Error("CreateBooking: failed, err=%v", "boom")

	out := buf.String()
	assert.NotContains(t, out, "provider=1")
	assert.Contains(t, out, "provider=2")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "err=boom")
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	log, err := New(path, "info")
	require.NoError(t, err)
	log.Info("Starting %s", "scheduling")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Starting scheduling")
}
