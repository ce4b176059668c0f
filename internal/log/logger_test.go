package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevelFiltersConsole(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))
	Info("hidden")
	Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=1")

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, slog.LevelDebug, Level())
	Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")

	assert.Error(t, SetLevel("loud"))
}

func TestFileOutputFansOut(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel("info")
	})
	require.NoError(t, SetLevel("error"))

	path := filepath.Join(t.TempDir(), "codonvm.log")
	require.NoError(t, SetFileOutput(path))
	assert.Equal(t, path, FileName())

	Debug("to file only", "ip", 3)
	Error("everywhere")
	Close()
	assert.Empty(t, FileName())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file only")
	assert.Contains(t, string(data), "everywhere")
	assert.NotContains(t, buf.String(), "to file only")
	assert.Contains(t, buf.String(), "everywhere")
}

func TestSetFileOutputBadPath(t *testing.T) {
	err := SetFileOutput(filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	assert.Error(t, err)
}
