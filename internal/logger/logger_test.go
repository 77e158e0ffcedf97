package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(false, &buf)
	l.Debug("hidden")
	l.Info("shown", "run_id", "abc")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown run_id=abc")

	buf.Reset()
	New(true, &buf).Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG msg=visible")
}

func TestInit_WritesLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "krnews.log")
	Init(false, path)
	slog.Info("to file", "n", 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=\"to file\" n=1")
}
