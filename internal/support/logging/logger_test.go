package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Environment: "test", Output: &buf})
	logger.Debug("hidden")
	logger.Info("hello", "order", "BH-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "bakehub", rec["service"])
	assert.Equal(t, "test", rec["env"])
	assert.Equal(t, "BH-1", rec["order"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Format: "text", Output: &buf}).Info("hi")
	assert.Contains(t, buf.String(), "msg=hi")
	assert.Contains(t, buf.String(), "service=bakehub")
}
