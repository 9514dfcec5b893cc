package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/tvlabel/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, model.LogConfig{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("labeled", "sentences", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "labeled", rec["msg"])
	assert.Equal(t, 3.0, rec["sentences"])
}

func TestNewWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, model.LogConfig{Level: "warn", Format: "text"})

	logger.Info("hidden")
	logger.Warn("detectors contradict each other", "lexical", "formal")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "lexical=formal")
}
