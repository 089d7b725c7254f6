package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONCarriesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, "debug", "json", "Aligner").With("ticker", "AMZN")

	l.Info("processed %d windows", 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Aligner", entry["component"])
	assert.Equal(t, "AMZN", entry["ticker"])
	assert.Equal(t, "processed 4 windows", entry["message"])
}

func TestLogger_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&buf, "WARNING", "json", "test")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warning("shown")
	assert.Contains(t, buf.String(), "shown")
}
