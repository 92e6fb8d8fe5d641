package events_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillsafe/quillsafe/internal/events"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.WarnLevel, "text", &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown warn")
	logger.Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	logger.WithFields(map[string]interface{}{
		"user_id": "alice",
		"count":   3,
	}).Info("saved vault")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "saved vault", entry["msg"])
	assert.Equal(t, "alice", entry["user_id"])
	assert.Equal(t, float64(3), entry["count"])
	assert.NotEmpty(t, entry["time"])
}

func TestLoggerWithField_Immutable(t *testing.T) {
	var buf bytes.Buffer
	base := events.NewTestLogger(events.DebugLevel, "json", &buf)

	child := base.WithField("component", "store")
	base.Info("from base")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "component")

	buf.Reset()
	child.Info("from child")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	logger.WithError(assert.AnError).Error("operation failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}

func TestLoggerEscapesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	logger.WithField("path", `C:\notes\"today"`).Info("line one\nline two")

	require.True(t, json.Valid(buf.Bytes()), "invalid JSON: %s", buf.String())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "entry must stay on one line")
}
