package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultLevelSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf})

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Verbose: true})

	log.Debug("pipeline detail")
	require.NoError(t, log.Sync())

	assert.Contains(t, buf.String(), "pipeline detail")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Format: "json", Level: "info"})

	log.Info("search completed")
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search completed", line["msg"])
	assert.Equal(t, "unisearch", line["service"])
	assert.Equal(t, "info", line["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("nonsense"))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
