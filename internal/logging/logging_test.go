package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("debug", FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug().Int("item", 2).Str("field", "voice_path").Msg("missing")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "missing", entry["message"])
	assert.Equal(t, float64(2), entry["item"])
}

func TestSetupDefaultsToJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("", "", &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestSetupConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup("info", FormatConsole, &buf)
	require.NoError(t, err)

	logger.Info().Str("path", "/w/output.mp4").Msg("rendered")
	assert.Contains(t, buf.String(), "rendered")
	assert.Contains(t, buf.String(), "path=/w/output.mp4")
}

func TestSetupRejectsBadValues(t *testing.T) {
	_, err := Setup("loud", FormatJSON, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = Setup("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}
