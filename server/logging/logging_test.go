package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		"WARN":   zerolog.WarnLevel,
		" error": zerolog.ErrorLevel,
		"trace":  zerolog.TraceLevel,
		"":       zerolog.InfoLevel,
		"loud":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info", false)

	log.Debug().Msg("hidden")
	log.Info().Str("room", "r1").Msg("started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["message"])
	assert.Equal(t, "r1", line["room"])
	assert.Contains(t, line, "time")
}

func TestNewWriterPretty(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug", true)
	log.Debug().Msg("tick")
	assert.Contains(t, buf.String(), "tick")
	assert.NotContains(t, buf.String(), "{")
}
