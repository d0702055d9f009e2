package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", false)
	t.Cleanup(func() { Init("info", false) })

	WithComponent("camera").Info().Str("device", "video0").Msg("opened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "camera", entry["component"])
	assert.Equal(t, "video0", entry["device"])
	assert.Equal(t, "opened", entry["message"])
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", false)
	t.Cleanup(func() { Init("info", false) })

	SetLevel("error")
	Get().Info().Msg("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	Get().Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
