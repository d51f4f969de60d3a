package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWrap_AdoptsCallerLogger verifies that Wrap writes through the
// zerolog.Logger it was given, fields included.
func TestWrap_AdoptsCallerLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).With().Str("app", "mine").Logger()

	l := Wrap(zl)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mine", entry["app"])
	assert.Equal(t, "hello", entry["message"])
}

// TestNop_DiscardsOutput verifies that a Nop logger produces no output.
func TestNop_DiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	l := Nop()
	l.Logger = l.Output(&buf)

	l.Info().Msg("should be discarded")

	assert.Empty(t, buf.String(), "Nop logger should produce no output")
}

// TestNewLogger_ComponentField verifies that every entry produced by a
// logger from NewLogger carries the component label.
func TestNewLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("pgdb2")
	l.Logger = l.Output(&buf)

	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pgdb2", entry["component"])
}

// TestNewLogger_ContainsTimestamp verifies that entries carry a time field.
func TestNewLogger_ContainsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("ts")
	l.Logger = l.Output(&buf)

	l.Info().Msg("ts check")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasTime := entry["time"]
	assert.True(t, hasTime, "expected 'time' field in log entry")
}

// TestNewLogger_CallerFieldName verifies that the caller field is named "func".
func TestNewLogger_CallerFieldName(t *testing.T) {
	NewLogger("caller") // adjusts zerolog.CallerFieldName as a side effect
	assert.Equal(t, "func", zerolog.CallerFieldName)
}

// TestConsole_VerboseLowersLevel verifies that only the verbose console
// logger lets debug entries through.
func TestConsole_VerboseLowersLevel(t *testing.T) {
	quiet := Console("cli", false)
	verbose := Console("cli", true)

	assert.Equal(t, zerolog.InfoLevel, quiet.GetLevel())
	assert.Equal(t, zerolog.DebugLevel, verbose.GetLevel())
}

// TestWithComponent_InheritsFields verifies that a child logger keeps the
// parent's fields and adds its own component.
func TestWithComponent_InheritsFields(t *testing.T) {
	var buf bytes.Buffer
	parent := Wrap(zerolog.New(&buf).With().Str("app", "mine").Logger())

	child := parent.WithComponent("cursor")
	require.NotSame(t, parent, child)

	child.Info().Msg("child message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "mine", entry["app"])
	assert.Equal(t, "cursor", entry["component"])
}
