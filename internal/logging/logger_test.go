package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ReturnsLogger(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		logger := NewLogger(env, "")
		require.NotNil(t, logger, "env %q", env)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		env  string
		want slog.Level
	}{
		{"debug", "production", slog.LevelDebug},
		{"info", "development", slog.LevelInfo},
		{"WARN", "production", slog.LevelWarn},
		{"error", "development", slog.LevelError},
		{"", "production", slog.LevelInfo},
		{"", "development", slog.LevelDebug},
		{"bogus", "production", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseLevel(tc.in, tc.env), "level %q env %q", tc.in, tc.env)
	}
}
