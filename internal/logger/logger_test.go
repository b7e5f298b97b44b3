package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, int(slog.LevelInfo))

	lg.Debug("Auth service: hidden")
	lg.Info("Auth service: user registered", "user_id", "42")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="Auth service: user registered"`)
	assert.Contains(t, out, "user_id=42")
}
