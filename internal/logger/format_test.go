package logger

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPlainTerminalOutputHasNoEscapes(t *testing.T) {
	saved := color.NoColor
	t.Cleanup(func() { color.NoColor = saved })
	color.NoColor = false

	entry := LogEntry{Timestamp: "2026-01-02T15:04:05.000Z", Level: "WARN", Category: "API", Message: "slow", File: "x.go", Line: 3}

	plain := (&Logger{plain: true}).formatTerminalOutput(entry)
	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, plain, "WARN  [API       ] slow (x.go:3)")

	colored := (&Logger{}).formatTerminalOutput(entry)
	assert.Contains(t, colored, "\x1b[")
}
