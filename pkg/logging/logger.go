// Package logging wraps arbor.ILogger the way
// bobmcallan-vire/internal/common/logging.go does, giving the rest of
// the module a consistent, chainable logging surface.
package logging

import (
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger to provide a consistent interface across
// the pipeline.
type Logger struct {
	arbor.ILogger
}

// NewLogger creates a logger at the given level, writing to stderr.
func NewLogger(level string) *Logger {
	l := arbor.NewLogger().
		WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			Writer:     os.Stderr,
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		}).
		WithLevelFromString(level)

	return &Logger{ILogger: l}
}

// NewDefaultLogger creates a logger at info level.
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger discards all output. Used by tests so a run's
// diagnostics never reach stderr.
func NewSilentLogger() *Logger {
	l := arbor.NewLogger().WithLevelFromString("disabled")
	return &Logger{ILogger: l}
}

// WithCorrelationID returns a new Logger tagged with a run ID, so every
// line from one pipeline run can be traced together.
func (l *Logger) WithCorrelationID(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
