// Package logger builds the leveled, timestamped logger used for the audit log
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// LogFileName is the audit log inside the config directory
const LogFileName = "vibematch.log"

// DefaultTimeFormat matches the timestamps operators grep for
const DefaultTimeFormat = "2006-01-02 15:04:05"

// New creates a logger. Without options it writes Info and above as text to stderr.
func New(opts ...Option) *log.Logger {
	c := &config{
		level:      log.InfoLevel,
		timeFormat: DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer = os.Stderr
	switch len(c.writers) {
	case 0:
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	formatter := log.TextFormatter
	if c.json {
		formatter = log.JSONFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           c.level,
		ReportTimestamp: true,
		TimeFormat:      c.timeFormat,
		Formatter:       formatter,
		Prefix:          c.prefix,
	})
}

// OpenFile opens (creating if needed) an append-only log file
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// Nop returns a logger that discards everything
func Nop() *log.Logger {
	l := log.New(io.Discard)
	l.SetLevel(log.FatalLevel + 1)
	return l
}
