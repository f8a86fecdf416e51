package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

type config struct {
	level      log.Level
	json       bool
	writers    []io.Writer
	timeFormat string
	prefix     string
}

// Option configures a Logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = log.DebugLevel
		} else {
			c.level = log.InfoLevel
		}
	}
}

// WithJSON switches to one JSON object per line.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writers = []io.Writer{w}
	}
}

// WithWriters sets multiple output writers (combined via io.MultiWriter).
func WithWriters(w ...io.Writer) Option {
	return func(c *config) {
		c.writers = w
	}
}

// WithTimeFormat overrides DefaultTimeFormat.
func WithTimeFormat(layout string) Option {
	return func(c *config) {
		if layout != "" {
			c.timeFormat = layout
		}
	}
}

// WithPrefix tags every line, e.g. with the component name.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}
