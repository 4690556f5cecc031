// Package logger configures the logger shared by the command-line tools.
package logger

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Options selects the logger's behavior.
type Options struct {
	// Level is the minimum level to log, e.g. "warn". Empty means warn, or
	// debug if Verbose is set.
	Level   string
	Verbose bool
	NoColor bool
}

// New creates a logger writing to w and makes it the default.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		TimeFormat:      time.RFC3339,
		Prefix:          "rubble",
	})
	level := log.WarnLevel
	switch {
	case opts.Level != "":
		lv, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = lv
	case opts.Verbose:
		level = log.DebugLevel
	}
	l.SetLevel(level)
	l.SetColorProfile(termenv.ANSI256)
	if opts.NoColor {
		l.SetColorProfile(termenv.Ascii)
	}
	log.SetDefault(l)
	return l, nil
}
