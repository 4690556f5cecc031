package internal

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gitlab.com/variadico/lctime"
)

// DefaultDebugTimeFormat is the strftime format LoadLogger uses when its
// TimeFormat is empty.
const DefaultDebugTimeFormat = "%H:%M:%S"

// LoadLogger is a DebugManager which logs the start and finish of each
// source unit's translation.
type LoadLogger struct {
	// Log receives the notifications at Info level.
	Log *log.Logger
	// TimeFormat is a strftime format for the timestamps.
	TimeFormat string
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	mu      sync.Mutex
	started map[string][]time.Time
}

// NotifyStartLoading logs that translation of the named unit has started.
func (l *LoadLogger) NotifyStartLoading(name string) {
	now := l.now()
	l.mu.Lock()
	if l.started == nil {
		l.started = make(map[string][]time.Time)
	}
	l.started[name] = append(l.started[name], now)
	l.mu.Unlock()
	l.Log.Info("loading", "unit", name, "at", l.format(now))
}

// NotifyFinishedLoading logs that translation of the named unit has
// finished, along with how long it took.
func (l *LoadLogger) NotifyFinishedLoading(name string) {
	now := l.now()
	var elapsed time.Duration
	l.mu.Lock()
	// Units of the same name may nest, e.g. module_eval within a file.
	if s := l.started[name]; len(s) > 0 {
		elapsed = now.Sub(s[len(s)-1])
		if len(s) == 1 {
			delete(l.started, name)
		} else {
			l.started[name] = s[:len(s)-1]
		}
	}
	l.mu.Unlock()
	l.Log.Info("loaded", "unit", name, "at", l.format(now), "elapsed", elapsed)
}

func (l *LoadLogger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *LoadLogger) format(t time.Time) string {
	f := l.TimeFormat
	if f == "" {
		f = DefaultDebugTimeFormat
	}
	return lctime.Strftime(f, t)
}
