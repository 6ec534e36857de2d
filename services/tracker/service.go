package tracker

import (
	"log/slog"
	"time"
)

func componentLogger(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

// clock is embedded by services that stamp times; tests replace now.
type clock struct {
	now func() time.Time
}

func (c *clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}

// SetClock overrides the time source.
func (c *clock) SetClock(now func() time.Time) { c.now = now }
