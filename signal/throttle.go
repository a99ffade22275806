package signal

import "time"

// Throttle bounds fetch attempts to at most one per interval, measured from
// the last attempt regardless of its outcome. A persistently failing backend
// therefore sees one connection per interval, never a retry storm.
type Throttle struct {
	Interval time.Duration

	last time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval}
}

// Ready reports whether a new attempt is allowed at now. The first call is
// always ready.
func (t *Throttle) Ready(now time.Time) bool {
	return t.last.IsZero() || now.Sub(t.last) >= t.Interval
}

// Mark records an attempt at now. Call it before the fetch so failures count
// against the interval too.
func (t *Throttle) Mark(now time.Time) {
	t.last = now
}
