package watcher

import "time"

// Debouncer decides which change notifications trigger a reload. Only
// content changes (modified, or created by an atomic save) qualify, and a
// change within the window of the previously accepted one is discarded.
// It is driven from a single goroutine.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	lastAccepted time.Time
	accepted     bool
}

// NewDebouncer creates a Debouncer. A nil now uses time.Now.
func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if now == nil {
		now = time.Now
	}
	return &Debouncer{window: window, now: now}
}

// Accept reports whether ev should trigger a reload, recording the
// acceptance time when it does.
func (d *Debouncer) Accept(ev Event) bool {
	if ev.Kind != KindModified && ev.Kind != KindCreated {
		return false
	}

	now := d.now()
	if d.accepted && now.Sub(d.lastAccepted) < d.window {
		return false
	}
	d.lastAccepted = now
	d.accepted = true
	return true
}
