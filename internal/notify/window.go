package notify

import (
	"sync"
	"time"
)

// Window enforces a sliding-window delivery limit: at most max deliveries
// inside any span of length. State is in-memory only; a restart resets it
// to empty, and trimming recomputes from actual elapsed time so a reset
// can never overrun the external service's hard limit.
type Window struct {
	mu         sync.Mutex
	max        int
	length     time.Duration
	now        func() time.Time
	deliveries []time.Time
}

// NewWindow creates a window allowing max deliveries per length
func NewWindow(max int, length time.Duration) *Window {
	return &Window{
		max:    max,
		length: length,
		now:    time.Now,
	}
}

// SetClock overrides the clock (useful for testing)
func (w *Window) SetClock(now func() time.Time) {
	w.now = now
}

// trim drops deliveries that aged out of the window. Callers hold w.mu.
func (w *Window) trim(now time.Time) {
	cutoff := now.Add(-w.length)
	i := 0
	for i < len(w.deliveries) && !w.deliveries[i].After(cutoff) {
		i++
	}
	w.deliveries = w.deliveries[i:]
}

// WaitTime returns how long a caller must wait before the window has
// capacity; zero means a delivery may proceed now.
func (w *Window) WaitTime() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.trim(now)

	if len(w.deliveries) < w.max {
		return 0
	}
	// Sleep until the oldest counted delivery ages out.
	return w.deliveries[0].Add(w.length).Sub(now)
}

// Count records a completed delivery. Only confirmed deliveries consume
// window budget; failed attempts never do.
func (w *Window) Count() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.trim(now)
	w.deliveries = append(w.deliveries, now)
}

// InFlight returns the number of deliveries currently inside the window
func (w *Window) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.trim(w.now())
	return len(w.deliveries)
}
