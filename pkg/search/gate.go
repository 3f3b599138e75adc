package search

import (
	"sync"
	"time"
)

// Clock is the time source of a Gate.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Gate keeps the loading indicator up for a minimum time after the query
// text changes, so a fast answer does not flash on screen.
type Gate struct {
	mu      sync.Mutex
	clock   Clock
	min     time.Duration
	text    string
	started time.Time
	armed   bool
}

// NewGate creates a gate holding loading for at least min.
func NewGate(min time.Duration, clock Clock) *Gate {
	if clock == nil {
		clock = SystemClock
	}
	return &Gate{clock: clock, min: min}
}

// Observe records the current query text. The timer restarts only when the
// text differs from the last observed one; it reports whether it did.
func (g *Gate) Observe(text string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.armed && g.text == text {
		return false
	}
	g.text = text
	g.started = g.clock.Now()
	g.armed = true
	return true
}

// Active reports whether the minimum display time is still running.
func (g *Gate) Active() bool {
	return g.Remaining() > 0
}

// Remaining returns how long the gate still forces loading.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.armed {
		return 0
	}
	left := g.started.Add(g.min).Sub(g.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Deadline returns when the forced loading ends, or the zero time before
// any text was observed.
func (g *Gate) Deadline() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return time.Time{}
	}
	return g.started.Add(g.min)
}

// Displayed combines the real loading flag with the gate.
func (g *Gate) Displayed(loading bool) bool {
	return loading || g.Active()
}
