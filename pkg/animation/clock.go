package animation

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// The package-level clock drives all tickers. The default implementation
// uses system time. Tests inject clockwork.NewFakeClock() via SetClock to
// control transition timing deterministically.
var (
	clockMu sync.RWMutex
	clock   clockwork.Clock = clockwork.NewRealClock()
)

// SetClock replaces the animation clock. Returns the previous clock
// so callers can restore it during cleanup.
func SetClock(c clockwork.Clock) clockwork.Clock {
	clockMu.Lock()
	defer clockMu.Unlock()
	prev := clock
	clock = c
	return prev
}

// ActiveClock returns the clock currently driving animations.
func ActiveClock() clockwork.Clock {
	clockMu.RLock()
	defer clockMu.RUnlock()
	return clock
}
