package animation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickInterval is the step interval for clock-driven tickers.
// There is no frame loop in this library; tickers advance on a timer.
const DefaultTickInterval = 16 * time.Millisecond

// Ticker calls a callback at a fixed interval while active.
//
// Ticker is the low-level timing primitive used by [Controller].
// Most code should use Controller directly rather than Ticker.
//
// The callback receives the elapsed time since Start was called.
// It is invoked from the ticker's own goroutine; callers that share
// state with the callback must synchronize.
type Ticker struct {
	callback func(elapsed time.Duration)
	interval time.Duration

	mu     sync.Mutex
	clock  clockwork.Clock
	stop   chan struct{}
	active bool
	start  time.Time
}

// NewTicker creates a ticker with the given callback, driven by the
// package clock at DefaultTickInterval.
func NewTicker(callback func(elapsed time.Duration)) *Ticker {
	return &Ticker{
		callback: callback,
		interval: DefaultTickInterval,
	}
}

// Start activates the ticker. Starting an active ticker is a no-op.
func (t *Ticker) Start() {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return
	}
	t.active = true
	t.clock = ActiveClock()
	t.start = t.clock.Now()
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.run(stop)
}

func (t *Ticker) run(stop chan struct{}) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.Chan():
			t.mu.Lock()
			active := t.active
			start := t.start
			t.mu.Unlock()
			if !active {
				return
			}
			if t.callback != nil {
				t.callback(now.Sub(start))
			}
		}
	}
}

// Stop deactivates the ticker. Stopping an inactive ticker is a no-op.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.active = false
	close(t.stop)
}

// IsActive returns whether the ticker is currently running.
func (t *Ticker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Elapsed returns the time since the ticker started.
func (t *Ticker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return 0
	}
	return t.clock.Now().Sub(t.start)
}
