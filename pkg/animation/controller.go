// Package animation provides the timing primitives used by
// animation-synchronized presenter transitions.
//
// # Core Components
//
//   - [Controller]: drives a value from 0.0 to 1.0 over a duration with
//     configurable easing, reporting progress and status to listeners.
//   - [Tween]: maps the controller's 0-1 value to other ranges or types.
//   - Easing curves: [LinearCurve], [Ease], [EaseIn], [EaseOut], [EaseInOut],
//     and [CubicBezier] for custom curves.
//
// Controllers are clock-driven. The package clock defaults to system time;
// tests replace it with a fake clock via [SetClock].
//
// # Basic Usage
//
//	ctl := animation.NewController(300 * time.Millisecond)
//	ctl.Curve = animation.EaseInOut
//	remove := ctl.AddStatusListener(func(s animation.Status) {
//	    if s == animation.StatusCompleted {
//	        // entrance finished
//	    }
//	})
//	defer remove()
//	ctl.Forward()
package animation

import (
	"fmt"
	"sync"
	"time"
)

// Status represents the current state of an animation.
//
// The status follows this state machine:
//
//	                Forward()
//	Dismissed ──────────────────► Completed
//	    ▲                              │
//	    │         Reverse()            │
//	    └──────────────────────────────┘
//
// While animating, status is StatusForward or StatusReverse. When stopped,
// status is StatusDismissed (at 0) or StatusCompleted (at 1).
type Status int

const (
	// StatusDismissed means the animation is stopped at the lower bound (0.0).
	StatusDismissed Status = iota
	// StatusForward means the animation is playing toward the upper bound (1.0).
	StatusForward
	// StatusReverse means the animation is playing toward the lower bound (0.0).
	StatusReverse
	// StatusCompleted means the animation is stopped at the upper bound (1.0).
	StatusCompleted
)

// String returns a human-readable representation of the animation status.
func (s Status) String() string {
	switch s {
	case StatusDismissed:
		return "dismissed"
	case StatusForward:
		return "forward"
	case StatusReverse:
		return "reverse"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Controller drives an animation by producing values over time.
//
// The controller manages a value that progresses from 0.0 to 1.0 over the
// specified Duration. The Curve function transforms linear progress into
// eased motion. Use [Tween] to map the 0-1 value to other ranges or types.
//
// Ticks arrive on the ticker goroutine, so the controller synchronizes its
// state internally; listeners are invoked without the internal lock held
// and may call back into the controller.
//
// Always call Dispose when done to stop the animation and release resources.
type Controller struct {
	// Duration is the length of the animation.
	Duration time.Duration

	// Curve transforms linear progress (optional).
	Curve func(float64) float64

	mu              sync.Mutex
	value           float64
	status          Status
	ticker          *Ticker
	target          float64
	startValue      float64
	listeners       map[int]func(float64)
	statusListeners map[int]func(Status)
	nextListenerID  int
}

// NewController creates an animation controller with the given duration.
func NewController(duration time.Duration) *Controller {
	return &Controller{
		Duration:        duration,
		Curve:           LinearCurve,
		status:          StatusDismissed,
		listeners:       make(map[int]func(float64)),
		statusListeners: make(map[int]func(Status)),
	}
}

// Value returns the current animation value in [0, 1].
func (c *Controller) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Forward animates from the current value to the upper bound (1.0).
func (c *Controller) Forward() {
	c.animateTo(1, StatusForward)
}

// Reverse animates from the current value to the lower bound (0.0).
func (c *Controller) Reverse() {
	c.animateTo(0, StatusReverse)
}

func (c *Controller) animateTo(target float64, direction Status) {
	c.mu.Lock()
	if c.ticker != nil {
		c.ticker.Stop()
	}
	c.target = target
	c.startValue = c.value
	ticker := NewTicker(c.tick)
	c.ticker = ticker
	c.mu.Unlock()

	c.setStatus(direction)
	ticker.Start()
}

func (c *Controller) tick(elapsed time.Duration) {
	c.mu.Lock()
	if c.Duration <= 0 {
		c.value = c.target
		c.mu.Unlock()
		c.finish()
		return
	}

	progress := float64(elapsed) / float64(c.Duration)
	if progress >= 1.0 {
		progress = 1.0
	}

	eased := progress
	if c.Curve != nil {
		eased = c.Curve(progress)
	}
	c.value = c.startValue + (c.target-c.startValue)*eased
	value := c.value
	c.mu.Unlock()

	c.notifyListeners(value)
	if progress >= 1.0 {
		c.finish()
	}
}

// finish stops the ticker and settles the status at a bound.
func (c *Controller) finish() {
	c.mu.Lock()
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	value := c.value
	c.mu.Unlock()

	if value <= 0 {
		c.setStatus(StatusDismissed)
	} else if value >= 1 {
		c.setStatus(StatusCompleted)
	}
}

// Reset immediately sets the value to the lower bound.
func (c *Controller) Reset() {
	c.Stop()
	c.mu.Lock()
	c.value = 0
	c.mu.Unlock()
	c.setStatus(StatusDismissed)
	c.notifyListeners(0)
}

// Stop stops the animation at the current value.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// Status returns the current animation status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsAnimating returns true if the animation is currently running.
func (c *Controller) IsAnimating() bool {
	s := c.Status()
	return s == StatusForward || s == StatusReverse
}

// IsCompleted returns true if the animation finished at the upper bound.
func (c *Controller) IsCompleted() bool {
	return c.Status() == StatusCompleted
}

// IsDismissed returns true if the animation is at the lower bound.
func (c *Controller) IsDismissed() bool {
	return c.Status() == StatusDismissed
}

// AddListener adds a callback that fires with the value on every tick.
// Returns an unsubscribe function.
func (c *Controller) AddListener(fn func(value float64)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// AddStatusListener adds a callback that fires whenever the status changes.
// Returns an unsubscribe function.
func (c *Controller) AddStatusListener(fn func(Status)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.statusListeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.statusListeners, id)
	}
}

func (c *Controller) setStatus(status Status) {
	c.mu.Lock()
	if c.status == status {
		c.mu.Unlock()
		return
	}
	c.status = status
	fns := make([]func(Status), 0, len(c.statusListeners))
	for _, fn := range c.statusListeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(status)
	}
}

func (c *Controller) notifyListeners(value float64) {
	c.mu.Lock()
	fns := make([]func(float64), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(value)
	}
}

// Dispose cleans up resources used by the controller.
func (c *Controller) Dispose() {
	c.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = nil
	c.statusListeners = nil
}
