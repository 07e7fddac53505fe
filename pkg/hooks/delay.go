// Package hooks provides ready-made cross-cutting presenter behaviors.
//
// Each hook attaches to exactly one presenter instance via a descriptor
// hook factory and observes its lifecycle. The hooks here replace what a
// subclass hierarchy would otherwise do: [Delay] defers transition
// completion behind a timer, [Animated] synchronizes transitions with an
// animation controller and holds the visual active through the exit
// animation, and [Reparent] binds the visual to an alternate container
// instead of its layer.
package hooks

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/scene/pkg/scene"
)

// Delay defers a transition's completion behind a timer.
//
// The transition itself is accepted immediately: the instance reports
// visible (or hidden) right away. The completion callbacks, and for close
// the actual deactivation of the visual, fire only once the delay
// elapses. If the instance is destroyed while a delay is pending, the
// pending callback detects the terminal state and skips any further
// mutation.
type Delay struct {
	scene.BaseHook

	// Duration is how long completion is deferred. Zero disables the
	// delay entirely.
	Duration time.Duration

	// Clock drives the timer. Tests inject a fake clock.
	Clock clockwork.Clock

	// OnOpenComplete fires once the open delay elapses.
	OnOpenComplete func(inst *scene.Instance)

	// OnCloseComplete fires once the close delay elapses, after the
	// visual was deactivated.
	OnCloseComplete func(inst *scene.Instance)
}

// NewDelay creates a delay hook with the given duration and the system clock.
func NewDelay(d time.Duration) *Delay {
	return &Delay{Duration: d, Clock: clockwork.NewRealClock()}
}

// DelayFactory returns a hook factory producing one NewDelay per instance.
func DelayFactory(d time.Duration) scene.HookFactory {
	return func() scene.Hook { return NewDelay(d) }
}

func (h *Delay) clock() clockwork.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return clockwork.NewRealClock()
}

// destroyed reports whether the instance reached a terminal state while a
// delay was pending.
func destroyed(inst *scene.Instance) bool {
	switch inst.State() {
	case scene.StateUnloading, scene.StateUnloaded:
		return true
	}
	return false
}

// Opened starts the open-completion timer.
func (h *Delay) Opened(inst *scene.Instance) {
	if h.Duration <= 0 {
		if h.OnOpenComplete != nil {
			h.OnOpenComplete(inst)
		}
		return
	}
	h.clock().AfterFunc(h.Duration, func() {
		if destroyed(inst) {
			return
		}
		if h.OnOpenComplete != nil {
			h.OnOpenComplete(inst)
		}
	})
}

// DelayDeactivation holds the visual active until the close delay elapses.
func (h *Delay) DelayDeactivation(inst *scene.Instance, release func()) bool {
	if h.Duration <= 0 {
		return false
	}
	h.clock().AfterFunc(h.Duration, func() {
		release()
		if destroyed(inst) {
			return
		}
		if h.OnCloseComplete != nil {
			h.OnCloseComplete(inst)
		}
	})
	return true
}

// ensure the optional interface is satisfied.
var _ scene.DeactivationDelayer = (*Delay)(nil)
