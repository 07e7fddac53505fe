package hooks

import (
	"sync"
	"time"

	"github.com/go-drift/scene/pkg/animation"
	"github.com/go-drift/scene/pkg/scene"
)

// Animated synchronizes a presenter's transitions with an animation
// controller: the controller runs forward on open and in reverse on close,
// and the visual stays active until the exit animation is fully dismissed.
//
// The controller's value is available through [Animated.Controller] for
// driving tweens (opacity, slide offsets) from presenter code.
type Animated struct {
	scene.BaseHook

	ctl *animation.Controller
}

// NewAnimated creates an animation-sync hook with the given transition
// duration and curve. A nil curve means linear.
func NewAnimated(d time.Duration, curve func(float64) float64) *Animated {
	ctl := animation.NewController(d)
	if curve != nil {
		ctl.Curve = curve
	}
	return &Animated{ctl: ctl}
}

// AnimatedFactory returns a hook factory producing one NewAnimated per
// instance.
func AnimatedFactory(d time.Duration, curve func(float64) float64) scene.HookFactory {
	return func() scene.Hook { return NewAnimated(d, curve) }
}

// Controller returns the controller driving this hook's transitions.
func (h *Animated) Controller() *animation.Controller { return h.ctl }

// Opening starts the entrance animation.
func (h *Animated) Opening(inst *scene.Instance) {
	h.ctl.Forward()
}

// Closing starts the exit animation.
func (h *Animated) Closing(inst *scene.Instance) {
	h.ctl.Reverse()
}

// DelayDeactivation keeps the visual active until the exit animation is
// dismissed, then releases exactly once.
func (h *Animated) DelayDeactivation(inst *scene.Instance, release func()) bool {
	if h.ctl.IsDismissed() {
		return false
	}

	done := releaseOnce(release)
	var remove func()
	var removeOnce sync.Once
	remove = h.ctl.AddStatusListener(func(s animation.Status) {
		if s != animation.StatusDismissed {
			return
		}
		done()
		removeOnce.Do(remove)
	})
	// The animation may have been dismissed between the check above and
	// the listener registration.
	if h.ctl.IsDismissed() {
		done()
		removeOnce.Do(remove)
	}
	return true
}

// releaseOnce wraps release so repeated status changes run it a single time.
func releaseOnce(release func()) func() {
	var o sync.Once
	return func() { o.Do(release) }
}

var _ scene.DeactivationDelayer = (*Animated)(nil)
