package scene

import (
	"fmt"
	"sync"

	"github.com/go-drift/scene/pkg/assets"
)

// State is a presenter instance's lifecycle state.
type State int

const (
	// StateUnloaded is the terminal state after unload.
	StateUnloaded State = iota
	// StateLoading means the asset provider is instantiating the resource.
	StateLoading
	// StateLoaded means the instance exists but has never been opened.
	StateLoaded
	// StateOpen means the instance is visible.
	StateOpen
	// StateClosed means the instance was open and is loaded but not visible.
	StateClosed
	// StateUnloading means the asset provider is releasing the resource.
	StateUnloading
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateUnloading:
		return "unloading"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Instance is the runtime entity for one loaded presenter. There is exactly
// one instance per (type, address) pair. Instances are created by
// [Service.Load] and destroyed by [Service.Unload] or [Service.Dispose],
// never implicitly by open or close.
type Instance struct {
	desc      Descriptor
	ref       Ref
	presenter Presenter
	hooks     []Hook
	layer     *Layer

	mu            sync.Mutex
	state         State
	visual        assets.Visual
	pendingData   any
	hasData       bool
	pendingDelays int
	transitioning bool
}

// Ref returns the (type, address) key addressing this instance.
func (i *Instance) Ref() Ref { return i.ref }

// Descriptor returns the static configuration this instance was built from.
func (i *Instance) Descriptor() Descriptor { return i.desc }

// Presenter returns the presenter entity.
func (i *Instance) Presenter() Presenter { return i.presenter }

// Layer returns the layer this instance renders in.
func (i *Instance) Layer() *Layer { return i.layer }

// Visual returns the underlying visual resource, or nil after unload.
func (i *Instance) Visual() assets.Visual {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visual
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// IsVisible reports whether the instance is open. Visibility is derived
// from state, never stored separately.
func (i *Instance) IsVisible() bool {
	return i.State() == StateOpen
}

// setState transitions the lifecycle state.
func (i *Instance) setState(s State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.state = s
}

// stageData stores a payload for the next open transition.
func (i *Instance) stageData(data any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pendingData = data
	i.hasData = true
}

// takeData removes and returns the staged payload, if any.
func (i *Instance) takeData() (any, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasData {
		return nil, false
	}
	data := i.pendingData
	i.pendingData = nil
	i.hasData = false
	return data, true
}

// takeVisual detaches the visual from the instance for release.
func (i *Instance) takeVisual() assets.Visual {
	i.mu.Lock()
	defer i.mu.Unlock()
	v := i.visual
	i.visual = nil
	return v
}

// beginTransition engages the per-instance open/close guard. Returns false
// if another transition is already in flight.
func (i *Instance) beginTransition(target State) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.transitioning {
		return false
	}
	i.transitioning = true
	i.state = target
	return true
}

// endTransition releases the per-instance guard.
func (i *Instance) endTransition() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.transitioning = false
}

// addDelays records n pending deactivation delays.
func (i *Instance) addDelays(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pendingDelays += n
}

// releaseDelay consumes one pending delay. It returns true when this was
// the last pending delay and the instance is still closed, meaning the
// caller should deactivate the visual now.
func (i *Instance) releaseDelay() (deactivate bool, v assets.Visual) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pendingDelays > 0 {
		i.pendingDelays--
	}
	if i.pendingDelays == 0 && i.state == StateClosed {
		return true, i.visual
	}
	return false, nil
}

// clearDelays drops all pending delays (used when destruction forces
// immediate deactivation).
func (i *Instance) clearDelays() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pendingDelays = 0
}
