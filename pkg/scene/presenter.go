package scene

// Presenter is the lifecycle contract a unit of visible content satisfies.
//
// Only the service invokes these callbacks, always in this order:
//
//	OnInitialized   exactly once, after the first load, before any open
//	OnOpened        on every transition to the open state
//	OnClosed        on every transition out of the open state
//
// Callbacks run without the service's registry lock held, so a presenter
// may call back into the service (for example, opening another presenter
// from OnOpened).
type Presenter interface {
	OnInitialized(inst *Instance)
	OnOpened(inst *Instance)
	OnClosed(inst *Instance)
}

// DataReceiver is implemented by presenters that accept a typed payload.
// A payload staged via [Service.OpenWith] becomes visible to the presenter
// exactly once, through ApplyData, immediately before the matching
// OnOpened. Callers must serialize their own open-with-data calls per
// instance; interleaving them has undefined payload ordering.
type DataReceiver interface {
	ApplyData(data any)
}

// BasePresenter provides no-op implementations of the Presenter callbacks.
// Embed it to implement only the callbacks you need.
type BasePresenter struct{}

// OnInitialized is a no-op by default.
func (BasePresenter) OnInitialized(*Instance) {}

// OnOpened is a no-op by default.
func (BasePresenter) OnOpened(*Instance) {}

// OnClosed is a no-op by default.
func (BasePresenter) OnClosed(*Instance) {}

// Hook observes one presenter instance's lifecycle to add cross-cutting
// behavior. Hooks are created from descriptor factories once per instance
// at load time, as a fixed snapshot that is never re-scanned.
//
// Per transition the service calls hooks and presenter in a fixed order:
//
//	open:  Opening → instance becomes active → presenter OnOpened → Opened
//	close: Closing → presenter OnClosed → Closed → actual deactivation
//
// Hooks are unordered relative to each other but strictly ordered relative
// to the presenter's own callbacks as shown. Hooks must not mutate service
// registries directly; they read instance state and mutate only their own
// private state.
type Hook interface {
	// Initialized fires once, after the presenter's OnInitialized.
	Initialized(inst *Instance)

	// Opening fires before the instance is activated.
	Opening(inst *Instance)

	// Opened fires after the presenter's OnOpened.
	Opened(inst *Instance)

	// Closing fires before the presenter's OnClosed.
	Closing(inst *Instance)

	// Closed fires after the presenter's OnClosed.
	Closed(inst *Instance)
}

// DeactivationDelayer is implemented by hooks that need to keep the visual
// active past the close transition (exit animations, linger timers).
//
// After a close completes, the service offers each implementing hook the
// chance to delay the actual deactivation. A hook that returns true takes
// ownership of calling release exactly once, later; the visual stays
// active until every delaying hook has released. Destroying the instance
// forces immediate deactivation regardless of pending delays, and a late
// release on a destroyed or reopened instance is a no-op.
type DeactivationDelayer interface {
	DelayDeactivation(inst *Instance, release func()) bool
}

// BaseHook provides no-op implementations of the Hook callbacks.
// Embed it to implement only the callbacks you need.
type BaseHook struct{}

// Initialized is a no-op by default.
func (BaseHook) Initialized(*Instance) {}

// Opening is a no-op by default.
func (BaseHook) Opening(*Instance) {}

// Opened is a no-op by default.
func (BaseHook) Opened(*Instance) {}

// Closing is a no-op by default.
func (BaseHook) Closing(*Instance) {}

// Closed is a no-op by default.
func (BaseHook) Closed(*Instance) {}
