package scene

import "fmt"

// LoadMode selects how the asset provider should materialize a
// presenter's resource.
type LoadMode int

const (
	// LoadAsync lets the provider stream the resource in; this is the default.
	LoadAsync LoadMode = iota
	// LoadSync asks the provider to fully materialize the resource before
	// returning.
	LoadSync
)

func (m LoadMode) String() string {
	if m == LoadSync {
		return "sync"
	}
	return "async"
}

// PresenterFactory creates the presenter entity for a new instance.
// Factories run while the service holds its registry lock and must not
// call back into the service.
type PresenterFactory func() Presenter

// HookFactory creates one hook for a new instance. Hooks are stateful per
// instance, so descriptors carry factories rather than shared hook values.
// Like PresenterFactory, factories must not call back into the service.
type HookFactory func() Hook

// Descriptor is the static configuration for one presenter type.
// Descriptors are registered once via [Service.Init] and are immutable
// afterward.
type Descriptor struct {
	// Type is the presenter type identity. Must be unique and non-empty.
	Type string

	// Locator names the underlying visual resource for the asset provider.
	Locator string

	// Layer is the paint-order bucket this presenter renders in.
	Layer int

	// Mode selects sync or async resource materialization.
	Mode LoadMode

	// New creates the presenter entity. Required.
	New PresenterFactory

	// Hooks create the cross-cutting behavior hooks attached to each
	// instance. The snapshot is built once at load time.
	Hooks []HookFactory
}

// Set is a named, ordered group of presenter types that can be loaded,
// opened, closed, and unloaded together.
type Set struct {
	// ID is the set identity. Must be unique and non-empty.
	ID string

	// Members lists the presenter types in the set, in declaration order.
	Members []string
}

// Ref addresses one presenter instance: a type plus an optional instance
// address for multi-instance presenters. The zero Address refers to the
// type's default instance.
type Ref struct {
	Type    string
	Address string
}

// ByType returns a Ref for the default instance of a presenter type.
func ByType(presenterType string) Ref {
	return Ref{Type: presenterType}
}

// At returns a Ref for a specific instance address of a presenter type.
func At(presenterType, address string) Ref {
	return Ref{Type: presenterType, Address: address}
}

func (r Ref) String() string {
	if r.Address == "" {
		return r.Type
	}
	return fmt.Sprintf("%s@%s", r.Type, r.Address)
}
