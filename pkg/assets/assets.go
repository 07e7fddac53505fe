// Package assets defines the contracts between the presenter service and
// the mechanism that physically instantiates and releases visual resources.
//
// The service never creates or frees a visual itself: it asks a [Provider]
// to instantiate a resource into a parent [Container] and to release it
// again when the owning presenter is unloaded. Two providers ship with the
// package: [MemoryProvider] for tests and headless use, and [ImageProvider]
// which decodes image assets from a file system.
package assets

import "context"

// Visual is the underlying renderable resource backing one presenter
// instance. The service toggles visibility on open/close; everything else
// about the resource is the provider's business.
type Visual interface {
	// ID uniquely identifies this visual for the provider that created it.
	ID() string

	// SetVisible toggles whether the visual participates in painting.
	SetVisible(visible bool)

	// Visible reports the current visibility flag.
	Visible() bool
}

// Reparentable is implemented by visuals that can move to a different
// container after instantiation. The visual must detach from its current
// container, attach to the new one, and release from the new one when the
// provider frees it.
type Reparentable interface {
	Reparent(to Container)
}

// Container is a paint-order bucket holding visuals. Each layer owns one
// container; attach order is paint order within the layer.
type Container interface {
	// Attach appends the visual to the container's paint order.
	// Attaching an already-attached visual is a no-op.
	Attach(v Visual)

	// Detach removes the visual. Detaching an absent visual is a no-op.
	Detach(v Visual)

	// Visuals returns the attached visuals in paint order.
	Visuals() []Visual

	// Release drops all attached visuals and renders the container unusable.
	Release()
}

// ContainerSource creates layer containers on demand.
type ContainerSource interface {
	// Layer returns a new container for the given layer number.
	Layer(layer int) Container
}

// Provider instantiates and releases visuals.
//
// Instantiate is a suspension point: the service drops its registry lock
// while the call runs, so implementations may block (I/O, decode, main
// thread hops). A canceled ctx must abort with ctx.Err(); if the resource
// was already materialized when cancellation is observed, the provider
// must free it before returning.
type Provider interface {
	// Instantiate creates the visual named by locator inside parent.
	// syncHint signals that the caller wants the resource materialized
	// before return rather than streamed in; providers may ignore it.
	Instantiate(ctx context.Context, locator string, parent Container, syncHint bool) (Visual, error)

	// Release frees a visual previously returned by Instantiate and
	// detaches it from its container.
	Release(v Visual) error
}
