package hooks

import (
	"github.com/go-drift/scene/pkg/assets"
	"github.com/go-drift/scene/pkg/scene"
)

// Reparent binds a presenter's visual to an alternate container instead of
// its layer container. The binding happens once, at instance
// initialization, and lasts for the instance's lifetime; the provider's
// release detaches the visual from the alternate container.
//
// Visuals that do not implement [assets.Reparentable] are left where the
// provider put them.
type Reparent struct {
	scene.BaseHook

	// Target is the container the visual moves into.
	Target assets.Container
}

// NewReparent creates a reparent hook targeting the given container.
func NewReparent(target assets.Container) *Reparent {
	return &Reparent{Target: target}
}

// ReparentFactory returns a hook factory producing one NewReparent per
// instance. All instances share the same target container.
func ReparentFactory(target assets.Container) scene.HookFactory {
	return func() scene.Hook { return NewReparent(target) }
}

// Initialized moves the visual into the target container.
func (h *Reparent) Initialized(inst *scene.Instance) {
	if h.Target == nil {
		return
	}
	if v, ok := inst.Visual().(assets.Reparentable); ok {
		v.Reparent(h.Target)
	}
}
