package assets

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryContainer is an in-memory Container keeping visuals in attach order.
// It is safe for concurrent use.
type MemoryContainer struct {
	mu       sync.Mutex
	layer    int
	visuals  []Visual
	released bool
}

// NewMemoryContainer creates a container for the given layer number.
func NewMemoryContainer(layer int) *MemoryContainer {
	return &MemoryContainer{layer: layer}
}

// LayerNumber returns the layer this container was created for.
func (c *MemoryContainer) LayerNumber() int { return c.layer }

// Attach appends the visual unless it is already attached.
func (c *MemoryContainer) Attach(v Visual) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return
	}
	for _, existing := range c.visuals {
		if existing == v {
			return
		}
	}
	c.visuals = append(c.visuals, v)
}

// Detach removes the visual if present.
func (c *MemoryContainer) Detach(v Visual) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.visuals {
		if existing == v {
			c.visuals = append(c.visuals[:i], c.visuals[i+1:]...)
			return
		}
	}
}

// Visuals returns the attached visuals in paint order.
func (c *MemoryContainer) Visuals() []Visual {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Visual, len(c.visuals))
	copy(out, c.visuals)
	return out
}

// Release drops all visuals. Further attaches are ignored.
func (c *MemoryContainer) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visuals = nil
	c.released = true
}

// MemoryContainers is a ContainerSource producing MemoryContainers.
type MemoryContainers struct{}

// Layer returns a new in-memory container for the given layer.
func (MemoryContainers) Layer(layer int) Container {
	return NewMemoryContainer(layer)
}

// MemoryVisual is the visual type produced by MemoryProvider.
type MemoryVisual struct {
	id      string
	locator string

	mu       sync.Mutex
	visible  bool
	released bool
	parent   Container
}

// ID returns the visual's unique identity.
func (v *MemoryVisual) ID() string { return v.id }

// Locator returns the locator this visual was instantiated from.
func (v *MemoryVisual) Locator() string { return v.locator }

// SetVisible toggles the visibility flag.
func (v *MemoryVisual) SetVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = visible
}

// Visible reports the visibility flag.
func (v *MemoryVisual) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Reparent moves the visual to a different container.
func (v *MemoryVisual) Reparent(to Container) {
	v.mu.Lock()
	from := v.parent
	v.parent = to
	v.mu.Unlock()

	if from != nil {
		from.Detach(v)
	}
	if to != nil {
		to.Attach(v)
	}
}

// Released reports whether the provider has freed this visual.
func (v *MemoryVisual) Released() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released
}

// MemoryProvider is an in-memory Provider. It tracks live visual counts so
// callers can assert that no resource leaked, which makes it the provider
// of choice in tests and headless tools.
type MemoryProvider struct {
	mu   sync.Mutex
	live map[string]*MemoryVisual

	// Gate, when non-nil, is invoked during Instantiate before the visual
	// is created. It receives the locator and may block; this is how tests
	// hold a load at its suspension point.
	Gate func(ctx context.Context, locator string) error
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{live: make(map[string]*MemoryVisual)}
}

// Instantiate creates a MemoryVisual and attaches it to parent.
func (p *MemoryProvider) Instantiate(ctx context.Context, locator string, parent Container, syncHint bool) (Visual, error) {
	if gate := p.Gate; gate != nil {
		if err := gate(ctx, locator); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := &MemoryVisual{
		id:      uuid.NewString(),
		locator: locator,
		parent:  parent,
	}
	p.mu.Lock()
	p.live[v.id] = v
	p.mu.Unlock()

	if parent != nil {
		parent.Attach(v)
	}
	return v, nil
}

// Release frees a MemoryVisual. Releasing an unknown or already-released
// visual is an error.
func (p *MemoryProvider) Release(v Visual) error {
	mv, ok := v.(*MemoryVisual)
	if !ok {
		return fmt.Errorf("assets: visual %s was not created by this provider", v.ID())
	}

	p.mu.Lock()
	_, live := p.live[mv.id]
	delete(p.live, mv.id)
	p.mu.Unlock()
	if !live {
		return fmt.Errorf("assets: visual %s already released", mv.id)
	}

	mv.mu.Lock()
	mv.released = true
	parent := mv.parent
	mv.parent = nil
	mv.mu.Unlock()

	if parent != nil {
		parent.Detach(mv)
	}
	return nil
}

// LiveCount returns the number of visuals instantiated but not yet released.
func (p *MemoryProvider) LiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
