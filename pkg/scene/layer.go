package scene

import "github.com/go-drift/scene/pkg/assets"

// Layer is one paint-order bucket. Layer numbers are a pure ordering and
// grouping key with no other semantics. Layers are created lazily on first
// use and persist until the service is disposed.
type Layer struct {
	number    int
	container assets.Container
}

// Number returns the layer's ordering key.
func (l *Layer) Number() int { return l.number }

// Container returns the paint-order container owned by this layer.
func (l *Layer) Container() assets.Container { return l.container }
