package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io/fs"
	"sync"

	// Register the decoders image assets are shipped in.
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// ImageVisual is a decoded raster asset.
type ImageVisual struct {
	id      string
	locator string
	img     *image.RGBA

	mu      sync.Mutex
	visible bool
	parent  Container
}

// ID returns the visual's unique identity.
func (v *ImageVisual) ID() string { return v.id }

// Locator returns the path this visual was decoded from.
func (v *ImageVisual) Locator() string { return v.locator }

// Image returns the decoded (and possibly scaled) pixels.
func (v *ImageVisual) Image() *image.RGBA { return v.img }

// SetVisible toggles the visibility flag.
func (v *ImageVisual) SetVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible = visible
}

// Visible reports the visibility flag.
func (v *ImageVisual) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Reparent moves the visual to a different container.
func (v *ImageVisual) Reparent(to Container) {
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

// ImageProvider decodes raster assets (PNG, JPEG) from a file system and
// serves them as visuals. Oversized assets are scaled down to fit MaxWidth
// and MaxHeight, preserving aspect ratio.
type ImageProvider struct {
	// FS is the file system locators are resolved against.
	FS fs.FS

	// MaxWidth and MaxHeight bound decoded assets. Zero means unbounded
	// on that axis.
	MaxWidth  int
	MaxHeight int

	mu   sync.Mutex
	live map[string]*ImageVisual
}

// NewImageProvider creates a provider reading from fsys.
func NewImageProvider(fsys fs.FS) *ImageProvider {
	return &ImageProvider{
		FS:   fsys,
		live: make(map[string]*ImageVisual),
	}
}

// Instantiate reads and decodes the asset at locator, scales it to fit the
// provider bounds, and attaches the resulting visual to parent.
func (p *ImageProvider) Instantiate(ctx context.Context, locator string, parent Container, syncHint bool) (Visual, error) {
	data, err := fs.ReadFile(p.FS, locator)
	if err != nil {
		return nil, fmt.Errorf("assets: read %q: %w", locator, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %q: %w", locator, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := &ImageVisual{
		id:      uuid.NewString(),
		locator: locator,
		img:     p.fit(src),
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

// fit converts src to RGBA, scaling down if it exceeds the provider bounds.
func (p *ImageProvider) fit(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := 1.0
	if p.MaxWidth > 0 && w > p.MaxWidth {
		scale = float64(p.MaxWidth) / float64(w)
	}
	if p.MaxHeight > 0 && h > p.MaxHeight {
		if s := float64(p.MaxHeight) / float64(h); s < scale {
			scale = s
		}
	}

	outW, outH := w, h
	if scale < 1.0 {
		outW = int(float64(w) * scale)
		outH = int(float64(h) * scale)
		if outW < 1 {
			outW = 1
		}
		if outH < 1 {
			outH = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
	if scale < 1.0 {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	} else {
		xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Src)
	}
	return dst
}

// Release frees an ImageVisual and detaches it from its container.
func (p *ImageProvider) Release(v Visual) error {
	iv, ok := v.(*ImageVisual)
	if !ok {
		return fmt.Errorf("assets: visual %s was not created by this provider", v.ID())
	}

	p.mu.Lock()
	_, live := p.live[iv.id]
	delete(p.live, iv.id)
	p.mu.Unlock()
	if !live {
		return fmt.Errorf("assets: visual %s already released", iv.id)
	}

	iv.mu.Lock()
	parent := iv.parent
	iv.parent = nil
	iv.img = nil
	iv.mu.Unlock()

	if parent != nil {
		parent.Detach(iv)
	}
	return nil
}

// LiveCount returns the number of visuals instantiated but not yet released.
func (p *ImageProvider) LiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
