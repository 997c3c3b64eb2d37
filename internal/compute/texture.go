package compute

import (
	"errors"
	"fmt"
)

// Texture is a width x height grid of pixels with a fixed channel count,
// resident on a Device. Textures created with a mirror keep a host copy sized
// once at creation that GetData reads back into.
type Texture struct {
	Width, Height, Channels int

	dev      Device
	handle   Handle
	mirror   []float32
	released bool
}

// NewTexture allocates a texture on dev and uploads data. Dimensions are
// checked before anything is allocated. A nil data leaves the texture zeroed.
func NewTexture(dev Device, width, height, channels int, data []float32, mirror bool) (*Texture, error) {
	size := width * height * channels
	if width <= 0 || height <= 0 || channels <= 0 || (data != nil && len(data) != size) {
		return nil, fmt.Errorf("%w: %dx%dx%d with %d values", ErrDimensionMismatch, width, height, channels, len(data))
	}

	h, err := dev.Alloc(width, height, channels)
	if err != nil {
		return nil, err
	}
	t := &Texture{Width: width, Height: height, Channels: channels, dev: dev, handle: h}
	if mirror {
		t.mirror = make([]float32, size)
	}
	if data != nil {
		if err := dev.Write(h, data); err != nil {
			return nil, errors.Join(err, dev.Free(h))
		}
	}
	return t, nil
}

func (t *Texture) Handle() Handle { return t.handle }

func (t *Texture) Len() int { return t.Width * t.Height * t.Channels }

// UpdateData replaces the whole texture.
func (t *Texture) UpdateData(data []float32) error {
	if t.released {
		return ErrReleased
	}
	if len(data) != t.Len() {
		return fmt.Errorf("%w: %d values for %dx%dx%d", ErrDimensionMismatch, len(data), t.Width, t.Height, t.Channels)
	}
	return t.dev.Write(t.handle, data)
}

// GetData reads the texture back into its mirror and returns the mirror.
func (t *Texture) GetData() ([]float32, error) {
	if t.released {
		return nil, ErrReleased
	}
	if t.mirror == nil {
		return nil, ErrNoMirror
	}
	if err := t.dev.Read(t.handle, t.mirror); err != nil {
		return nil, err
	}
	return t.mirror, nil
}

// View returns the resident contents without a readback when the device
// supports it.
func (t *Texture) View() ([]float32, error) {
	if t.released {
		return nil, ErrReleased
	}
	v, ok := t.dev.(Viewer)
	if !ok {
		return nil, ErrNotViewable
	}
	return v.View(t.handle)
}

// Release frees the device texture. Releasing twice is a no-op.
func (t *Texture) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	t.mirror = nil
	return t.dev.Free(t.handle)
}

func (t *Texture) Released() bool { return t.released }
