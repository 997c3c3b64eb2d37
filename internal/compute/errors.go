package compute

import "errors"

var (
	// ErrDimensionMismatch indicates texture data that does not fill width*height*channels.
	ErrDimensionMismatch = errors.New("compute: data length does not match texture dimensions")

	// ErrNoOutput indicates a kernel executed without an output texture.
	ErrNoOutput = errors.New("compute: kernel has no output texture")

	// ErrNoMirror indicates a readback from a texture created without a host mirror.
	ErrNoMirror = errors.New("compute: texture has no host mirror")

	// ErrReleased indicates use of a texture after Release.
	ErrReleased = errors.New("compute: texture already released")

	// ErrUnknownHandle indicates a handle the device never issued or already freed.
	ErrUnknownHandle = errors.New("compute: unknown texture handle")

	// ErrUnavailable indicates a device that cannot run on this host.
	ErrUnavailable = errors.New("compute: device unavailable")

	// ErrNotViewable indicates a device that cannot expose resident texture memory.
	ErrNotViewable = errors.New("compute: device does not support resident views")
)
