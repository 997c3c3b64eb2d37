//go:build !opengl

package compute

import (
	"errors"
	"testing"
)

func TestOpenGLStubUnavailable(t *testing.T) {
	dev := NewOpenGL()
	if dev.Available() {
		t.Fatal("stub reports available")
	}
	if _, err := NewTexture(dev, 1, 1, PixelChannels, nil, false); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
