package compute

import "errors"

type Releaser interface {
	Release() error
}

// Scope collects device resources and releases them together, newest first.
// The zero value is ready to use.
type Scope struct {
	items []Releaser
}

func (s *Scope) Add(r Releaser) {
	s.items = append(s.items, r)
}

// NewTexture creates a texture owned by the scope.
func (s *Scope) NewTexture(dev Device, width, height, channels int, data []float32, mirror bool) (*Texture, error) {
	t, err := NewTexture(dev, width, height, channels, data, mirror)
	if err != nil {
		return nil, err
	}
	s.Add(t)
	return t, nil
}

func (s *Scope) Len() int { return len(s.items) }

// Release frees everything in reverse order of acquisition and empties the
// scope. Every resource is released even when some fail.
func (s *Scope) Release() error {
	var errs []error
	for i := len(s.items) - 1; i >= 0; i-- {
		if err := s.items[i].Release(); err != nil {
			errs = append(errs, err)
		}
	}
	s.items = nil
	return errors.Join(errs...)
}
