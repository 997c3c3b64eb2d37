package compute

import (
	"fmt"
	"sync"

	"github.com/san-kum/forcelayout/internal/workers"
)

type image struct {
	width, height, channels int
	data                    []float32
}

// Software keeps textures in host memory and runs programs with Program.Run,
// spreading output rows across goroutines. Each dispatch renders into a fresh
// buffer that replaces the output only once every pixel is written.
type Software struct {
	mu       sync.Mutex
	images   map[Handle]*image
	next     Handle
	observer Observer
}

func NewSoftware() *Software {
	return &Software{images: make(map[Handle]*image)}
}

// Observe installs fn to receive every subsequent device event.
func (s *Software) Observe(fn Observer) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

func (s *Software) Name() string    { return "software" }
func (s *Software) Available() bool { return true }

func (s *Software) emit(kind EventKind, h Handle) {
	if s.observer != nil {
		s.observer(Event{Kind: kind, Handle: h})
	}
}

func (s *Software) Alloc(width, height, channels int) (Handle, error) {
	if width <= 0 || height <= 0 || channels <= 0 {
		return 0, fmt.Errorf("%w: %dx%dx%d", ErrDimensionMismatch, width, height, channels)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.images[h] = &image{
		width:    width,
		height:   height,
		channels: channels,
		data:     make([]float32, width*height*channels),
	}
	s.emit(EventAlloc, h)
	return h, nil
}

func (s *Software) lookup(h Handle) (*image, error) {
	img, ok := s.images[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return img, nil
}

func (s *Software) Write(h Handle, data []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.lookup(h)
	if err != nil {
		return err
	}
	if len(data) != len(img.data) {
		return fmt.Errorf("%w: got %d values for %d", ErrDimensionMismatch, len(data), len(img.data))
	}
	copy(img.data, data)
	s.emit(EventWrite, h)
	return nil
}

func (s *Software) Read(h Handle, dst []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.lookup(h)
	if err != nil {
		return err
	}
	if len(dst) != len(img.data) {
		return fmt.Errorf("%w: got %d slots for %d", ErrDimensionMismatch, len(dst), len(img.data))
	}
	copy(dst, img.data)
	s.emit(EventRead, h)
	return nil
}

func (s *Software) View(h Handle) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	return img.data, nil
}

func (s *Software) Free(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(h); err != nil {
		return err
	}
	delete(s.images, h)
	s.emit(EventFree, h)
	return nil
}

func (s *Software) Dispatch(p *Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.lookup(p.Output)
	if err != nil {
		return err
	}
	in := &Inputs{uniforms: p.Uniforms, samplers: make(map[string]*Sampler, len(p.Inputs))}
	for _, b := range p.Inputs {
		img, err := s.lookup(b.Handle)
		if err != nil {
			return fmt.Errorf("input %q: %w", b.Name, err)
		}
		in.samplers[b.Name] = &Sampler{Width: img.width, Height: img.height, Channels: img.channels, data: img.data}
	}

	fresh := make([]float32, len(out.data))
	w, ch := out.width, out.channels
	workers.For(out.height, 1, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := (y*w + x) * ch
				p.Program.Run(in, x, y, fresh[i:i+ch])
			}
		}
	})
	out.data = fresh
	s.emit(EventDispatch, p.Output)
	return nil
}

// Cleanup frees every texture still allocated.
func (s *Software) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h := range s.images {
		delete(s.images, h)
		s.emit(EventFree, h)
	}
}
