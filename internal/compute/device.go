package compute

import "fmt"

// Handle names a texture allocated on a Device.
type Handle uint32

// Device owns texture memory and runs programs over it.
type Device interface {
	Name() string
	Available() bool
	Alloc(width, height, channels int) (Handle, error)
	Write(h Handle, data []float32) error
	Read(h Handle, dst []float32) error
	Free(h Handle) error
	Dispatch(p *Pass) error
	Cleanup()
}

// Viewer is implemented by devices whose texture memory the host can read in
// place. The returned slice must not be modified and is only valid until the
// next Dispatch, Write or Free on that handle.
type Viewer interface {
	View(h Handle) ([]float32, error)
}

// Uniform is a scalar program input.
type Uniform struct {
	Value   float64
	Integer bool
}

// Binding attaches a texture to a named sampler. A binding's position in
// Pass.Inputs is its texture slot.
type Binding struct {
	Name   string
	Handle Handle
}

// Pass is one full-output program invocation.
type Pass struct {
	Program  *Program
	Uniforms map[string]Uniform
	Inputs   []Binding
	Output   Handle
}

type EventKind int

const (
	EventAlloc EventKind = iota
	EventWrite
	EventRead
	EventDispatch
	EventFree
)

func (k EventKind) String() string {
	switch k {
	case EventAlloc:
		return "alloc"
	case EventWrite:
		return "write"
	case EventRead:
		return "read"
	case EventDispatch:
		return "dispatch"
	case EventFree:
		return "free"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event records one device operation. For dispatches Handle is the output.
type Event struct {
	Kind   EventKind
	Handle Handle
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.Handle)
}

// Observer receives device events as they happen.
type Observer func(Event)
