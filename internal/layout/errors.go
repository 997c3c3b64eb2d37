package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitialized indicates a tick requested before any variant was selected.
	ErrUninitialized = errors.New("layout: no algorithm selected")

	// ErrNoGraph indicates a tick requested before a graph was set.
	ErrNoGraph = errors.New("layout: no graph set")

	// ErrTickInFlight indicates a tick requested while another is still running.
	ErrTickInFlight = errors.New("layout: tick already in flight")

	// ErrDeviceUnavailable indicates a device variant selected without a usable device.
	ErrDeviceUnavailable = errors.New("layout: compute device unavailable")

	// ErrParameterBounds indicates a property value that is malformed or out of range.
	ErrParameterBounds = errors.New("layout: parameter out of valid bounds")

	// ErrUnknownVariant indicates a variant name or value with no registered constructor.
	ErrUnknownVariant = errors.New("layout: unknown variant")
)

// TickError wraps a failure inside one tick with where it happened.
type TickError struct {
	Tick    int
	Variant Variant
	Wrapped error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("layout: %s tick %d: %v", e.Variant, e.Tick, e.Wrapped)
}

func (e *TickError) Unwrap() error {
	return e.Wrapped
}
