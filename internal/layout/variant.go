package layout

import (
	"fmt"
	"strings"
)

// Variant is one of the closed set of layout algorithms.
type Variant int

const (
	HostSpring Variant = iota
	HostBarnesHut
	DeviceSpring
	Transferable
	Convex
)

var variantNames = [...]string{
	HostSpring:    "spring",
	HostBarnesHut: "barnes-hut",
	DeviceSpring:  "device",
	Transferable:  "transferable",
	Convex:        "convex",
}

var variantDescriptions = [...]string{
	HostSpring:    "spring embedder, exact pairwise repulsion on the host",
	HostBarnesHut: "spring embedder, quadtree-approximated repulsion on the host",
	DeviceSpring:  "spring embedder fused into one device kernel, rendered from device memory",
	Transferable:  "device kernel with periodic readback into host nodes",
	Convex:        "Tutte barycentric layout inside the pinned outer face",
}

// Variants lists every variant in declaration order.
func Variants() []Variant {
	return []Variant{HostSpring, HostBarnesHut, DeviceSpring, Transferable, Convex}
}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

func (v Variant) Description() string {
	if v < 0 || int(v) >= len(variantDescriptions) {
		return ""
	}
	return variantDescriptions[v]
}

// RequiresDevice reports whether the variant runs on a compute device.
func (v Variant) RequiresDevice() bool {
	return v == DeviceSpring || v == Transferable
}

func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range variantNames {
		if name == s {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}
