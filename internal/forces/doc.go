// Package forces computes per-node net forces for one layout tick.
//
// [SpringEmbedder] combines Hooke springs along edges with inverse-square
// charge repulsion between nodes, summed exactly or through a Barnes–Hut
// quadtree. [Barycenter] produces the offsets for Tutte's convex relaxation.
// Forces land in an [Accumulator] drawn from a [Pool] at the start of a tick
// and returned at its end.
package forces
