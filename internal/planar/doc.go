// Package planar traces faces of a planar embedding given by per-node rotation
// schemes and pins the outer face onto a convex polygon.
package planar
