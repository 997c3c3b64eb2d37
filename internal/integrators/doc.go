// Package integrators advances node positions from accumulated forces.
package integrators
