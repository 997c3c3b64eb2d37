package compute

import (
	"math"

	"github.com/san-kum/forcelayout/internal/graph"
)

// Sentinel is the coordinate stored in grid cells past the last node. It is
// far outside any canvas.
const Sentinel = 1e7

// PixelChannels is the channel count of every node-state texture: x, y and
// the last displacement rate vx, vy.
const PixelChannels = 4

// GridSide returns the side of the smallest square grid holding n cells.
func GridSide(n int) int {
	if n <= 1 {
		return 1
	}
	side := int(math.Ceil(math.Sqrt(float64(n))))
	for side*side < n {
		side++
	}
	return side
}

// Cell maps node i to its pixel in a grid of the given side.
func Cell(i, side int) (x, y int) {
	return i % side, i / side
}

// PackPositions encodes node positions and velocities into a side x side
// texture image. Cells past the last node hold Sentinel coordinates.
func PackPositions(g *graph.Graph, side int) []float32 {
	data := make([]float32, side*side*PixelChannels)
	for i := 0; i < side*side; i++ {
		px := data[i*PixelChannels : (i+1)*PixelChannels]
		if i >= g.NumNodes() {
			px[0], px[1] = Sentinel, Sentinel
			continue
		}
		n := &g.Nodes[i]
		px[0], px[1] = float32(n.X), float32(n.Y)
		px[2], px[3] = float32(n.VX), float32(n.VY)
	}
	return data
}

// UnpackPositions copies positions of free nodes back from a texture image
// produced by PackPositions or a kernel writing the same layout.
func UnpackPositions(g *graph.Graph, data []float32) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Fixed || (i+1)*PixelChannels > len(data) {
			continue
		}
		px := data[i*PixelChannels : (i+1)*PixelChannels]
		n.X, n.Y = float64(px[0]), float64(px[1])
		n.VX, n.VY = float64(px[2]), float64(px[3])
	}
}
