package viz

import (
	"math"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
)

// Renderer draws the latest layout. With out.DirectRender set the positions
// are taken from the device texture instead of the host nodes.
type Renderer interface {
	Render(g *graph.Graph, out layout.Output) error
}

// Viewport maps layout coordinates to canvas dots with a uniform scale, so
// the layout keeps its aspect ratio.
type Viewport struct {
	minX, minY float64
	scale      float64
	offX, offY float64
}

// Fit returns the viewport that centres the bounding box of positions in a
// dotsW x dotsH area, leaving margin dots on every side.
func Fit(positions []float64, dotsW, dotsH, margin int) Viewport {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(positions); i += 2 {
		x, y := positions[i], positions[i+1]
		if !finite(x) || !finite(y) {
			continue
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	if math.IsInf(minX, 1) {
		return Viewport{scale: 1, offX: float64(dotsW) / 2, offY: float64(dotsH) / 2}
	}

	availW := float64(max(dotsW-2*margin-1, 1))
	availH := float64(max(dotsH-2*margin-1, 1))
	spanX, spanY := maxX-minX, maxY-minY
	scale := 1.0
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(availW/spanX, availH/spanY)
	case spanX > 0:
		scale = availW / spanX
	case spanY > 0:
		scale = availH / spanY
	}
	return Viewport{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  float64(margin) + (availW-spanX*scale)/2,
		offY:  float64(margin) + (availH-spanY*scale)/2,
	}
}

func (v Viewport) Project(x, y float64) (int, int) {
	return int(math.Round((x-v.minX)*v.scale + v.offX)), int(math.Round((y-v.minY)*v.scale + v.offY))
}

// TerminalRenderer draws layouts into a braille Canvas. Pinned nodes are
// drawn larger than free ones.
type TerminalRenderer struct {
	Canvas *Canvas
	Margin int
	last   []float64
}

var _ Renderer = (*TerminalRenderer)(nil)

func NewTerminalRenderer(width, height int) *TerminalRenderer {
	return &TerminalRenderer{Canvas: NewCanvas(width, height), Margin: 2}
}

func (r *TerminalRenderer) Render(g *graph.Graph, out layout.Output) error {
	pos, err := layout.Snapshot(out, g)
	if err != nil {
		return err
	}
	r.Draw(g, pos)
	return nil
}

// Draw clears the canvas and draws g at the given flat x,y positions.
func (r *TerminalRenderer) Draw(g *graph.Graph, pos []float64) {
	r.last = pos
	c := r.Canvas
	c.Clear()
	w, h := c.Dots()
	vp := Fit(pos, w, h, r.Margin)

	ok := func(i int) bool {
		return 2*i+1 < len(pos) && finite(pos[2*i]) && finite(pos[2*i+1])
	}
	for _, e := range g.Edges {
		s, t := int(e.Source), int(e.Target)
		if !ok(s) || !ok(t) {
			continue
		}
		x0, y0 := vp.Project(pos[2*s], pos[2*s+1])
		x1, y1 := vp.Project(pos[2*t], pos[2*t+1])
		c.Line(x0, y0, x1, y1)
	}
	for i, n := range g.Nodes {
		if !ok(i) {
			continue
		}
		x, y := vp.Project(pos[2*i], pos[2*i+1])
		if n.Fixed {
			c.Blot(x, y)
			continue
		}
		c.Set(x, y)
		c.Set(x+1, y)
		c.Set(x, y+1)
		c.Set(x+1, y+1)
	}
}

// Positions returns the positions of the last Draw.
func (r *TerminalRenderer) Positions() []float64 { return r.last }

func (r *TerminalRenderer) String() string { return r.Canvas.String() }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
