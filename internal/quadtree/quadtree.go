package quadtree

import (
	"iter"
	"math"
)

// MaxDepth bounds subdivision. Bodies that still share a cell at this depth
// (coincident or nearly so) are kept together in one leaf bucket.
const MaxDepth = 48

// DefaultTheta is the usual opening angle for Barnes–Hut traversal.
const DefaultTheta = 0.5

type Body struct {
	Index  int
	X, Y   float64
	Charge float64
}

// Source is one term of the approximate force sum: a single body, or the
// aggregate of a far region (Index == -1).
type Source struct {
	X, Y   float64
	Charge float64
	Count  int
	Index  int
}

// Cell is a square region of the tree. Internal cells always own exactly four
// children, some of which may be empty.
type Cell struct {
	CX, CY   float64
	Size     float64
	MX, MY   float64
	Charge   float64
	Count    int
	Bodies   []Body
	Children *[4]Cell
	depth    int
}

func (c *Cell) IsLeaf() bool { return c.Children == nil }

func (c *Cell) contains(x, y float64) bool {
	h := c.Size / 2
	return math.Abs(x-c.CX) <= h && math.Abs(y-c.CY) <= h
}

func (c *Cell) quadrant(x, y float64) int {
	q := 0
	if x >= c.CX {
		q |= 1
	}
	if y >= c.CY {
		q |= 2
	}
	return q
}

func (c *Cell) accumulate(b Body) {
	total := c.Charge + b.Charge
	if total != 0 {
		c.MX = (c.MX*c.Charge + b.X*b.Charge) / total
		c.MY = (c.MY*c.Charge + b.Y*b.Charge) / total
	} else if c.Count == 0 {
		c.MX, c.MY = b.X, b.Y
	}
	c.Charge = total
	c.Count++
}

func (c *Cell) insert(b Body) {
	c.accumulate(b)
	if c.Children == nil {
		if len(c.Bodies) == 0 || c.depth >= MaxDepth {
			c.Bodies = append(c.Bodies, b)
			return
		}
		c.split()
	}
	c.Children[c.quadrant(b.X, b.Y)].insert(b)
}

func (c *Cell) split() {
	q := c.Size / 4
	half := c.Size / 2
	c.Children = &[4]Cell{
		{CX: c.CX - q, CY: c.CY - q, Size: half, depth: c.depth + 1},
		{CX: c.CX + q, CY: c.CY - q, Size: half, depth: c.depth + 1},
		{CX: c.CX - q, CY: c.CY + q, Size: half, depth: c.depth + 1},
		{CX: c.CX + q, CY: c.CY + q, Size: half, depth: c.depth + 1},
	}
	moved := c.Bodies
	c.Bodies = nil
	for _, b := range moved {
		c.Children[c.quadrant(b.X, b.Y)].insert(b)
	}
}

type Tree struct {
	Root Cell
}

// Build inserts every finite body into a fresh tree whose square root region
// covers all of them, grown by the relative margin on each side.
func Build(bodies []Body, margin float64) *Tree {
	t := &Tree{}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	n := 0
	for _, b := range bodies {
		if !finite(b.X) || !finite(b.Y) {
			continue
		}
		minX, maxX = math.Min(minX, b.X), math.Max(maxX, b.X)
		minY, maxY = math.Min(minY, b.Y), math.Max(maxY, b.Y)
		n++
	}
	if n == 0 {
		t.Root = Cell{Size: 1}
		return t
	}

	side := math.Max(maxX-minX, maxY-minY)
	if side == 0 {
		side = 1
	}
	side *= 1 + 2*margin
	t.Root = Cell{CX: (minX + maxX) / 2, CY: (minY + maxY) / 2, Size: side}

	for _, b := range bodies {
		if finite(b.X) && finite(b.Y) {
			t.Root.insert(b)
		}
	}
	return t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sources lazily enumerates the force sources acting on body query at (x, y).
// Each call restarts the traversal.
func (t *Tree) Sources(query int, x, y, theta float64) iter.Seq[Source] {
	return func(yield func(Source) bool) {
		t.Root.visit(query, x, y, theta, yield)
	}
}

// ForEachSource calls fn for every source of Sources until fn returns false.
func (t *Tree) ForEachSource(query int, x, y, theta float64, fn func(Source) bool) {
	t.Root.visit(query, x, y, theta, fn)
}

func (c *Cell) visit(query int, x, y, theta float64, yield func(Source) bool) bool {
	if c.Count == 0 || c.Charge == 0 {
		return true
	}
	if c.Children == nil {
		for _, b := range c.Bodies {
			if b.Index == query {
				continue
			}
			if !yield(Source{X: b.X, Y: b.Y, Charge: b.Charge, Count: 1, Index: b.Index}) {
				return false
			}
		}
		return true
	}

	// A cell holding the query is always opened, so a body never feels its
	// own charge through an aggregate.
	if !c.contains(x, y) {
		d := math.Hypot(c.MX-x, c.MY-y)
		if d > 0 && c.Size/d < theta {
			return yield(Source{X: c.MX, Y: c.MY, Charge: c.Charge, Count: c.Count, Index: -1})
		}
	}
	for i := range c.Children {
		if !c.Children[i].visit(query, x, y, theta, yield) {
			return false
		}
	}
	return true
}

type Stats struct {
	Cells    int
	Leaves   int
	MaxDepth int
	Bodies   int
}

func (t *Tree) Stats() Stats {
	var s Stats
	var walk func(c *Cell)
	walk = func(c *Cell) {
		s.Cells++
		s.MaxDepth = max(s.MaxDepth, c.depth)
		if c.Children == nil {
			s.Leaves++
			s.Bodies += len(c.Bodies)
			return
		}
		for i := range c.Children {
			walk(&c.Children[i])
		}
	}
	walk(&t.Root)
	return s
}
