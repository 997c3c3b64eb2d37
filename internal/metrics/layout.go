package metrics

import (
	"math"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
)

// Metric observes a run tick by tick. Every Metric satisfies sim.Observer.
type Metric interface {
	Name() string
	OnTick(tick int, positions []float64, movement float64)
	Value() float64
	Reset()
}

// Collect returns the current value of every metric keyed by name.
func Collect(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

type MeanMovement struct {
	sum     float64
	samples int
}

func NewMeanMovement() *MeanMovement { return &MeanMovement{} }

func (m *MeanMovement) Name() string { return "mean_movement" }

func (m *MeanMovement) OnTick(tick int, positions []float64, movement float64) {
	m.sum += movement
	m.samples++
}

func (m *MeanMovement) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanMovement) Reset() {
	m.sum = 0
	m.samples = 0
}

// Settled is the fraction of ticks in which no node moved farther than the
// threshold.
type Settled struct {
	threshold  float64
	violations int
	samples    int
}

func NewSettled(threshold float64) *Settled {
	return &Settled{threshold: threshold}
}

func (s *Settled) Name() string { return "settled" }

func (s *Settled) OnTick(tick int, positions []float64, movement float64) {
	s.samples++
	if movement > s.threshold {
		s.violations++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Settled) Reset() {
	s.violations = 0
	s.samples = 0
}

// last keeps a copy of the most recent positions for metrics that are only
// evaluated on demand.
type last struct {
	positions []float64
}

func (l *last) OnTick(tick int, positions []float64, movement float64) {
	l.positions = append(l.positions[:0], positions...)
}

func (l *last) Reset() { l.positions = l.positions[:0] }

func (l *last) at(i graph.NodeID) forces.Vec {
	return forces.Vec{X: l.positions[2*i], Y: l.positions[2*i+1]}
}

// EdgeSpread is the coefficient of variation of edge lengths in the latest
// layout. Uniform edge lengths give 0.
type EdgeSpread struct {
	last
	g *graph.Graph
}

func NewEdgeSpread(g *graph.Graph) *EdgeSpread {
	return &EdgeSpread{g: g}
}

func (e *EdgeSpread) Name() string { return "edge_spread" }

func (e *EdgeSpread) Value() float64 {
	if len(e.positions) < 2*e.g.NumNodes() || e.g.NumEdges() == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, edge := range e.g.Edges {
		l := e.at(edge.Source).Dist(e.at(edge.Target))
		sum += l
		sumSq += l * l
	}
	n := float64(e.g.NumEdges())
	mean := sum / n
	if mean == 0 {
		return 0
	}
	variance := math.Max(sumSq/n-mean*mean, 0)
	return math.Sqrt(variance) / mean
}

// Energy is the potential of the latest layout under the spring embedder's
// force model: spring terms over edges plus pairwise repulsion.
type Energy struct {
	last
	g      *graph.Graph
	params forces.Params
}

func NewEnergy(g *graph.Graph, p forces.Params) *Energy {
	return &Energy{g: g, params: p}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Value() float64 {
	n := e.g.NumNodes()
	if len(e.positions) < 2*n {
		return 0
	}
	p := e.params
	var total float64
	for _, edge := range e.g.Edges {
		stretch := e.at(edge.Source).Dist(e.at(edge.Target)) - p.RestLength
		total += 0.5 * p.Dampening * stretch * stretch
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			d := math.Max(e.at(graph.NodeID(i)).Dist(e.at(graph.NodeID(j))), p.Epsilon)
			total += p.Charge / d
		}
	}
	return total
}
