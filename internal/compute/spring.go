package compute

import (
	"github.com/chewxy/math32"

	"github.com/san-kum/forcelayout/internal/graph"
)

// Uniform and sampler names read by SpringProgram.
const (
	InPositions      = "positions"
	InAdjacency      = "adjacency"
	InNeighbours     = "neighbours"
	UniNodeCount     = "nodeCount"
	UniSide          = "side"
	UniNeighbourSide = "neighbourSide"
	UniSpeed         = "speed"
	UniTimeStep      = "dt"
	UniRestLength    = "restLength"
	UniDampening     = "dampening"
	UniCharge        = "charge"
	UniEpsilon       = "epsilon"
	UniMaxStep       = "maxStep"
)

// SpringProgram computes spring-embedder forces and applies one clamped Euler
// step in the same pass. It reads node state from "positions", per-node
// (offset, count, pinned) from "adjacency" and the flattened neighbour list
// from "neighbours", and writes the next node state in the positions layout.
var SpringProgram = &Program{
	Name: "spring-embedder",
	Run:  runSpring,
	GLSL: springGLSL,
}

func runSpring(in *Inputs, x, y int, out []float32) {
	side, n := in.Int(UniSide), in.Int(UniNodeCount)
	i := y*side + x
	if i >= n {
		out[0], out[1], out[2], out[3] = Sentinel, Sentinel, 0, 0
		return
	}

	pos := in.Texture(InPositions)
	p := pos.Fetch(x, y)
	px, py := p[0], p[1]
	a := in.Texture(InAdjacency).Fetch(x, y)
	if a[2] != 0 {
		out[0], out[1], out[2], out[3] = px, py, 0, 0
		return
	}

	charge, eps := in.Float(UniCharge), in.Float(UniEpsilon)
	var fx, fy float32
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		q := pos.Fetch(j%side, j/side)
		dx, dy := px-q[0], py-q[1]
		l := math32.Sqrt(dx*dx + dy*dy)
		if l == 0 {
			dx, dy = separation32(i, j)
		} else {
			dx, dy = dx/l, dy/l
		}
		l = math32.Max(l, eps)
		s := charge / (l * l)
		fx += dx * s
		fy += dy * s
	}

	rest, damp := in.Float(UniRestLength), in.Float(UniDampening)
	nbs := in.Texture(InNeighbours)
	off, cnt := int(a[0]), int(a[1])
	for k := off; k < off+cnt; k++ {
		j := int(nbs.At(k))
		q := pos.Fetch(j%side, j/side)
		dx, dy := q[0]-px, q[1]-py
		l := math32.Sqrt(dx*dx + dy*dy)
		if l < eps {
			continue
		}
		s := (l - rest) * damp / l
		fx += dx * s
		fy += dy * s
	}

	dt := in.Float(UniTimeStep)
	scale := in.Float(UniSpeed) * dt
	dx, dy := fx*scale, fy*scale
	if !finite32(dx) || !finite32(dy) {
		dx, dy = 0, 0
	}
	if maxStep := in.Float(UniMaxStep); maxStep > 0 {
		if l := math32.Sqrt(dx*dx + dy*dy); l > maxStep {
			dx, dy = dx*maxStep/l, dy*maxStep/l
		}
	}
	var vx, vy float32
	if dt > 0 {
		vx, vy = dx/dt, dy/dt
	}
	out[0], out[1], out[2], out[3] = px+dx, py+dy, vx, vy
}

func finite32(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// separation32 picks the push direction for coincident nodes i and j. It
// matches separation() in springGLSL bit for bit in its integer part.
func separation32(i, j int) (float32, float32) {
	a, b, sign := uint32(i), uint32(j), float32(1)
	if i > j {
		a, b, sign = b, a, -1
	}
	h := pcg32(a*2654435769 ^ pcg32(b))
	angle := float32(h) / 4294967296.0 * 2 * math32.Pi
	return math32.Cos(angle) * sign, math32.Sin(angle) * sign
}

func pcg32(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// PackAdjacency encodes the graph structure SpringProgram reads: one
// (offset, count, pinned, 0) pixel per node in a side x side grid, and every
// node's neighbour ids concatenated four to a pixel in a square grid of side
// neighbourSide.
func PackAdjacency(g *graph.Graph, side int) (adjacency, neighbours []float32, neighbourSide int) {
	adjacency = make([]float32, side*side*PixelChannels)
	total := 0
	for i := range g.Nodes {
		total += len(g.Nodes[i].Neighbours)
	}
	neighbourSide = GridSide((total + PixelChannels - 1) / PixelChannels)
	neighbours = make([]float32, neighbourSide*neighbourSide*PixelChannels)

	off := 0
	for i := 0; i < side*side; i++ {
		px := adjacency[i*PixelChannels : (i+1)*PixelChannels]
		if i >= g.NumNodes() {
			px[2] = 1
			continue
		}
		n := &g.Nodes[i]
		px[0], px[1] = float32(off), float32(len(n.Neighbours))
		if n.Fixed {
			px[2] = 1
		}
		for _, nb := range n.Neighbours {
			neighbours[off] = float32(nb)
			off++
		}
	}
	return adjacency, neighbours, neighbourSide
}

const springGLSL = `#version 430
layout(local_size_x = 8, local_size_y = 8) in;
layout(rgba32f, binding = 0) uniform writeonly image2D outImage;

uniform sampler2D positions;
uniform sampler2D adjacency;
uniform sampler2D neighbours;

uniform int nodeCount;
uniform int side;
uniform int neighbourSide;
uniform float speed;
uniform float dt;
uniform float restLength;
uniform float dampening;
uniform float charge;
uniform float epsilon;
uniform float maxStep;

const float SENTINEL = 1e7;

uint pcg32(uint v) {
	uint state = v * 747796405u + 2891336453u;
	uint word = ((state >> ((state >> 28u) + 4u)) ^ state) * 277803737u;
	return (word >> 22u) ^ word;
}

vec2 separation(int i, int j) {
	uint a = uint(min(i, j));
	uint b = uint(max(i, j));
	uint h = pcg32(a * 2654435769u ^ pcg32(b));
	float angle = float(h) / 4294967296.0 * 6.283185307179586;
	vec2 d = vec2(cos(angle), sin(angle));
	return i < j ? d : -d;
}

vec4 node(int j) {
	return texelFetch(positions, ivec2(j % side, j / side), 0);
}

int neighbour(int k) {
	int p = k / 4;
	vec4 t = texelFetch(neighbours, ivec2(p % neighbourSide, p / neighbourSide), 0);
	return int(t[k % 4]);
}

bool finite(float f) {
	return !isnan(f) && !isinf(f);
}

void main() {
	ivec2 cell = ivec2(gl_GlobalInvocationID.xy);
	if (cell.x >= side || cell.y >= side) {
		return;
	}
	int i = cell.y * side + cell.x;
	if (i >= nodeCount) {
		imageStore(outImage, cell, vec4(SENTINEL, SENTINEL, 0.0, 0.0));
		return;
	}

	vec2 p = texelFetch(positions, cell, 0).xy;
	vec4 a = texelFetch(adjacency, cell, 0);
	if (a.z != 0.0) {
		imageStore(outImage, cell, vec4(p, 0.0, 0.0));
		return;
	}

	vec2 f = vec2(0.0);
	for (int j = 0; j < nodeCount; j++) {
		if (j == i) {
			continue;
		}
		vec2 d = p - node(j).xy;
		float l = length(d);
		vec2 dir = l == 0.0 ? separation(i, j) : d / l;
		l = max(l, epsilon);
		f += dir * (charge / (l * l));
	}

	int off = int(a.x);
	int cnt = int(a.y);
	for (int k = off; k < off + cnt; k++) {
		vec2 d = node(neighbour(k)).xy - p;
		float l = length(d);
		if (l < epsilon) {
			continue;
		}
		f += d * ((l - restLength) * dampening / l);
	}

	vec2 step = f * speed * dt;
	if (!finite(step.x) || !finite(step.y)) {
		step = vec2(0.0);
	}
	float sl = length(step);
	if (maxStep > 0.0 && sl > maxStep) {
		step *= maxStep / sl;
	}
	vec2 v = dt > 0.0 ? step / dt : vec2(0.0);
	imageStore(outImage, cell, vec4(p + step, v));
}
`
