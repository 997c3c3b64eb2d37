package integrators

import (
	"testing"

	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/graph"
)

func benchmarkTick(b *testing.B, mode forces.Mode, n int) {
	g := graph.Random(n, 2*n, 1000, 1)
	embedder := forces.NewSpringEmbedder(forces.DefaultParams(), mode)
	integrator := NewEuler(10)
	pool := forces.NewPool()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc := pool.Get(g.NumNodes())
		embedder.Accumulate(g, acc)
		integrator.Step(g, acc, 1, 0.1)
		pool.Put(acc)
	}
}

func BenchmarkExact_500(b *testing.B)      { benchmarkTick(b, forces.Exact, 500) }
func BenchmarkBarnesHut_500(b *testing.B)  { benchmarkTick(b, forces.BarnesHut, 500) }
func BenchmarkExact_2000(b *testing.B)     { benchmarkTick(b, forces.Exact, 2000) }
func BenchmarkBarnesHut_2000(b *testing.B) { benchmarkTick(b, forces.BarnesHut, 2000) }
