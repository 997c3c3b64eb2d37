package forces

import "github.com/san-kum/forcelayout/internal/graph"

// Barycenter writes, for every free node with neighbours, the offset from its
// position to the mean position of its neighbours. Offsets are read from the
// positions as they stand on entry, so applying them all at once is one Jacobi
// sweep of Tutte's relaxation.
func Barycenter(g *graph.Graph, acc Accumulator) {
	clear(acc)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Fixed || len(n.Neighbours) == 0 {
			continue
		}
		var sum Vec
		for _, nb := range n.Neighbours {
			sum = sum.Add(pos(&g.Nodes[nb]))
		}
		mean := sum.Scale(1 / float64(len(n.Neighbours)))
		acc[i] = mean.Sub(pos(n))
	}
}
