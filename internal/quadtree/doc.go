// Package quadtree implements the Barnes–Hut spatial tree used to approximate
// node repulsion in O(n log n).
//
// The tree is rebuilt from scratch every tick:
//
//	tree := quadtree.Build(bodies, 0.1)
//	for src := range tree.Sources(i, x, y, quadtree.DefaultTheta) {
//	    // accumulate src.Charge / d² away from (src.X, src.Y)
//	}
//
// Centroids are charge weighted and maintained incrementally as bodies are
// inserted. A region of side s at distance d from the query is used as one
// aggregate source when s/d < theta and the query lies outside it; otherwise
// its four children are visited. Empty regions are skipped without descending
// and the query body never appears among its own sources.
package quadtree
