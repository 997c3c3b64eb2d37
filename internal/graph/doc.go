// Package graph is the node/edge arena the layout algorithms operate on.
//
// Nodes and edges are addressed by dense integer ids. Edges and rotation
// schemes store ids rather than pointers, so the Node ↔ Edge ↔ Node relation
// has no reference cycles and lookups stay O(1):
//
//	g := graph.New("square")
//	a := g.AddNode("a", 0, 0)
//	b := g.AddNode("b", 1, 0)
//	g.MustEdge(a, b)
//
// A node's Rotation is the cyclic order of its incident edges in a planar
// embedding; Neighbours[i] is the node reached over Rotation[i]. AddEdge
// appends in insertion order and [Graph.OrderRotationsByAngle] derives the
// order from the current coordinates.
//
// Loaders ([Load], [DecodeYAML], [DecodeEdgeList]) and generators ([Grid],
// [Cycle], [Wheel], [Tree], [Random]) stand in for the graph collaborator.
package graph
