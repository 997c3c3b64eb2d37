package graph

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EncodeYAML writes g as a File document, including current positions and
// rotation schemes, so that DecodeYAML restores the same embedding.
func EncodeYAML(w io.Writer, g *Graph) error {
	labels := make([]string, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		label := n.Label
		if label == "" || seen[label] {
			label = fmt.Sprintf("#%d", i)
		}
		seen[label] = true
		labels[i] = label
	}

	doc := File{
		Name:  g.Name,
		Nodes: make([]fileNode, len(g.Nodes)),
		Edges: make([]fileEdge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		doc.Nodes[i] = fileNode{ID: labels[i], X: n.X, Y: n.Y, Fixed: n.Fixed}
		if len(n.Neighbours) == 0 {
			continue
		}
		if doc.Rotations == nil {
			doc.Rotations = make(map[string][]string)
		}
		order := make([]string, len(n.Neighbours))
		for j, nb := range n.Neighbours {
			order[j] = labels[nb]
		}
		doc.Rotations[labels[i]] = order
	}
	for i, e := range g.Edges {
		doc.Edges[i] = fileEdge{Source: labels[e.Source], Target: labels[e.Target]}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("graph: encode yaml: %w", err)
	}
	return enc.Close()
}
