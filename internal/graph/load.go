package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileNode struct {
	ID    string  `yaml:"id"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Fixed bool    `yaml:"fixed"`
}

type fileEdge struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// File is the YAML graph document. When Rotations is set, each entry lists a
// node's neighbours in cyclic order; otherwise rotation schemes are derived
// from the node coordinates.
type File struct {
	Name      string              `yaml:"name"`
	Nodes     []fileNode          `yaml:"nodes"`
	Edges     []fileEdge          `yaml:"edges"`
	Rotations map[string][]string `yaml:"rotations,omitempty"`
}

// Load reads a graph from a .yaml/.yml document or a whitespace separated edge list.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return DecodeEdgeList(f, filepath.Base(path))
	}
}

func DecodeYAML(r io.Reader) (*Graph, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("graph: decode yaml: %w", err)
	}

	g := New(doc.Name)
	ids := make(map[string]NodeID, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, dup := ids[n.ID]; dup {
			return nil, fmt.Errorf("graph: duplicate node %q", n.ID)
		}
		id := g.AddNode(n.ID, n.X, n.Y)
		g.Nodes[id].Fixed = n.Fixed
		ids[n.ID] = id
	}
	edgeIndex := make(map[[2]NodeID]EdgeID, len(doc.Edges))
	for _, e := range doc.Edges {
		s, ok := ids[e.Source]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, e.Source)
		}
		t, ok := ids[e.Target]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, e.Target)
		}
		eid, err := g.AddEdge(s, t)
		if err != nil {
			return nil, err
		}
		edgeIndex[[2]NodeID{s, t}] = eid
		edgeIndex[[2]NodeID{t, s}] = eid
	}

	if len(doc.Rotations) == 0 {
		g.OrderRotationsByAngle()
		return g, nil
	}

	for label, order := range doc.Rotations {
		id, ok := ids[label]
		if !ok {
			return nil, fmt.Errorf("%w: rotation for %q", ErrUnknownNode, label)
		}
		n := g.Node(id)
		n.Rotation = n.Rotation[:0]
		n.Neighbours = n.Neighbours[:0]
		for _, other := range order {
			oid, ok := ids[other]
			if !ok {
				return nil, fmt.Errorf("%w: rotation entry %q", ErrUnknownNode, other)
			}
			eid, ok := edgeIndex[[2]NodeID{id, oid}]
			if !ok {
				return nil, fmt.Errorf("graph: rotation of %q names %q, which is not adjacent", label, other)
			}
			n.Rotation = append(n.Rotation, eid)
			n.Neighbours = append(n.Neighbours, oid)
		}
	}
	return g, nil
}

// DecodeEdgeList reads "a b" pairs, one edge per line; '#' starts a comment.
// Nodes are created on first mention and scattered later by the caller.
func DecodeEdgeList(r io.Reader, name string) (*Graph, error) {
	g := New(name)
	ids := make(map[string]NodeID)
	node := func(label string) NodeID {
		if id, ok := ids[label]; ok {
			return id
		}
		id := g.AddNode(label, 0, 0)
		ids[label] = id
		return id
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 0:
			continue
		case 1:
			node(fields[0])
		case 2:
			if fields[0] == fields[1] {
				continue
			}
			if _, err := g.AddEdge(node(fields[0]), node(fields[1])); err != nil {
				return nil, fmt.Errorf("graph: line %d: %w", line, err)
			}
		default:
			return nil, fmt.Errorf("graph: line %d: expected 1 or 2 fields, got %d", line, len(fields))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return g, nil
}
