package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/san-kum/forcelayout/internal/graph"
)

// Options configures DOT and SVG output.
type Options struct {
	// Scale converts layout units to points.
	Scale float64
	// Labels writes node labels; otherwise nodes are drawn as plain dots.
	Labels bool
}

func DefaultOptions() Options {
	return Options{Scale: 1, Labels: true}
}

// ToDOT converts a laid out graph to an undirected Graphviz document. Every
// node is pinned at its layout position (y flipped, Graphviz is y-up), so
// neato only routes edges. positions overrides the node coordinates when
// non-nil.
func ToDOT(g *graph.Graph, positions []float64, opts Options) string {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if positions == nil {
		positions = g.Positions()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "graph %s {\n", strconv.Quote(g.Name))
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Labels {
		buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.3, fixedsize=true];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.08];\n")
	}
	buf.WriteString("\n")

	for i, n := range g.Nodes {
		x, y := positions[2*i]*opts.Scale, -positions[2*i+1]*opts.Scale
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y)
		if opts.Labels {
			attrs += fmt.Sprintf(", label=%q", n.Label)
		}
		if n.Fixed {
			attrs += ", fillcolor=\"#f5a97f\", color=\"#f5a97f\""
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT document with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
