package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/forcelayout/internal/graph"
)

// PlainSVG draws the layout directly, one line per edge and one circle per
// node, without going through Graphviz. The view box is the bounding box of
// the positions grown by margin.
func PlainSVG(w io.Writer, g *graph.Graph, positions []float64, margin float64) error {
	if positions == nil {
		positions = g.Positions()
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(positions); i += 2 {
		minX, maxX = math.Min(minX, positions[i]), math.Max(maxX, positions[i])
		minY, maxY = math.Min(minY, positions[i+1]), math.Max(maxY, positions[i+1])
	}
	if len(positions) < 2 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	minX, minY = minX-margin, minY-margin
	width, height := maxX-minX+margin, maxY-minY+margin

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%.2f %.2f %.2f %.2f">
<rect x="%.2f" y="%.2f" width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, minX, minY, width, height, minX, minY)

	sb.WriteString("<g stroke=\"#5b6078\" stroke-width=\"1\">\n")
	for _, e := range g.Edges {
		s, t := int(e.Source), int(e.Target)
		fmt.Fprintf(&sb, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n",
			positions[2*s], positions[2*s+1], positions[2*t], positions[2*t+1])
	}
	sb.WriteString("</g>\n")

	sb.WriteString("<g fill=\"#8bd5ca\">\n")
	for i, n := range g.Nodes {
		fill := ""
		if n.Fixed {
			fill = ` fill="#f5a97f"`
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\"%s/>\n", positions[2*i], positions[2*i+1], fill)
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
