package layout

import (
	"errors"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graph"
)

// Snapshot returns the current node positions as a flat x,y slice. With
// DirectRender set the positions come from the texture, read in place when
// the device allows it and through the host mirror otherwise.
func Snapshot(out Output, g *graph.Graph) ([]float64, error) {
	if g == nil {
		return nil, ErrNoGraph
	}
	if !out.DirectRender || out.Texture == nil {
		return g.Positions(), nil
	}

	data, err := out.Texture.View()
	if errors.Is(err, compute.ErrNotViewable) {
		data, err = out.Texture.GetData()
	}
	if err != nil {
		return nil, err
	}

	pos := make([]float64, 2*g.NumNodes())
	for i := range g.Nodes {
		if (i+1)*compute.PixelChannels > len(data) {
			break
		}
		px := data[i*compute.PixelChannels:]
		pos[2*i], pos[2*i+1] = float64(px[0]), float64(px[1])
	}
	return pos, nil
}

// Positions is Snapshot of the engine's current output and graph.
func (e *Engine) Positions() ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := Output{}
	if e.active != nil {
		out = e.active.Output()
	}
	return Snapshot(out, e.graph)
}
