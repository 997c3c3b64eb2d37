package layout

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graph"
)

// deviceSpring keeps node state in device textures and advances it with
// compute.SpringProgram, ping-ponging between two position textures. The
// Transferable variant also copies positions back into host nodes every
// ReadbackEvery ticks.
type deviceSpring struct {
	variant Variant
	dev     compute.Device
	props   Properties
	graph   *graph.Graph
	logger  *log.Logger

	scope  compute.Scope
	kernel *compute.Kernel
	cur    *compute.Texture
	next   *compute.Texture
	side   int

	tick     int
	lastDisp float64
	synced   bool
}

func newDeviceSpring(v Variant, env Env) *deviceSpring {
	return &deviceSpring{
		variant: v,
		dev:     env.Device,
		props:   DefaultProperties(),
		logger:  env.Logger,

		lastDisp: math.Inf(1),
	}
}

func (d *deviceSpring) Variant() Variant { return d.variant }

func (d *deviceSpring) SetGraph(g *graph.Graph) error {
	err := d.release()
	d.graph = g
	d.tick, d.lastDisp = 0, math.Inf(1)
	return err
}

func (d *deviceSpring) SetProperties(p Properties) {
	d.props = p
}

// upload creates the textures and kernel for the current graph.
func (d *deviceSpring) upload() (err error) {
	g := d.graph
	d.side = compute.GridSide(g.NumNodes())
	adj, nbs, nbSide := compute.PackAdjacency(g, d.side)

	defer func() {
		if err != nil {
			err = errors.Join(err, d.scope.Release())
		}
	}()

	pos := compute.PackPositions(g, d.side)
	if d.cur, err = d.scope.NewTexture(d.dev, d.side, d.side, compute.PixelChannels, pos, true); err != nil {
		return err
	}
	if d.next, err = d.scope.NewTexture(d.dev, d.side, d.side, compute.PixelChannels, nil, true); err != nil {
		return err
	}
	adjTex, err := d.scope.NewTexture(d.dev, d.side, d.side, compute.PixelChannels, adj, false)
	if err != nil {
		return err
	}
	nbTex, err := d.scope.NewTexture(d.dev, nbSide, nbSide, compute.PixelChannels, nbs, false)
	if err != nil {
		return err
	}

	k := compute.NewKernel(d.dev, compute.SpringProgram)
	k.SetInputTexture(compute.InPositions, d.cur)
	k.SetInputTexture(compute.InAdjacency, adjTex)
	k.SetInputTexture(compute.InNeighbours, nbTex)
	k.SetInputNumber(compute.UniNodeCount, float64(g.NumNodes()), true)
	k.SetInputNumber(compute.UniSide, float64(d.side), true)
	k.SetInputNumber(compute.UniNeighbourSide, float64(nbSide), true)
	d.kernel = k

	d.logger.Debug("device textures ready", "device", d.dev.Name(), "side", d.side, "neighbourSide", nbSide)
	return nil
}

func (d *deviceSpring) ComputeNextPositions(ctx context.Context) error {
	if d.kernel == nil {
		if err := d.upload(); err != nil {
			return err
		}
	}

	p := d.props
	k := d.kernel
	k.SetInputNumber(compute.UniSpeed, p.Speed, false)
	k.SetInputNumber(compute.UniTimeStep, p.TimeStep, false)
	k.SetInputNumber(compute.UniRestLength, p.Forces.RestLength, false)
	k.SetInputNumber(compute.UniDampening, p.Forces.Dampening, false)
	k.SetInputNumber(compute.UniCharge, p.Forces.Charge, false)
	k.SetInputNumber(compute.UniEpsilon, p.Forces.Epsilon, false)
	k.SetInputNumber(compute.UniMaxStep, p.MaxDisplacement, false)
	k.SetInputTexture(compute.InPositions, d.cur)
	k.SetOutputTexture(d.next)
	if err := k.Execute(); err != nil {
		return err
	}
	d.cur, d.next = d.next, d.cur
	d.tick++
	d.synced = false

	if d.variant == Transferable && d.tick%max(p.ReadbackEvery, 1) == 0 {
		return d.readback()
	}
	return nil
}

// readback copies the current texture into the host nodes and derives the
// last tick's largest displacement from the stored velocities.
func (d *deviceSpring) readback() error {
	data, err := d.cur.GetData()
	if err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	compute.UnpackPositions(d.graph, data)
	d.synced = true

	var maxV float64
	for i := range d.graph.Nodes {
		px := data[i*compute.PixelChannels : (i+1)*compute.PixelChannels]
		maxV = math.Max(maxV, math.Hypot(float64(px[2]), float64(px[3])))
	}
	d.lastDisp = maxV * d.props.TimeStep
	return nil
}

func (d *deviceSpring) Output() Output {
	if d.variant == Transferable {
		return Output{Texture: d.cur, Tick: d.tick}
	}
	return Output{Texture: d.cur, DirectRender: true, Tick: d.tick}
}

func (d *deviceSpring) OnCanvasSizeChanged(width, height float64) {}

func (d *deviceSpring) Converged() bool {
	return converged(d.props, d.tick, d.lastDisp)
}

// release copies the latest positions back to the host so another variant can
// continue from them, then frees every texture.
func (d *deviceSpring) release() error {
	var errs []error
	if d.kernel != nil && d.tick > 0 && !d.synced {
		if err := d.readback(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, d.scope.Release())
	d.kernel, d.cur, d.next = nil, nil, nil
	return errors.Join(errs...)
}

func (d *deviceSpring) OnRemove() error {
	err := d.release()
	d.graph = nil
	return err
}
