package layout_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
)

// spy is a scripted variant recording its lifecycle into a shared journal.
type spy struct {
	variant  layout.Variant
	journal  *[]string
	block    chan struct{}
	started  chan struct{}
	fail     error
	graphErr error
}

func (s *spy) Variant() layout.Variant              { return s.variant }
func (s *spy) SetGraph(*graph.Graph) error          { return s.graphErr }
func (s *spy) SetProperties(layout.Properties)      {}
func (s *spy) Output() layout.Output                { return layout.Output{} }
func (s *spy) OnCanvasSizeChanged(float64, float64) {}
func (s *spy) Converged() bool                      { return false }

func (s *spy) ComputeNextPositions(context.Context) error {
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.fail
}

func (s *spy) OnRemove() error {
	*s.journal = append(*s.journal, "remove "+s.variant.String())
	return nil
}

func spyRegistry(journal *[]string, configure func(*spy)) *layout.Registry {
	r := layout.NewRegistry()
	for _, v := range layout.Variants() {
		r.Register(v, func(layout.Env) layout.Algorithm {
			*journal = append(*journal, "construct "+v.String())
			s := &spy{variant: v, journal: journal}
			if configure != nil {
				configure(s)
			}
			return s
		})
	}
	return r
}

type deviceLog struct {
	events []compute.Event
}

func (d *deviceLog) observe(e compute.Event) { d.events = append(d.events, e) }

func (d *deviceLog) count(kind compute.EventKind) int {
	n := 0
	for _, e := range d.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func tick(e *layout.Engine, n int) {
	GinkgoHelper()
	for range n {
		Expect(e.ComputeNextPositions(context.Background())).To(Succeed())
	}
}

func texturePositions(out layout.Output, n int) [][2]float64 {
	GinkgoHelper()
	Expect(out.Texture).NotTo(BeNil())
	data, err := out.Texture.View()
	Expect(err).NotTo(HaveOccurred())
	pos := make([][2]float64, n)
	for i := range pos {
		pos[i] = [2]float64{float64(data[i*compute.PixelChannels]), float64(data[i*compute.PixelChannels+1])}
	}
	return pos
}

var _ = Describe("Engine", func() {
	var (
		dev    *compute.Software
		events *deviceLog
		engine *layout.Engine
	)

	BeforeEach(func() {
		dev = compute.NewSoftware()
		events = &deviceLog{}
		dev.Observe(events.observe)
		engine = layout.NewEngine(layout.WithDevice(dev))
	})

	Describe("before a variant is selected", func() {
		It("refuses to tick", func() {
			Expect(engine.ComputeNextPositions(context.Background())).To(MatchError(layout.ErrUninitialized))
		})

		It("reports no output", func() {
			Expect(engine.Output()).To(Equal(layout.Output{}))
			_, ok := engine.Variant()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("selecting variants", func() {
		It("refuses device variants without a device", func() {
			bare := layout.NewEngine()
			Expect(bare.Select(layout.DeviceSpring)).To(MatchError(layout.ErrDeviceUnavailable))
			Expect(bare.Select(layout.Transferable)).To(MatchError(layout.ErrDeviceUnavailable))
			Expect(bare.Select(layout.HostSpring)).To(Succeed())
		})

		It("refuses device variants on an unavailable device", func() {
			gl := layout.NewEngine(layout.WithDevice(compute.NewOpenGL()))
			if compute.NewOpenGL().Available() {
				Skip("an OpenGL context is available")
			}
			Expect(gl.Select(layout.DeviceSpring)).To(MatchError(layout.ErrDeviceUnavailable))
		})

		It("tears the outgoing variant down before constructing the next", func() {
			var journal []string
			e := layout.NewEngine(layout.WithRegistry(spyRegistry(&journal, nil)))

			Expect(e.Select(layout.HostSpring)).To(Succeed())
			Expect(e.Select(layout.HostBarnesHut)).To(Succeed())
			Expect(e.Select(layout.Convex)).To(Succeed())

			Expect(journal).To(Equal([]string{
				"construct spring",
				"remove spring",
				"construct barnes-hut",
				"remove barnes-hut",
				"construct convex",
			}))
		})

		It("tears down a variant that rejects the graph", func() {
			var journal []string
			bad := errors.New("bad graph")
			e := layout.NewEngine(layout.WithRegistry(spyRegistry(&journal, func(s *spy) {
				if s.variant == layout.HostBarnesHut {
					s.graphErr = bad
				}
			})))
			Expect(e.SetGraph(graph.Cycle(4))).To(Succeed())

			Expect(e.Select(layout.HostSpring)).To(Succeed())
			Expect(e.Select(layout.HostBarnesHut)).To(MatchError(bad))

			Expect(journal).To(Equal([]string{
				"construct spring",
				"remove spring",
				"construct barnes-hut",
				"remove barnes-hut",
			}))
			_, ok := e.Variant()
			Expect(ok).To(BeFalse())
		})

		It("frees device textures before the next variant allocates", func() {
			Expect(engine.SetGraph(graph.Random(30, 45, 300, 1))).To(Succeed())
			Expect(engine.Select(layout.DeviceSpring)).To(Succeed())
			tick(engine, 3)

			var owned []compute.Handle
			for _, ev := range events.events {
				if ev.Kind == compute.EventAlloc {
					owned = append(owned, ev.Handle)
				}
			}
			Expect(owned).NotTo(BeEmpty())
			switchAt := len(events.events)

			Expect(engine.Select(layout.Transferable)).To(Succeed())
			tick(engine, 1)

			after := events.events[switchAt:]
			firstAlloc := slices.IndexFunc(after, func(ev compute.Event) bool { return ev.Kind == compute.EventAlloc })
			Expect(firstAlloc).To(BeNumerically(">=", 0))
			for _, h := range owned {
				freed := slices.Index(after, compute.Event{Kind: compute.EventFree, Handle: h})
				Expect(freed).To(BeNumerically(">=", 0), "handle %d never freed", h)
				Expect(freed).To(BeNumerically("<", firstAlloc), "handle %d freed after a new allocation", h)
			}
		})

		It("releases everything on Close", func() {
			Expect(engine.SetGraph(graph.Cycle(5))).To(Succeed())
			Expect(engine.Select(layout.DeviceSpring)).To(Succeed())
			tick(engine, 1)
			Expect(engine.Close()).To(Succeed())
			Expect(events.count(compute.EventFree)).To(Equal(events.count(compute.EventAlloc)))
		})
	})

	Describe("properties", func() {
		It("ignores unknown keys", func() {
			Expect(engine.SetProperties(map[string]any{"speed": 2.5, "colour": "teal", "nodeSize": 4})).To(Succeed())
			Expect(engine.Properties().Speed).To(Equal(2.5))
		})

		It("accepts integers and numeric strings", func() {
			Expect(engine.SetProperties(map[string]any{"charge": 500, "theta": "0.8", "readbackEvery": 3})).To(Succeed())
			p := engine.Properties()
			Expect(p.Forces.Charge).To(Equal(500.0))
			Expect(p.Forces.Theta).To(Equal(0.8))
			Expect(p.ReadbackEvery).To(Equal(3))
		})

		DescribeTable("rejects malformed values and keeps the previous set",
			func(values map[string]any) {
				before := engine.Properties()
				Expect(engine.SetProperties(values)).To(MatchError(layout.ErrParameterBounds))
				Expect(engine.Properties()).To(Equal(before))
			},
			Entry("negative speed", map[string]any{"speed": -1}),
			Entry("zero time step", map[string]any{"timeStep": 0}),
			Entry("zero epsilon", map[string]any{"epsilon": 0.0}),
			Entry("fractional readback", map[string]any{"readbackEvery": 1.5}),
			Entry("zero readback", map[string]any{"readbackEvery": 0}),
			Entry("not a number", map[string]any{"theta": "wide"}),
			Entry("wrong type", map[string]any{"charge": []int{1}}),
			Entry("infinite", map[string]any{"charge": math.Inf(1)}),
			Entry("good and bad together", map[string]any{"speed": 3, "springDampening": -0.5}),
		)
	})

	Describe("ticking", func() {
		It("needs a graph", func() {
			Expect(engine.Select(layout.HostSpring)).To(Succeed())
			Expect(engine.ComputeNextPositions(context.Background())).To(MatchError(layout.ErrNoGraph))
		})

		It("does not start a tick on a cancelled context", func() {
			var calls int
			e := layout.NewEngine(layout.WithHooks(layout.HooksFunc(func(layout.Variant, time.Duration, error) { calls++ })))
			Expect(e.SetGraph(graph.Cycle(4))).To(Succeed())
			Expect(e.Select(layout.HostSpring)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			Expect(e.ComputeNextPositions(ctx)).To(MatchError(context.Canceled))
			Expect(calls).To(BeZero())
			Expect(e.Tick()).To(BeZero())
		})

		It("rejects a tick while another is in flight", func() {
			var journal []string
			block, started := make(chan struct{}), make(chan struct{})
			e := layout.NewEngine(layout.WithRegistry(spyRegistry(&journal, func(s *spy) {
				s.block, s.started = block, started
			})))
			Expect(e.SetGraph(graph.Cycle(3))).To(Succeed())
			Expect(e.Select(layout.HostSpring)).To(Succeed())

			done := make(chan error, 1)
			go func() { done <- e.ComputeNextPositions(context.Background()) }()
			Eventually(started).Should(BeClosed())

			Expect(e.ComputeNextPositions(context.Background())).To(MatchError(layout.ErrTickInFlight))
			close(block)
			Eventually(done).Should(Receive(BeNil()))
		})

		It("reports timing and wraps failures", func() {
			var journal []string
			boom := errors.New("boom")
			var seen []error
			e := layout.NewEngine(
				layout.WithRegistry(spyRegistry(&journal, func(s *spy) { s.fail = boom })),
				layout.WithHooks(layout.HooksFunc(func(v layout.Variant, d time.Duration, err error) {
					Expect(v).To(Equal(layout.Convex))
					Expect(d).To(BeNumerically(">=", 0))
					seen = append(seen, err)
				})),
			)
			Expect(e.SetGraph(graph.Cycle(3))).To(Succeed())
			Expect(e.Select(layout.Convex)).To(Succeed())

			err := e.ComputeNextPositions(context.Background())
			Expect(err).To(MatchError(boom))
			var te *layout.TickError
			Expect(errors.As(err, &te)).To(BeTrue())
			Expect(te.Variant).To(Equal(layout.Convex))
			Expect(te.Tick).To(Equal(0))
			Expect(seen).To(HaveLen(1))
		})

		It("stops converging after maxTicks", func() {
			Expect(engine.SetGraph(graph.Random(20, 30, 300, 5))).To(Succeed())
			Expect(engine.SetProperties(map[string]any{"maxTicks": 4, "tolerance": 0})).To(Succeed())
			Expect(engine.Select(layout.HostBarnesHut)).To(Succeed())

			tick(engine, 3)
			Expect(engine.Converged()).To(BeFalse())
			tick(engine, 1)
			Expect(engine.Converged()).To(BeTrue())
		})
	})

	Describe("barnes-hut logging", func() {
		It("describes the first tree only when debugging", func() {
			var buf bytes.Buffer
			logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
			e := layout.NewEngine(layout.WithLogger(logger))
			Expect(e.SetGraph(graph.Grid(4, 4))).To(Succeed())
			Expect(e.Select(layout.HostBarnesHut)).To(Succeed())
			tick(e, 3)
			Expect(strings.Count(buf.String(), "quadtree")).To(Equal(1))

			var quiet bytes.Buffer
			q := layout.NewEngine(layout.WithLogger(log.NewWithOptions(&quiet, log.Options{Level: log.InfoLevel})))
			Expect(q.SetGraph(graph.Grid(4, 4))).To(Succeed())
			Expect(q.Select(layout.HostBarnesHut)).To(Succeed())
			tick(q, 2)
			Expect(quiet.String()).NotTo(ContainSubstring("quadtree"))
		})
	})

	Describe("pinned nodes", func() {
		DescribeTable("never move",
			func(v layout.Variant) {
				g := graph.Random(25, 40, 300, 3)
				pinned := []int{0, 7, 19}
				want := make([][2]float64, len(pinned))
				for k, i := range pinned {
					g.Nodes[i].Fixed = true
					want[k] = [2]float64{g.Nodes[i].X, g.Nodes[i].Y}
				}

				Expect(engine.SetProperties(map[string]any{"readbackEvery": 1})).To(Succeed())
				Expect(engine.SetGraph(g)).To(Succeed())
				Expect(engine.Select(v)).To(Succeed())
				tick(engine, 15)
				Expect(engine.Close()).To(Succeed())

				for k, i := range pinned {
					Expect(g.Nodes[i].X).To(BeNumerically("~", want[k][0], 1e-3))
					Expect(g.Nodes[i].Y).To(BeNumerically("~", want[k][1], 1e-3))
				}
			},
			Entry("host spring", layout.HostSpring),
			Entry("host barnes-hut", layout.HostBarnesHut),
			Entry("device spring", layout.DeviceSpring),
			Entry("transferable", layout.Transferable),
		)
	})

	Describe("isolated nodes", func() {
		DescribeTable("stay where they are",
			func(v layout.Variant) {
				for _, at := range [][2]float64{{10, 20}, {-300, 45}} {
					g := graph.New("single")
					g.AddNode("only", at[0], at[1])

					Expect(engine.SetGraph(g)).To(Succeed())
					Expect(engine.Select(v)).To(Succeed())
					tick(engine, 10)

					if out := engine.Output(); out.DirectRender {
						pos := texturePositions(out, 1)
						Expect(pos[0][0]).To(BeNumerically("~", at[0], 1e-4))
						Expect(pos[0][1]).To(BeNumerically("~", at[1], 1e-4))
					}
					Expect(engine.Close()).To(Succeed())
					Expect(g.Nodes[0].X).To(BeNumerically("~", at[0], 1e-4))
					Expect(g.Nodes[0].Y).To(BeNumerically("~", at[1], 1e-4))
				}
			},
			Entry("host spring", layout.HostSpring),
			Entry("host barnes-hut", layout.HostBarnesHut),
			Entry("device spring", layout.DeviceSpring),
			Entry("transferable", layout.Transferable),
		)
	})

	Describe("device variants", func() {
		It("render straight from the device without readback", func() {
			Expect(engine.SetGraph(graph.Grid(4, 4))).To(Succeed())
			Expect(engine.Select(layout.DeviceSpring)).To(Succeed())
			tick(engine, 5)

			out := engine.Output()
			Expect(out.DirectRender).To(BeTrue())
			Expect(out.Tick).To(Equal(5))
			Expect(events.count(compute.EventRead)).To(BeZero())
			Expect(texturePositions(out, 16)).To(HaveLen(16))
		})

		It("read back into host nodes on the transferable variant", func() {
			g := graph.Grid(4, 4)
			before := g.Clone()
			Expect(engine.SetProperties(map[string]any{"readbackEvery": 2})).To(Succeed())
			Expect(engine.SetGraph(g)).To(Succeed())
			Expect(engine.Select(layout.Transferable)).To(Succeed())

			tick(engine, 1)
			Expect(events.count(compute.EventRead)).To(BeZero())
			Expect(g.Nodes[5].X).To(Equal(before.Nodes[5].X))

			tick(engine, 1)
			Expect(events.count(compute.EventRead)).To(Equal(1))
			Expect(g.Nodes[5].X).NotTo(Equal(before.Nodes[5].X))
			Expect(engine.Output().DirectRender).To(BeFalse())
		})

		It("agree with the host spring embedder", func() {
			hostGraph := graph.Random(30, 50, 400, 8)
			deviceGraph := hostGraph.Clone()

			host := layout.NewEngine()
			Expect(host.SetGraph(hostGraph)).To(Succeed())
			Expect(host.Select(layout.HostSpring)).To(Succeed())
			tick(host, 5)

			Expect(engine.SetProperties(map[string]any{"readbackEvery": 1})).To(Succeed())
			Expect(engine.SetGraph(deviceGraph)).To(Succeed())
			Expect(engine.Select(layout.Transferable)).To(Succeed())
			tick(engine, 5)

			for i := range hostGraph.Nodes {
				Expect(deviceGraph.Nodes[i].X).To(BeNumerically("~", hostGraph.Nodes[i].X, 0.05))
				Expect(deviceGraph.Nodes[i].Y).To(BeNumerically("~", hostGraph.Nodes[i].Y, 0.05))
			}
		})

		DescribeTable("push coincident nodes apart the same way as the host",
			func(hostVariant layout.Variant) {
				pair := func() *graph.Graph {
					g := graph.New("pair")
					g.AddNode("a", 5, 5)
					g.AddNode("b", 5, 5)
					return g
				}
				hostGraph, deviceGraph := pair(), pair()

				host := layout.NewEngine()
				Expect(host.SetGraph(hostGraph)).To(Succeed())
				Expect(host.Select(hostVariant)).To(Succeed())
				tick(host, 1)

				Expect(engine.SetProperties(map[string]any{"readbackEvery": 1})).To(Succeed())
				Expect(engine.SetGraph(deviceGraph)).To(Succeed())
				Expect(engine.Select(layout.Transferable)).To(Succeed())
				tick(engine, 1)

				Expect(hostGraph.Nodes[0].X).NotTo(Equal(5.0))
				for i := range hostGraph.Nodes {
					Expect(deviceGraph.Nodes[i].X).To(BeNumerically("~", hostGraph.Nodes[i].X, 1e-3))
					Expect(deviceGraph.Nodes[i].Y).To(BeNumerically("~", hostGraph.Nodes[i].Y, 1e-3))
				}
			},
			Entry("host spring", layout.HostSpring),
			Entry("host barnes-hut", layout.HostBarnesHut),
		)
	})

	Describe("convex variant", func() {
		It("pins the outer face and centres the hub", func() {
			g := graph.Wheel(6)
			Expect(engine.SetProperties(map[string]any{"speed": 10, "timeStep": 0.1})).To(Succeed())
			Expect(engine.SetGraph(g)).To(Succeed())
			Expect(engine.Select(layout.Convex)).To(Succeed())

			for i := 1; i <= 6; i++ {
				Expect(g.Nodes[i].Fixed).To(BeTrue())
				r := math.Hypot(g.Nodes[i].X-400, g.Nodes[i].Y-300)
				Expect(r).To(BeNumerically("~", 280, 1e-9))
			}

			tick(engine, 2)
			Expect(g.Nodes[0].X).To(BeNumerically("~", 400, 1e-9))
			Expect(g.Nodes[0].Y).To(BeNumerically("~", 300, 1e-9))
			Expect(engine.Converged()).To(BeTrue())
		})

		It("re-seeds the boundary when the canvas changes", func() {
			g := graph.Wheel(5)
			Expect(engine.SetGraph(g)).To(Succeed())
			Expect(engine.Select(layout.Convex)).To(Succeed())

			engine.OnCanvasSizeChanged(200, 400)
			r := math.Hypot(g.Nodes[1].X-100, g.Nodes[1].Y-200)
			Expect(r).To(BeNumerically("~", 80, 1e-9))
		})

		It("restores the original pins when removed", func() {
			g := graph.Wheel(5)
			Expect(engine.SetGraph(g)).To(Succeed())
			Expect(engine.Select(layout.Convex)).To(Succeed())
			Expect(g.Nodes[1].Fixed).To(BeTrue())

			Expect(engine.Select(layout.HostSpring)).To(Succeed())
			for i := range g.Nodes {
				Expect(g.Nodes[i].Fixed).To(BeFalse())
			}
		})

		It("proceeds with a partial boundary on a broken rotation scheme", func() {
			var buf bytes.Buffer
			e := layout.NewEngine(layout.WithLogger(log.New(&buf)))

			g := graph.Cycle(4)
			n := g.Node(2)
			i := slices.Index(n.Neighbours, 1)
			n.Rotation = slices.Delete(n.Rotation, i, i+1)
			n.Neighbours = slices.Delete(n.Neighbours, i, i+1)

			Expect(e.SetGraph(g)).To(Succeed())
			Expect(e.Select(layout.Convex)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("external face incomplete"))
			Expect(g.Nodes[1].Fixed).To(BeTrue())
			Expect(g.Nodes[2].Fixed).To(BeTrue())

			tick(e, 3)
		})
	})
})
