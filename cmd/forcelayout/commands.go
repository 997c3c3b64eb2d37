package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
	"github.com/san-kum/forcelayout/internal/storage"
	"github.com/san-kum/forcelayout/internal/viz"
)

// resolveConfig layers the preset, the config file and the explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		gen, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be generator/name, got %q", preset)
		}
		p := config.GetPreset(gen, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q (available for %s: %s)", preset, gen, strings.Join(config.ListPresets(gen), ", "))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("variant") {
		cfg.Variant = variant
	}
	if f.Changed("device") {
		cfg.Device = device
	}
	if f.Changed("graph") {
		cfg.Graph.Path = graphPath
	}
	if f.Changed("generator") {
		cfg.Graph.Generator = generator
		cfg.Graph.Path = ""
	}
	if f.Changed("size") {
		cfg.Graph.Size = size
	}
	if f.Changed("scatter") {
		cfg.Graph.Scatter = scatter
	}
	if f.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("record") {
		cfg.RecordEvery = record
	}
	if f.Changed("width") {
		cfg.Canvas.Width = width
	}
	if f.Changed("height") {
		cfg.Canvas.Height = height
	}
	if len(overrides) > 0 {
		values := make(map[string]any, len(overrides))
		for k, v := range overrides {
			if !slices.Contains(layout.PropertyKeys(), k) {
				return nil, fmt.Errorf("unknown property %q", k)
			}
			values[k] = v
		}
		props, err := cfg.Properties.Apply(values)
		if err != nil {
			return nil, err
		}
		cfg.Properties = props
	}
	return cfg, cfg.Validate()
}

func newDevice(name string) (compute.Device, error) {
	switch name {
	case "software":
		return compute.NewSoftware(), nil
	case "opengl":
		return compute.NewOpenGL(), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown device %q (software, opengl, none)", name)
	}
}

// setup builds the graph and an engine with the configured variant selected.
func setup(cfg *config.Config, rec *metrics.Recorder) (*layout.Engine, *graph.Graph, error) {
	v, err := cfg.LayoutVariant()
	if err != nil {
		return nil, nil, err
	}
	g, err := cfg.BuildGraph()
	if err != nil {
		return nil, nil, err
	}
	dev, err := newDevice(cfg.Device)
	if err != nil {
		return nil, nil, err
	}

	engine := layout.NewEngine(
		layout.WithLogger(logger),
		layout.WithDevice(dev),
		layout.WithHooks(rec),
		layout.WithProperties(cfg.Properties),
		layout.WithCanvas(cfg.Canvas.Width, cfg.Canvas.Height),
	)
	if err := engine.SetGraph(g); err != nil {
		return nil, nil, err
	}
	if err := engine.Select(v); err != nil {
		engine.Close()
		return nil, nil, err
	}
	return engine, g, nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	rec := metrics.NewRecorder(0)
	engine, g, err := setup(cfg, rec)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	settled := metrics.NewSettled(cfg.Properties.Tolerance)
	mean := metrics.NewMeanMovement()
	spread := metrics.NewEdgeSpread(g)
	energy := metrics.NewEnergy(g, cfg.Properties.Forces)

	driver := sim.New(engine, logger)
	for _, m := range []metrics.Metric{mean, settled, spread, energy} {
		driver.AddObserver(m)
	}

	logger.Info("laying out", "graph", g.Name, "nodes", g.NumNodes(), "edges", g.NumEdges(), "variant", cfg.Variant, "device", cfg.Device)
	p := newProgress(logger)
	res, err := driver.Run(ctx, sim.Config{MaxTicks: cfg.Ticks, RecordEvery: cfg.RecordEvery})
	if err != nil && res == nil {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted", "tick", res.Ticks, "err", err)
	}
	p.done("layout finished", "ticks", res.Ticks, "converged", res.Converged)

	values := metrics.Collect(mean, settled, spread, energy)
	values["algo_time_mean_ms"] = float64(rec.Mean().Microseconds()) / 1000

	fmt.Printf("Variant:     %s\n", res.Variant)
	fmt.Printf("Graph:       %s (%d nodes, %d edges)\n", g.Name, g.NumNodes(), g.NumEdges())
	fmt.Printf("Ticks:       %d\n", res.Ticks)
	fmt.Printf("Converged:   %v\n", res.Converged)
	fmt.Printf("Movement:    %.4f\n", res.FinalMovement())
	fmt.Printf("Algo time:   %s (mean %s)\n", res.AlgoTime.Round(time.Microsecond), rec.Mean().Round(time.Microsecond))
	fmt.Printf("Edge spread: %.4f\n", values[spread.Name()])
	fmt.Printf("Energy:      %.4f\n", values[energy.Name()])

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	id, err := store.Save(storage.Run{
		Graph:      g,
		Result:     res,
		Properties: engine.Properties(),
		Seed:       cfg.Seed,
		Device:     cfg.Device,
		Metrics:    values,
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nSaved: %s\n", id)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// The alt screen owns the terminal; only errors reach stderr.
	if !verbose {
		logger.SetLevel(log.ErrorLevel)
	}

	rec := metrics.NewRecorder(0)
	engine, _, err := setup(cfg, rec)
	if err != nil {
		return err
	}
	defer engine.Close()

	interval := time.Second / 30
	if frameRate > 0 {
		interval = time.Second / time.Duration(frameRate)
	}
	model := viz.NewModel(engine, viz.Options{
		Recorder: rec,
		Theme:    theme,
		Interval: interval,
		Device:   cfg.Device,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func benchVariants(cmd *cobra.Command, args []string) error {
	dev, err := newDevice(device)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tNODES\tEDGES\tTICKS\tMEAN\tTOTAL\tMOVEMENT")
	for _, n := range benchSizes {
		base, err := graph.Generate(generator, n, seed)
		if err != nil {
			return err
		}
		graph.Scatter(base, config.DefaultScatter, seed)

		for _, v := range layout.Variants() {
			if v.RequiresDevice() && (dev == nil || !dev.Available()) {
				logger.Debug("skipping", "variant", v, "reason", "no device")
				continue
			}
			rec := metrics.NewRecorder(benchTicks)
			props := layout.DefaultProperties()
			props.Tolerance = 0
			engine := layout.NewEngine(layout.WithLogger(logger), layout.WithDevice(dev), layout.WithHooks(rec), layout.WithProperties(props))
			if err := engine.SetGraph(base.Clone()); err != nil {
				return err
			}
			if err := engine.Select(v); err != nil {
				logger.Warn("skipping", "variant", v, "err", err)
				continue
			}
			res, err := sim.New(engine, logger).Run(ctx, sim.Config{MaxTicks: benchTicks})
			engine.Close()
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\t%.3f\n",
				v, base.NumNodes(), base.NumEdges(), res.Ticks,
				rec.Mean().Round(time.Microsecond), res.AlgoTime.Round(time.Microsecond), res.FinalMovement())
		}
	}
	return tw.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGRAPH\tVARIANT\tNODES\tTICKS\tCONVERGED\tTIME")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%v\t%s\n",
			r.ID[:8], r.Graph, r.Variant, r.Nodes, r.Ticks, r.Converged, r.Timestamp.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	movement, err := store.LoadMovement(args[0])
	if err != nil {
		return err
	}
	if len(movement) < 2 {
		return fmt.Errorf("run %s has %d ticks, nothing to plot", meta.ID, len(movement))
	}

	fmt.Printf("%s on %s\n\n", meta.Variant, meta.Graph)
	fmt.Println(asciigraph.Plot(movement, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("largest node movement per tick")))

	if len(meta.Metrics) > 0 {
		fmt.Println()
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, k := range slices.Sorted(maps.Keys(meta.Metrics)) {
			fmt.Fprintf(tw, "%s\t%.4f\n", k, meta.Metrics[k])
		}
		return tw.Flush()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	g, err := store.LoadLayout(args[0])
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	opts := export.Options{Scale: scale, Labels: labels}
	switch format {
	case "dot":
		_, err = io.WriteString(w, export.ToDOT(g, nil, opts))
	case "svg":
		var svg []byte
		svg, err = export.RenderSVG(cmd.Context(), export.ToDOT(g, nil, opts))
		if err == nil {
			_, err = w.Write(svg)
		}
	case "plain":
		err = export.PlainSVG(w, g, nil, 20)
	default:
		return fmt.Errorf("unknown format %q (dot, svg, plain)", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		logger.Info("exported", "run", args[0], "format", format, "path", outPath)
	}
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	g, err := store.LoadLayout(args[0])
	if err != nil {
		return err
	}
	r := viz.NewTerminalRenderer(cols, rows)
	if err := r.Render(g, layout.Output{}); err != nil {
		return err
	}
	fmt.Print(r.String())
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	generators := slices.Sorted(maps.Keys(config.Presets))
	if len(args) == 1 {
		if _, ok := config.Presets[args[0]]; !ok {
			return fmt.Errorf("no presets for generator %q", args[0])
		}
		generators = args[:1]
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tVARIANT\tSIZE\tTICKS")
	for _, gen := range generators {
		for _, name := range config.ListPresets(gen) {
			p := config.GetPreset(gen, name)
			fmt.Fprintf(tw, "%s/%s\t%s\t%d\t%d\n", gen, name, p.Variant, p.Graph.Size, p.Ticks)
		}
	}
	return tw.Flush()
}
