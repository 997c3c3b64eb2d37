package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	variant    string
	graphPath  string
	generator  string
	size       int
	scatter    float64
	ticks      int
	seed       uint64
	device     string
	record     int
	width      float64
	height     float64
	overrides  map[string]string

	frameRate int
	theme     string

	benchSizes []int
	benchTicks int

	format  string
	outPath string
	labels  bool
	scale   float64

	cols int
	rows int

	sweeps    []string
	objective string

	logger = newLogger(os.Stderr, log.InfoLevel)
)

// main registers the forcelayout commands and runs the live view when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:   "forcelayout",
		Short: "force-directed graph layout lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".forcelayout", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addLayoutFlags(rootCmd)
	rootCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	rootCmd.Flags().StringVar(&theme, "theme", "night", "color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "lay out a graph until it converges and store the result",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addLayoutFlags(runCmd)
	runCmd.Flags().IntVar(&record, "record", 0, "keep every n-th frame in memory (0 disables)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "lay out a graph in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLayoutFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", "night", "color theme")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every available variant on generated graphs",
		Args:  cobra.NoArgs,
		RunE:  benchVariants,
	}
	benchCmd.Flags().StringVar(&generator, "generator", "random", "graph generator")
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{100, 500, 1000}, "graph sizes")
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 20, "ticks per measurement")
	benchCmd.Flags().StringVar(&device, "device", "software", "compute device (software, opengl, none)")
	benchCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the movement history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export the final layout of a run as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", "svg", "output format (dot, svg, plain)")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	exportCmd.Flags().BoolVar(&labels, "labels", true, "draw node labels")
	exportCmd.Flags().Float64Var(&scale, "scale", 1, "points per layout unit")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "draw the final layout of a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().IntVar(&cols, "cols", 80, "canvas width in characters")
	renderCmd.Flags().IntVar(&rows, "rows", 30, "canvas height in characters")

	presetsCmd := &cobra.Command{
		Use:   "presets [generator]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search layout properties against a quality metric",
		Args:  cobra.NoArgs,
		RunE:  tuneProperties,
	}
	addLayoutFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&sweeps, "sweep", nil, "property range as name=lo:hi:steps or name=v1:v2:..., repeatable")
	tuneCmd.Flags().StringVar(&objective, "objective", "edge_spread", "metric to minimise (edge_spread, energy, mean_movement)")
	tuneCmd.MarkFlagRequired("sweep")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, exportCmd, renderCmd, presetsCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addLayoutFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset as generator/name, e.g. grid/small")
	f.StringVar(&variant, "variant", "barnes-hut", "layout variant (spring, barnes-hut, device, transferable, convex)")
	f.StringVar(&graphPath, "graph", "", "graph file (.yaml or edge list)")
	f.StringVar(&generator, "generator", "grid", "graph generator (grid, cycle, wheel, tree, random)")
	f.IntVar(&size, "size", 8, "generator size")
	f.Float64Var(&scatter, "scatter", 500, "side of the square starting positions are drawn from (0 keeps generator positions)")
	f.IntVar(&ticks, "ticks", 500, "tick budget")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.StringVar(&device, "device", "software", "compute device (software, opengl, none)")
	f.Float64Var(&width, "width", 800, "canvas width in layout units")
	f.Float64Var(&height, "height", 600, "canvas height in layout units")
	f.StringToStringVar(&overrides, "set", nil, "layout properties, e.g. --set charge=1500,theta=0.8")
}
