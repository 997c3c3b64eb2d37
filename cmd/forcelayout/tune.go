package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/optim"
	"github.com/san-kum/forcelayout/internal/sim"
)

func tuneProperties(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	search, names, err := parseSweeps(sweeps)
	if err != nil {
		return err
	}

	logger.Info("tuning", "variant", cfg.Variant, "trials", search.Size(), "objective", objective)
	best, trials, err := search.Search(cmd.Context(), layoutObjective(cfg, objective))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append(slices.Clone(names), strings.ToUpper(objective)), "\t"))
	for _, tr := range trials {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, fmt.Sprintf("%g", tr.Params[n]))
		}
		if tr.Err != nil {
			row = append(row, "error: "+tr.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.4f", tr.Score))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var set []string
	for _, n := range names {
		set = append(set, fmt.Sprintf("%s=%g", n, best.Params[n]))
	}
	fmt.Printf("\nBest: %.4f with --set %s\n", best.Score, strings.Join(set, ","))
	return nil
}

func parseSweeps(specs []string) (*optim.GridSearch, []string, error) {
	var (
		names  []string
		ranges [][]float64
	)
	for _, s := range specs {
		name, vals, err := optim.ParseRange(s)
		if err != nil {
			return nil, nil, err
		}
		if !slices.Contains(layout.PropertyKeys(), name) {
			return nil, nil, fmt.Errorf("unknown property %q", name)
		}
		if slices.Contains(names, name) {
			return nil, nil, fmt.Errorf("property %q swept twice", name)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	search, err := optim.NewGridSearch(names, ranges)
	return search, names, err
}

// layoutObjective lays out a fresh copy of the configured graph with the trial
// properties for cfg.Ticks ticks and scores it with the named metric.
func layoutObjective(cfg *config.Config, metric string) optim.Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		trial := cfg.Clone()
		values := make(map[string]any, len(params))
		for k, v := range params {
			values[k] = v
		}
		props, err := trial.Properties.Apply(values)
		if err != nil {
			return 0, err
		}
		trial.Properties = props

		engine, g, err := setup(trial, metrics.NewRecorder(0))
		if err != nil {
			return 0, err
		}
		defer engine.Close()

		m, err := newMetric(metric, g, props)
		if err != nil {
			return 0, err
		}
		driver := sim.New(engine, logger)
		driver.AddObserver(m)
		if _, err := driver.Run(ctx, sim.Config{MaxTicks: trial.Ticks}); err != nil {
			return 0, err
		}
		return m.Value(), nil
	}
}

func newMetric(name string, g *graph.Graph, p layout.Properties) (metrics.Metric, error) {
	switch name {
	case "edge_spread":
		return metrics.NewEdgeSpread(g), nil
	case "energy":
		return metrics.NewEnergy(g, p.Forces), nil
	case "mean_movement":
		return metrics.NewMeanMovement(), nil
	default:
		return nil, fmt.Errorf("unknown objective %q (edge_spread, energy, mean_movement)", name)
	}
}
