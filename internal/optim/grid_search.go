package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

var ErrNoTrial = errors.New("optim: every trial failed")

// Objective evaluates one parameter assignment; lower scores are better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

// GridSearch evaluates an objective on the cartesian product of per-parameter
// value lists.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of trials Search runs.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every combination and returns the best trial along with all of
// them in evaluation order. Failed trials are kept but never win. A cancelled
// context stops the search early.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (Trial, []Trial, error) {
	best := Trial{Score: math.Inf(1)}
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &best, &trials)
	if err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, ErrNoTrial
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	best *Trial,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		score, err := obj(ctx, current)
		trial := Trial{Params: current, Score: score, Err: err}
		*trials = append(*trials, trial)
		if err == nil && score < best.Score {
			*best = trial
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := maps.Clone(current)
		newParams[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, newParams, obj, best, trials); err != nil {
			return err
		}
	}
	return nil
}

// ParseRange reads "name=lo:hi:steps" (evenly spaced, inclusive) or
// "name=v1:v2:..." when the last field is not an integer step count. A
// single value is a one-point range.
func ParseRange(s string) (string, []float64, error) {
	name, expr, ok := strings.Cut(s, "=")
	if !ok || name == "" || expr == "" {
		return "", nil, fmt.Errorf("optim: range must be name=lo:hi:steps, got %q", s)
	}
	fields := strings.Split(expr, ":")
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: %s: %w", name, err)
		}
		vals[i] = v
	}

	if len(fields) == 3 {
		if steps, err := strconv.Atoi(fields[2]); err == nil {
			if steps < 1 {
				return "", nil, fmt.Errorf("optim: %s: steps must be positive, got %d", name, steps)
			}
			return name, linspace(vals[0], vals[1], steps), nil
		}
	}
	return name, vals, nil
}

func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range n {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
