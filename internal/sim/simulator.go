package sim

import (
	"context"
	"errors"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/layout"
)

var ErrNoVariant = errors.New("sim: no variant selected")

// Driver ticks an engine until it converges, the tick budget runs out or the
// context is cancelled.
type Driver struct {
	engine    *layout.Engine
	logger    *log.Logger
	observers []Observer
}

func New(engine *layout.Engine, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{engine: engine, logger: logger}
}

func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Run drives the engine and returns what happened. On cancellation or a tick
// failure the partial result is returned along with the error.
func (d *Driver) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	v, ok := d.engine.Variant()
	if !ok {
		return nil, ErrNoVariant
	}

	prev, err := d.engine.Positions()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Variant:  v,
		Movement: make([]float64, 0, cfg.MaxTicks),
	}
	start := time.Now()
	defer func() { result.Elapsed = time.Since(start) }()

	var ticker *time.Ticker
	if cfg.Interval > 0 {
		ticker = time.NewTicker(cfg.Interval)
		defer ticker.Stop()
	}

	for i := 0; i < cfg.MaxTicks; i++ {
		if ticker != nil && i > 0 {
			select {
			case <-ctx.Done():
				result.Positions = prev
				return result, ctx.Err()
			case <-ticker.C:
			}
		}
		select {
		case <-ctx.Done():
			result.Positions = prev
			return result, ctx.Err()
		default:
		}

		tickStart := time.Now()
		if err := d.engine.ComputeNextPositions(ctx); err != nil {
			result.Positions = prev
			return result, err
		}
		result.AlgoTime += time.Since(tickStart)

		cur, err := d.engine.Positions()
		if err != nil {
			result.Positions = prev
			return result, err
		}
		moved := movement(prev, cur)
		result.Ticks++
		result.Movement = append(result.Movement, moved)
		if cfg.RecordEvery > 0 && result.Ticks%cfg.RecordEvery == 0 {
			result.Frames = append(result.Frames, cur)
		}
		for _, o := range d.observers {
			o.OnTick(result.Ticks, cur, moved)
		}
		prev = cur

		if d.engine.Converged() {
			result.Converged = true
			break
		}
	}

	result.Positions = prev
	d.logger.Debug("run finished", "variant", v, "ticks", result.Ticks, "converged", result.Converged, "movement", result.FinalMovement())
	return result, nil
}

func movement(prev, cur []float64) float64 {
	var m float64
	for i := 0; i+1 < len(prev) && i+1 < len(cur); i += 2 {
		d := math.Hypot(cur[i]-prev[i], cur[i+1]-prev[i+1])
		if !math.IsNaN(d) {
			m = math.Max(m, d)
		}
	}
	return m
}
