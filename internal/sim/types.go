package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/forcelayout/internal/layout"
)

// Observer is told about every completed tick. positions is only valid for
// the duration of the call.
type Observer interface {
	OnTick(tick int, positions []float64, movement float64)
}

type ObserverFunc func(tick int, positions []float64, movement float64)

func (f ObserverFunc) OnTick(tick int, positions []float64, movement float64) {
	f(tick, positions, movement)
}

type Config struct {
	MaxTicks    int
	RecordEvery int
	Interval    time.Duration
}

func DefaultConfig() Config {
	return Config{MaxTicks: 500}
}

func (c Config) Validate() error {
	if c.MaxTicks <= 0 {
		return fmt.Errorf("max ticks must be positive, got %d", c.MaxTicks)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", c.RecordEvery)
	}
	if c.Interval < 0 {
		return fmt.Errorf("tick interval must not be negative, got %s", c.Interval)
	}
	return nil
}

// Result summarises a run. Movement[i] is the largest distance any node moved
// during tick i+1.
type Result struct {
	Variant   layout.Variant
	Ticks     int
	Converged bool
	Positions []float64
	Movement  []float64
	Frames    [][]float64
	AlgoTime  time.Duration
	Elapsed   time.Duration
}

// FinalMovement returns the movement of the last tick, or 0 for an empty run.
func (r *Result) FinalMovement() float64 {
	if len(r.Movement) == 0 {
		return 0
	}
	return r.Movement[len(r.Movement)-1]
}
