package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/forcelayout/internal/layout"
)

// DefaultWindow is the number of ticks the rolling algoTime mean covers.
const DefaultWindow = 60

// Recorder collects per-tick timing from the engine. It is the statistics
// sink for algoTime: a Prometheus histogram per variant plus a rolling mean
// for on-screen display.
type Recorder struct {
	registry *prometheus.Registry

	TicksTotal  *prometheus.CounterVec
	TickErrors  *prometheus.CounterVec
	AlgoTime    *prometheus.HistogramVec
	LastAlgoSec *prometheus.GaugeVec

	mu     sync.Mutex
	window []time.Duration
	next   int
	filled bool
	total  int
}

var _ layout.Hooks = (*Recorder)(nil)

func NewRecorder(window int) *Recorder {
	if window <= 0 {
		window = DefaultWindow
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		window:   make([]time.Duration, window),
	}

	r.TicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_ticks_total",
			Help: "Total number of completed layout ticks",
		},
		[]string{"variant"},
	)

	r.TickErrors = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "forcelayout_tick_errors_total",
			Help: "Total number of failed layout ticks",
		},
		[]string{"variant"},
	)

	r.AlgoTime = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forcelayout_algo_time_seconds",
			Help:    "Wall time of one layout tick in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"variant"},
	)

	r.LastAlgoSec = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forcelayout_last_algo_time_seconds",
			Help: "Wall time of the most recent layout tick in seconds",
		},
		[]string{"variant"},
	)

	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) OnTick(v layout.Variant, algoTime time.Duration, err error) {
	label := v.String()
	if err != nil {
		r.TickErrors.WithLabelValues(label).Inc()
		return
	}
	r.TicksTotal.WithLabelValues(label).Inc()
	r.AlgoTime.WithLabelValues(label).Observe(algoTime.Seconds())
	r.LastAlgoSec.WithLabelValues(label).Set(algoTime.Seconds())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.window[r.next] = algoTime
	r.next = (r.next + 1) % len(r.window)
	if r.next == 0 {
		r.filled = true
	}
	r.total++
}

// Mean returns the mean algoTime over the last window ticks.
func (r *Recorder) Mean() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.next
	if r.filled {
		n = len(r.window)
	}
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range r.window[:n] {
		sum += d
	}
	return sum / time.Duration(n)
}

// Ticks is the number of successful ticks recorded.
func (r *Recorder) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset clears the rolling window. Prometheus series are left alone.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.window)
	r.next, r.filled, r.total = 0, false, 0
}
