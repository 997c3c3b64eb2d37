package workers

import (
	"sync/atomic"
	"testing"
)

func TestForCoversRangeOnce(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		minChunk int
		workers  int
	}{
		{"serial", 10, 16, 4},
		{"even", 100, 8, 4},
		{"uneven", 101, 8, 3},
		{"single worker", 50, 1, 1},
		{"more workers than chunks", 20, 8, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := make([]int32, tt.n)
			ForWorkers(tt.n, tt.minChunk, tt.workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Fatalf("index %d visited %d times", i, h)
				}
			}
		})
	}
}

func TestForEmptyRange(t *testing.T) {
	called := false
	For(0, 4, func(int, int) { called = true })
	if called {
		t.Error("fn called for empty range")
	}
}
