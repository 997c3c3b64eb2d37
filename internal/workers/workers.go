// Package workers splits index ranges across goroutines.
package workers

import (
	"runtime"
	"sync"
)

// For calls fn over disjoint chunks covering [0, n) and waits for all of them.
// Ranges shorter than minChunk run on the calling goroutine. Chunk boundaries
// depend only on n, minChunk and the worker count, so a caller that writes
// index i only from the chunk owning i gets the same result on every run.
func For(n, minChunk int, fn func(start, end int)) {
	ForWorkers(n, minChunk, runtime.GOMAXPROCS(0), fn)
}

func ForWorkers(n, minChunk, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
