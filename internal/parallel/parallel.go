// Package parallel distributes independent index computations across
// CPU workers. The generation filters use it to fan batch rows out over
// the available cores.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how For splits work across goroutines.
type Config struct {
	Enabled      bool // Run in parallel at all.
	NumWorkers   int  // Upper bound on worker goroutines.
	MinChunkSize int  // Smallest index span worth a goroutine.
}

// DefaultConfig sizes the worker pool to the machine.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// For runs f(i) for every i in [0, n). The index space splits into
// contiguous spans, one per worker, each at least MinChunkSize wide.
// Work too small for at least two spans runs inline on the calling
// goroutine.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	workers := cfg.NumWorkers
	if limit := n / cfg.MinChunkSize; workers > limit {
		workers = limit
	}
	span := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()
			for i := start; i < start+span && i < n; i++ {
				f(i)
			}
		}(w * span)
	}
	wg.Wait()
}
