// Package parallel defines the RunParallel capability the reconstruction
// core consumes (spec: "the core consumes a RunParallel(range,
// per_thread_init, per_item_task) capability" — the thread pool primitive
// itself is out of scope, only its interface). Two implementations are
// provided: Pool, a bounded goroutine pool built on
// golang.org/x/sync/errgroup, and Sequential, a single-thread reference
// implementation used by tests that need a run free of goroutine
// scheduling nondeterminism.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Runner is the capability the reconstruction scheduler consumes:
//
//	RunParallel(begin, end,
//	            init: (numThreads int) bool,
//	            task: (i, threadID int))
//	-> ok bool
//
// Contract (spec §5/§9): init runs exactly once before any task; every task
// sees threadID in [0, numThreads); tasks with different threadID may run
// concurrently; tasks with the same threadID are serialized.
type Runner interface {
	RunParallel(begin, end int, init func(numThreads int) bool, task func(i, threadID int)) bool
}

// Pool is an errgroup-bounded worker pool. Each of NumWorkers goroutines
// claims a disjoint sub-range of [begin, end) and is pinned to a single
// threadID for its whole run, which satisfies the "same threadID never
// runs concurrently with itself" half of the contract trivially (a single
// goroutine executes all tasks for that threadID in sequence).
type Pool struct {
	NumWorkers int
}

// NewPool returns a Pool sized to the number of available CPUs, matching
// the teacher's runtime.GOMAXPROCS-driven worker sizing in
// internal/lossy/encode_parallel.go.
func NewPool() *Pool {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return &Pool{NumWorkers: n}
}

func (p *Pool) RunParallel(begin, end int, init func(numThreads int) bool, task func(i, threadID int)) bool {
	n := end - begin
	if n <= 0 {
		if !init(1) {
			return false
		}
		return true
	}
	numThreads := p.NumWorkers
	if numThreads > n {
		numThreads = n
	}
	if numThreads < 1 {
		numThreads = 1
	}
	if !init(numThreads) {
		return false
	}

	g, _ := errgroup.WithContext(context.Background())
	chunk := (n + numThreads - 1) / numThreads
	for t := 0; t < numThreads; t++ {
		lo := begin + t*chunk
		hi := lo + chunk
		if lo >= end {
			break
		}
		if hi > end {
			hi = end
		}
		threadID := t
		lo, hi := lo, hi
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				task(i, threadID)
			}
			return nil
		})
	}
	_ = g.Wait() // task never returns an error; failures propagate via caller's own atomic flag
	return true
}

// Sequential runs every task on a single thread (threadID always 0), in
// index order. Used by the scheduler tests, where a deterministic
// single-thread run removes goroutine-scheduling order as a confound.
type Sequential struct{}

func (Sequential) RunParallel(begin, end int, init func(numThreads int) bool, task func(i, threadID int)) bool {
	if !init(1) {
		return false
	}
	for i := begin; i < end; i++ {
		task(i, 0)
	}
	return true
}
