package parallel

import (
	"sync/atomic"
	"testing"
)

func TestSequentialRunsAllIndicesInOrder(t *testing.T) {
	var seen []int
	var s Sequential
	ok := s.RunParallel(0, 5, func(int) bool { return true }, func(i, tid int) {
		if tid != 0 {
			t.Errorf("expected threadID 0, got %d", tid)
		}
		seen = append(seen, i)
	})
	if !ok {
		t.Fatal("RunParallel returned false")
	}
	want := []int{0, 1, 2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestSequentialInitFailureAborts(t *testing.T) {
	var s Sequential
	ran := false
	ok := s.RunParallel(0, 5, func(int) bool { return false }, func(i, tid int) { ran = true })
	if ok {
		t.Fatal("expected RunParallel to report failure when init fails")
	}
	if ran {
		t.Fatal("task should not run when init fails")
	}
}

func TestPoolVisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 237
	var counts [n]atomic.Int32
	p := &Pool{NumWorkers: 8}
	ok := p.RunParallel(0, n, func(int) bool { return true }, func(i, tid int) {
		counts[i].Add(1)
	})
	if !ok {
		t.Fatal("RunParallel returned false")
	}
	for i, c := range counts {
		if c.Load() != 1 {
			t.Errorf("index %d visited %d times, want 1", i, c.Load())
		}
	}
}

func TestPoolThreadIDWithinRange(t *testing.T) {
	p := &Pool{NumWorkers: 4}
	var bad atomic.Bool
	p.RunParallel(0, 40, func(numThreads int) bool {
		if numThreads > 4 {
			bad.Store(true)
		}
		return true
	}, func(i, tid int) {
		if tid < 0 || tid >= 4 {
			bad.Store(true)
		}
	})
	if bad.Load() {
		t.Fatal("saw a threadID or numThreads outside the declared bound")
	}
}
