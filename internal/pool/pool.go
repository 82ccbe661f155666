// Package pool manages the per-thread scratch buffers the reconstruction
// pipeline reuses across tiles. It is modeled on the teacher's bucketed
// sync.Pool allocator, repurposed here for a small fixed number of
// per-thread Image3F scratch slots rather than size-classed byte buffers:
// the number of threads is known once at EnsureStorage time and scratch is
// reused by thread_id for the lifetime of the decoder state, so a generic
// sync.Pool (which recycles by type, not by owner) would not preserve the
// "same thread_id reuses the same buffer" invariant the scheduler depends
// on for correctness (spec: "no two threads ever touch the same scratch
// buffer simultaneously").
package pool

import "github.com/jxlrecon/framerecon/planar"

// ThreadScratch holds the two reusable planar images a single worker thread
// needs across the tiles it is assigned: one for loop-filter input padding,
// one for upsampler input padding. Both are lazily sized on first use.
type ThreadScratch struct {
	FilterInput      planar.Image3F
	UpsamplingInput  planar.Image3F
}

// Slots is the per-thread scratch registry owned by the decoder state.
type Slots struct {
	scratch []ThreadScratch
}

// EnsureStorage grows the registry to hold numThreads slots. Existing slots
// (and their already-sized scratch planes) are preserved; new slots start
// as 1x1 placeholder images, grown lazily by the first EnsureSize or
// EnsurePadding call that needs them.
func (s *Slots) EnsureStorage(numThreads int) {
	if len(s.scratch) >= numThreads {
		return
	}
	grown := make([]ThreadScratch, numThreads)
	copy(grown, s.scratch)
	for i := len(s.scratch); i < numThreads; i++ {
		grown[i] = ThreadScratch{
			FilterInput:     *planar.NewImage3F(1, 1),
			UpsamplingInput: *planar.NewImage3F(1, 1),
		}
	}
	s.scratch = grown
}

// Len reports how many thread slots are currently allocated.
func (s *Slots) Len() int { return len(s.scratch) }

// FilterInput returns the filter-input scratch image for the given thread.
func (s *Slots) FilterInput(thread int) *planar.Image3F { return &s.scratch[thread].FilterInput }

// UpsamplingInput returns the upsampling-input scratch image for the given thread.
func (s *Slots) UpsamplingInput(thread int) *planar.Image3F {
	return &s.scratch[thread].UpsamplingInput
}
