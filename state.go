package framerecon

import (
	"github.com/jxlrecon/framerecon/internal/colortransform"
	"github.com/jxlrecon/framerecon/internal/features"
	"github.com/jxlrecon/framerecon/internal/filter"
	"github.com/jxlrecon/framerecon/internal/pool"
	"github.com/jxlrecon/framerecon/planar"
)

// ImageFeatures bundles the decoded, read-only side data the image-features
// and noise stages draw on for one frame.
type ImageFeatures struct {
	Patches []features.Patch
	Splines []features.Spline
	// NoiseStrength is the per-channel noise amplitude; the noise stage is
	// skipped entirely when FrameHeader.HasNoise() is false regardless of
	// these values.
	NoiseStrength [3]float32
	// CMap is the chroma-from-luma correlation map consumed by splines and
	// noise (spec: "a per-block multiplier used by splines, noise and color
	// transforms"); nil when the frame carries no correlation data.
	CMap *planar.Plane
}

// DecoderState is the read-mostly aggregate every tile task borrows: the
// frame header, image features, color-transform parameters and the
// per-thread scratch registry. Tile tasks index into Scratch by thread_id
// rather than holding a reference, matching the "pass (state, thread_id)
// explicitly" guidance the teacher's lifetime model follows for its own
// shared decoder context.
type DecoderState struct {
	Header         FrameHeader
	Features       ImageFeatures
	OpsinParams    colortransform.OpsinParams
	OutputEncoding colortransform.OutputEncoding
	Scratch        pool.Slots

	// SigmaMap is the per-block EPF sigma map. Nil is valid and means "use
	// a single global sigma derived from LoopFilter.EPFSigmaForModular"
	// (the Modular-encoding case, spec §4.8 case C).
	SigmaMap *filter.SigmaMap

	// PreColorTransformFrame, when non-nil, receives a verbatim copy of
	// every tile's pixels immediately before the color transform stage.
	PreColorTransformFrame *planar.Image3F
}

// sigmaMapOrGlobal returns the state's per-block sigma map, or a 1x1 map
// filled with the global Modular-path sigma value when none was supplied.
func (s *DecoderState) sigmaMapOrGlobal() *filter.SigmaMap {
	if s.SigmaMap != nil {
		return s.SigmaMap
	}
	m := filter.NewSigmaMap(1, 1)
	m.Fill(filter.GlobalSigmaValue(s.Header.LoopFilter.EPFSigmaForModular))
	return m
}
