package framerecon

import "github.com/jxlrecon/framerecon/planar"

// Blender is the hand-off point to the out-of-scope animation-blending
// subsystem: FinalizeFrameDecoding calls it once, after every tile has
// completed and the output image has been shrunk to its final extent,
// unless the caller asked to skip blending entirely.
type Blender interface {
	DoBlending(state *DecoderState, decoded *planar.Image3F) error
}

// NopBlender implements Blender as the identity: it leaves decoded
// untouched. FinalizeFrameDecoding(skipBlending=true) and
// FinalizeFrameDecoding(skipBlending=false, NopBlender{}) are therefore
// equivalent, the only blending behavior this module can specify without
// the excluded subsystem (spec §8, idempotence of skip-blending).
type NopBlender struct{}

func (NopBlender) DoBlending(*DecoderState, *planar.Image3F) error { return nil }
