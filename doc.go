// Package framerecon reconstructs a decoded JPEG XL frame from its decoded
// coefficient/pixel data plus the side information carried in the frame
// header: loop filtering, patches, splines, chroma/spatial upsampling,
// noise synthesis and the final color transform to a display encoding.
//
// The entry points mirror the teacher module's top-level webp.go: a state
// type bundling the frame's static parameters and per-thread scratch
// (DecoderState), a per-tile worker (FinalizeImageRect) and a whole-frame
// driver that tiles the frame and fans the per-tile work out across a
// parallel.Runner (FinalizeFrameDecoding).
package framerecon
