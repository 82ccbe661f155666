package framerecon

import "github.com/jxlrecon/framerecon/internal/filter"

// Normative pipeline constants (spec §6).
const (
	// B is the DCT block dimension; tile left edges in pre-upsample
	// coordinates must land on a B-aligned column.
	B = filter.BlockDim
	// G is the group dimension at which coefficients are transmitted
	// upstream; the modular/rerender tile-scheduler case enqueues G×G
	// tiles.
	G = 256
	// ApplyImageFeaturesTileDim is the seam-reprocessing tile width used by
	// tile-scheduler case A.
	ApplyImageFeaturesTileDim = 64
)

func roundUp(v, to int) int {
	if to <= 0 {
		return v
	}
	return (v + to - 1) / to * to
}

// FrameDimensions describes one frame's extent in every coordinate system
// the pipeline touches.
type FrameDimensions struct {
	XSize, YSize                   int
	XSizePadded, YSizePadded       int
	XSizeUpsampled, YSizeUpsampled int
	XSizeGroups, YSizeGroups       int
}

// NewFrameDimensions derives padded, upsampled and group counts from the
// frame's nominal size and upsampling factor.
func NewFrameDimensions(xsize, ysize, upsampling int) FrameDimensions {
	xp := roundUp(xsize, B)
	yp := roundUp(ysize, B)
	return FrameDimensions{
		XSize: xsize, YSize: ysize,
		XSizePadded: xp, YSizePadded: yp,
		XSizeUpsampled: xsize * upsampling, YSizeUpsampled: ysize * upsampling,
		XSizeGroups: roundUp(xp, G) / G, YSizeGroups: roundUp(yp, G) / G,
	}
}

// ChromaSubsampling carries the per-channel horizontal/vertical subsampling
// shift (in {0,1,2}); channel 0 (luma) is always {0,0}.
type ChromaSubsampling struct {
	HShift, VShift [3]int
}

// Subsampled reports whether any channel is subsampled relative to luma.
func (c ChromaSubsampling) Subsampled() bool {
	for i := 1; i < 3; i++ {
		if c.HShift[i] != 0 || c.VShift[i] != 0 {
			return true
		}
	}
	return false
}

// ColorTransform selects the final color-space conversion.
type ColorTransform int

const (
	ColorTransformXYB ColorTransform = iota
	ColorTransformYCbCr
	ColorTransformNone
)

// Encoding names the upstream coefficient encoding, which the tile
// scheduler needs to pick its seam-vs-whole-frame strategy.
type Encoding int

const (
	EncodingVarDCT Encoding = iota
	EncodingModular
)

// Flags is the frame header's boolean bitset.
type Flags uint32

// FlagNoise, when set, enables the noise stage.
const FlagNoise Flags = 1 << 0

// FrameHeader is the frame's immutable reconstruction parameters.
type FrameHeader struct {
	Dims              FrameDimensions
	Upsampling        int
	ChromaSubsampling ChromaSubsampling
	LoopFilter        filter.Params
	ColorTransform    ColorTransform
	Encoding          Encoding
	Flags             Flags
	// FinalizePadding is the per-group border the upstream per-group
	// reconstruction already produced correctly; tile-scheduler case A only
	// applies when this is nonzero (seams-only reprocessing is valid).
	FinalizePadding int
}

// NeedsColorTransform reports whether the color transform stage does any
// work for this frame.
func (h FrameHeader) NeedsColorTransform() bool { return h.ColorTransform != ColorTransformNone }

// HasNoise reports whether the noise stage is enabled.
func (h FrameHeader) HasNoise() bool { return h.Flags&FlagNoise != 0 }
