// Package colortransform implements the final color-space conversion stage:
// XYB -> linear sRGB or sRGB-encoded, and YCbCr -> RGB. The XYB kernel is
// exposed through a function-variable dispatch table, modeled on the
// teacher's internal/dsp SIMD-target dispatch (dsp.go's Init() installing
// pure-Go implementations, overridden per architecture in dsp_amd64.go):
// here the "targets" are lane widths rather than instruction sets, since
// this module does not ship hand-written assembly (see DESIGN.md).
package colortransform

import (
	"errors"
	"math"

	"github.com/jxlrecon/framerecon/planar"
)

// ErrInvalidTargetEncoding is returned when OutputEncoding names anything
// other than LinearSRGB or SRGB.
var ErrInvalidTargetEncoding = errors.New("colortransform: invalid target encoding")

// OutputEncoding selects the display encoding XYB is converted to.
type OutputEncoding int

const (
	LinearSRGB OutputEncoding = iota
	SRGB
)

// OpsinParams are the frame-level XYB -> linear-RGB mixing coefficients,
// decoded upstream and treated as opaque, read-only data here.
//
// The inverse transform undoes the forward opsin encode in two steps,
// matching libjxl's dec_xyb: first the LMS-like mix is recovered from the
// opponent (X,Y,B) triple and un-cube-rooted (the forward encode applies
// cbrt to absorb a perceptual gamma), then InverseMatrix maps LMS back to
// linear RGB. InverseMatrix's rows sum to the same constant (1.0 here),
// which is why scenario 2 (X=0, zero chroma) reconstructs to a neutral
// gray: L=M=S after un-biasing, and equal-row-sum mixing preserves that
// equality across R/G/B.
type OpsinParams struct {
	InverseMatrix [9]float32
	// Bias is the small positive absorbance floor the forward transform
	// subtracts before taking a cube root, preventing cbrt's slope from
	// blowing up near zero. BiasCbrt is its precomputed cube root.
	Bias     [3]float32
	BiasCbrt [3]float32
}

// DefaultOpsinParams returns a representative XYB inverse transform: an
// equal-row-sum LMS->RGB mix (so neutral XYB maps to neutral RGB) and the
// libjxl absorbance bias constant, used by tests and by callers with no
// frame-specific override.
func DefaultOpsinParams() OpsinParams {
	const bias = 0.0037930732552754493
	p := OpsinParams{
		InverseMatrix: [9]float32{
			0.9, 0.1, 0.0,
			0.1, 0.9, 0.0,
			-0.05, -0.05, 1.10,
		},
		Bias: [3]float32{bias, bias, bias},
	}
	for i := range p.Bias {
		p.BiasCbrt[i] = float32(math.Cbrt(float64(p.Bias[i])))
	}
	return p
}

// XybKernelFunc converts planes in rect from XYB to the given output
// encoding, in place.
type XybKernelFunc func(img *planar.Image3F, rect planar.Rect, params OpsinParams, enc OutputEncoding) error

// XybKernel is the dispatch slot. The package init installs the portable
// implementation; the architecture-specific files (dispatch_amd64.go,
// dispatch_arm64.go) do not replace it and only record LaneWidth.
var XybKernel XybKernelFunc

// LaneWidth records the platform's native float32 vector lane width (8 by
// default and on amd64, 4 on arm64). The portable kernel converts one pixel
// per loop step and does not read it.
var LaneWidth = 8

func init() {
	XybKernel = xybKernelPortable
}

func xybKernelPortable(img *planar.Image3F, rect planar.Rect, params OpsinParams, enc OutputEncoding) error {
	if enc != LinearSRGB && enc != SRGB {
		return ErrInvalidTargetEncoding
	}
	m := params.InverseMatrix
	for y := 0; y < rect.Height; y++ {
		row0 := planar.PlaneRow(img, 0, y, rect)
		row1 := planar.PlaneRow(img, 1, y, rect)
		row2 := planar.PlaneRow(img, 2, y, rect)
		for x := 0; x < rect.Width; x++ {
			xv := row0[x]
			yv := row1[x]
			bv := row2[x]
			r, g, b := xybToRGB(xv, yv, bv, m, params.BiasCbrt, params.Bias)
			if enc == SRGB {
				r = srgbEncodedFromDisplay(r)
				g = srgbEncodedFromDisplay(g)
				b = srgbEncodedFromDisplay(b)
			}
			row0[x], row1[x], row2[x] = r, g, b
		}
	}
	return nil
}

// xybToRGB undoes the opsin mix: recover the cube-rooted LMS-like triple
// from the opponent channels (L = Y+X, M = Y-X, S = Y+B), add back biasCbrt, cube to undo the forward
// transform's perceptual gamma, subtract bias, then apply the linear
// LMS->RGB matrix.
func xybToRGB(x, y, b float32, m [9]float32, biasCbrt, bias [3]float32) (r, g, bl float32) {
	lMix := y + x + biasCbrt[0]
	mMix := y - x + biasCbrt[1]
	sMix := y + b + biasCbrt[2]

	l := lMix*lMix*lMix - bias[0]
	mm := mMix*mMix*mMix - bias[1]
	s := sMix*sMix*sMix - bias[2]

	r = m[0]*l + m[1]*mm + m[2]*s
	g = m[3]*l + m[4]*mm + m[5]*s
	bl = m[6]*l + m[7]*mm + m[8]*s
	return
}

// srgbEncodedFromDisplay applies the sRGB OETF (display linear -> encoded),
// the float-domain analytic analogue of the teacher's table-driven
// sharpyuv/gamma.go fromLinearSrgb for 8/10/12-bit integers.
func srgbEncodedFromDisplay(linear float32) float32 {
	l := float64(linear)
	var v float64
	if l <= 0.0031308 {
		v = 12.92 * l
	} else {
		v = 1.055*math.Pow(l, 1.0/2.4) - 0.055
	}
	return float32(v)
}

// srgbDisplayFromEncoded applies the sRGB EOTF (encoded -> display linear),
// used only by the sRGB transfer-function roundtrip test to cross-check the
// OETF against its inverse.
func srgbDisplayFromEncoded(encoded float32) float32 {
	e := float64(encoded)
	var v float64
	if e <= 0.04045 {
		v = e / 12.92
	} else {
		v = math.Pow((e+0.055)/1.055, 2.4)
	}
	return float32(v)
}
