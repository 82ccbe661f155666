package colortransform

import "github.com/jxlrecon/framerecon/planar"

// YCbCr <-> RGB conversion using BT.601 luma coefficients, the same
// standard the teacher's internal/dsp/yuv.go hard-codes as 16-bit
// fixed-point constants (kYScale, kRCr, kGCb, kGCr, kBCb) for 8-bit limited-
// range YUV. This module's pixels are full-range float32 in [0,1], so the
// coefficients are rederived directly from Kr/Kb rather than reused
// verbatim: reusing the teacher's limited-range fixed-point values without
// undoing their built-in 16-235 range compensation would break the
// roundtrip-bijection property (spec §8).
const (
	kr = 0.299
	kb = 0.114
	kg = 1 - kr - kb

	rCr = 2 * (1 - kr)       // R = Y + rCr*Cr
	bCb = 2 * (1 - kb)       // B = Y + bCb*Cb
	gCb = bCb * kb / kg      // G -= gCb*Cb
	gCr = rCr * kr / kg      // G -= gCr*Cr
)

// YCbCrToRGB converts planes in rect from YCbCr (plane 0 = Y, 1 = Cb, 2 = Cr,
// all nominally in [0,1] with Cb/Cr centered at 0.5) to RGB, in place.
func YCbCrToRGB(img *planar.Image3F, rect planar.Rect) {
	for y := 0; y < rect.Height; y++ {
		rowY := planar.PlaneRow(img, 0, y, rect)
		rowCb := planar.PlaneRow(img, 1, y, rect)
		rowCr := planar.PlaneRow(img, 2, y, rect)
		for x := 0; x < rect.Width; x++ {
			yy := rowY[x]
			cb := rowCb[x] - 0.5
			cr := rowCr[x] - 0.5
			rowY[x] = yy + rCr*cr
			rowCb[x] = yy - gCb*cb - gCr*cr
			rowCr[x] = yy + bCb*cb
		}
	}
}

// RGBToYCbCr is the forward transform, provided only so the bijection
// property (spec §8: YCbCr -> RGB -> YCbCr is the identity within rounding)
// has an inverse to test against; the reconstruction pipeline itself never
// calls it.
func RGBToYCbCr(img *planar.Image3F, rect planar.Rect) {
	for y := 0; y < rect.Height; y++ {
		rowR := planar.PlaneRow(img, 0, y, rect)
		rowG := planar.PlaneRow(img, 1, y, rect)
		rowB := planar.PlaneRow(img, 2, y, rect)
		for x := 0; x < rect.Width; x++ {
			r := rowR[x]
			g := rowG[x]
			b := rowB[x]
			yy := kr*r + kg*g + kb*b
			cb := (b-yy)/bCb + 0.5
			cr := (r-yy)/rCr + 0.5
			rowR[x], rowG[x], rowB[x] = yy, cb, cr
		}
	}
}
