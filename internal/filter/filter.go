// Package filter implements the loop-filter stage: up to three iterations
// of the edge-preserving filter (EPF) followed by the gaborish separable
// smoothing filter. Both read a padded neighborhood and write a smaller
// output tile.
//
// The EPF kernel is modeled on the teacher's VP8 in-loop deblocking filter
// (internal/dsp/filter.go): a small neighborhood of taps gated by a
// threshold, generalized here from byte macroblock edges to a per-pixel
// float-plane neighborhood weighted by a per-block sigma map instead of a
// fixed scalar threshold.
package filter

import (
	"math"

	"github.com/jxlrecon/framerecon/planar"
)

const BlockDim = 8

// Params mirrors the frame header's loop_filter record.
type Params struct {
	EPFIterations  int // 0..3
	Gaborish       bool
	GaborishWeight float32
	// EPFSigmaForModular is the single global sigma used when Modular
	// encoding supplies no per-block sigma map (the decoder state then
	// builds a 1x1 SigmaMap filled with kInvSigmaNum / EPFSigmaForModular).
	EPFSigmaForModular float32
}

// Padding returns lf_padding: 0 if neither EPF nor gaborish run, 2 if only
// one of them runs, 3 if EPF runs 2 or 3 iterations. Only the first EPF
// iteration (or gaborish, if EPF is disabled) reads outside the tile;
// subsequent EPF iterations operate on the already-produced tile-sized
// buffer with edge-clamped taps, so the border requirement does not grow
// past 3 regardless of iteration count.
func (p Params) Padding() int {
	switch {
	case p.EPFIterations == 0 && !p.Gaborish:
		return 0
	case p.EPFIterations >= 2:
		return 3
	default:
		return 2
	}
}

// Enabled reports whether this stage does any work at all.
func (p Params) Enabled() bool { return p.EPFIterations > 0 || p.Gaborish }

// SigmaMap is the per-block EPF sigma map, at 1/BlockDim resolution of the
// frame.
type SigmaMap struct {
	plane *planar.Plane
}

func NewSigmaMap(blocksW, blocksH int) *SigmaMap {
	return &SigmaMap{plane: planar.NewPlane(blocksW, blocksH)}
}

func (s *SigmaMap) Fill(v float32) {
	for y := 0; y < s.plane.Height(); y++ {
		row := s.plane.Row(y)
		for x := 0; x < s.plane.Width(); x++ {
			row[x] = v
		}
	}
}

func (s *SigmaMap) Set(blockX, blockY int, v float32) { s.plane.Set(blockX, blockY, v) }

// at returns the sigma value covering absolute pixel (absX, absY), clamping
// to the sigma map's extent for pixels outside it (e.g. taps that reach
// past the frame edge during EPF's first iteration).
func (s *SigmaMap) at(absX, absY int) float32 {
	bx := absX / BlockDim
	by := absY / BlockDim
	if bx < 0 {
		bx = 0
	} else if bx >= s.plane.Width() {
		bx = s.plane.Width() - 1
	}
	if by < 0 {
		by = 0
	} else if by >= s.plane.Height() {
		by = s.plane.Height() - 1
	}
	return s.plane.At(bx, by)
}

// kInvSigmaNum is the numerator used to derive a single global sigma for
// Modular-encoded frames (spec: "fill the sigma map with
// kInvSigmaNum / epf_sigma_for_modular").
const kInvSigmaNum = 1.6

// GlobalSigmaValue computes the fill value used for SigmaMap.Fill in the
// Modular, no-per-block-sigma case.
func GlobalSigmaValue(epfSigmaForModular float32) float32 {
	return kInvSigmaNum / epfSigmaForModular
}

type tap struct{ dx, dy int }

var crossTaps = []tap{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var crossAndDiagTaps = []tap{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// epfFirstPass runs one EPF pass reading from src and writing dstRect-sized
// output. srcRect has dstRect's size and marks the pixels that correspond
// to dstRect (srcRect's (X0, Y0) pixel is the centre of dstRect's first
// output pixel); src must carry genuine neighborhood data around srcRect
// on every side, at least one pixel deep for the cross taps. Absolute plane
// coordinates are used throughout rather than planar.PlaneRow's
// rect-relative slicing, since a tap one step left of a tile's first column
// needs to address the column just before srcRect.X0 -- outside the slice
// planar.PlaneRow would hand back.
func epfFirstPass(src *planar.Image3F, srcRect planar.Rect, border int, dst *planar.Image3F, dstRect planar.Rect, sigma *SigmaMap, diag bool) {
	taps := crossTaps
	if diag {
		taps = crossAndDiagTaps
	}
	w, h := dstRect.Width, dstRect.Height
	for c := 0; c < 3; c++ {
		plane := src.Plane(c)
		for y := 0; y < h; y++ {
			absY := srcRect.Y0 + y
			centerRow := plane.Row(absY)
			dstRow := planar.PlaneRow(dst, c, y, dstRect)
			for x := 0; x < w; x++ {
				absX := srcRect.X0 + x
				sigmaVal := sigma.at(dstRect.X0+x, dstRect.Y0+y)
				center := centerRow[absX]
				if sigmaVal <= 0 {
					dstRow[x] = center
					continue
				}
				sum := center
				weightSum := float32(1.0)
				for _, t := range taps {
					nv := plane.Row(absY + t.dy)[absX+t.dx]
					dist := float32(math.Abs(float64(nv - center)))
					wgt := float32(math.Exp(-float64(dist / sigmaVal)))
					sum += nv * wgt
					weightSum += wgt
				}
				dstRow[x] = sum / weightSum
			}
		}
	}
}

// epfClampedPass runs one EPF iteration entirely within a tile-sized buffer,
// with no native border: taps that fall outside [0,w)x[0,h) are clamped to
// the nearest edge pixel (edge replication) rather than read from outside
// the buffer.
func epfClampedPass(src *planar.Image3F, srcRect planar.Rect, dst *planar.Image3F, dstRect planar.Rect, sigma *SigmaMap, diag bool) {
	taps := crossTaps
	if diag {
		taps = crossAndDiagTaps
	}
	w, h := dstRect.Width, dstRect.Height
	clampX := func(x int) int {
		if x < 0 {
			return 0
		}
		if x >= w {
			return w - 1
		}
		return x
	}
	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= h {
			return h - 1
		}
		return y
	}
	for c := 0; c < 3; c++ {
		for y := 0; y < h; y++ {
			centerRow := planar.PlaneRow(src, c, y, srcRect)
			dstRow := planar.PlaneRow(dst, c, y, dstRect)
			for x := 0; x < w; x++ {
				sigmaVal := sigma.at(dstRect.X0+x, dstRect.Y0+y)
				center := centerRow[x]
				if sigmaVal <= 0 {
					dstRow[x] = center
					continue
				}
				sum := center
				weightSum := float32(1.0)
				for _, t := range taps {
					row := planar.PlaneRow(src, c, clampY(y+t.dy), srcRect)
					nv := row[clampX(x+t.dx)]
					dist := float32(math.Abs(float64(nv - center)))
					wgt := float32(math.Exp(-float64(dist / sigmaVal)))
					sum += nv * wgt
					weightSum += wgt
				}
				dstRow[x] = sum / weightSum
			}
		}
	}
}

// RunEPF applies p.EPFIterations passes of the edge-preserving filter.
// srcRect has dstRect's size and marks the source pixels that correspond
// to dstRect; src must carry p.Padding() pixels of genuine neighborhood
// data around srcRect on every side (as planar.EnsurePadding provides).
// dst/dstRect describe the final
// tile-sized output; ping is scratch used as the ping-pong buffer between
// iterations when EPFIterations > 1, resized as needed.
func RunEPF(p Params, src *planar.Image3F, srcRect planar.Rect, dst *planar.Image3F, dstRect planar.Rect, sigma *SigmaMap, ping *planar.Image3F) {
	if p.EPFIterations == 0 {
		return
	}
	w, h := dstRect.Width, dstRect.Height
	border := p.Padding()

	epfFirstPass(src, srcRect, border, dst, dstRect, sigma, false)
	if p.EPFIterations == 1 {
		return
	}

	ping.EnsureSize(w, h)
	pingRect := planar.UnboundRect(0, 0, w, h)
	cur, curRect := dst, dstRect
	for iter := 1; iter < p.EPFIterations; iter++ {
		out, outRect := ping, pingRect
		if iter%2 == 0 {
			out, outRect = dst, dstRect
		}
		epfClampedPass(cur, curRect, out, outRect, sigma, true)
		cur, curRect = out, outRect
	}
	if cur != dst {
		CopyRect(cur, curRect, dst, dstRect)
	}
}

// CopyRect copies src:srcRect into dst:dstRect, both the same size.
func CopyRect(src *planar.Image3F, srcRect planar.Rect, dst *planar.Image3F, dstRect planar.Rect) {
	for c := 0; c < 3; c++ {
		for y := 0; y < dstRect.Height; y++ {
			srcRow := planar.PlaneRow(src, c, y, srcRect)
			dstRow := planar.PlaneRow(dst, c, y, dstRect)
			copy(dstRow[:dstRect.Width], srcRow[:dstRect.Width])
		}
	}
}

// Gaborish applies the fixed separable 3x3 smoothing kernel
// [1, weight, 1] (x) [1, weight, 1], normalized to unit gain. srcRect has
// dstRect's size and marks the source pixels that correspond to dstRect;
// src must carry 1 pixel of genuine neighborhood data around srcRect on
// every side.
func Gaborish(weight float32, src *planar.Image3F, srcRect planar.Rect, dst *planar.Image3F, dstRect planar.Rect) {
	norm := float32(1.0) / ((2 + weight) * (2 + weight))
	w, h := dstRect.Width, dstRect.Height
	for c := 0; c < 3; c++ {
		plane := src.Plane(c)
		for y := 0; y < h; y++ {
			absY := srcRect.Y0 + y
			rowM1 := plane.Row(absY - 1)
			row0 := plane.Row(absY)
			rowP1 := plane.Row(absY + 1)
			dstRow := planar.PlaneRow(dst, c, y, dstRect)
			h3 := func(row []float32, absX int) float32 {
				return row[absX-1] + weight*row[absX] + row[absX+1]
			}
			for x := 0; x < w; x++ {
				absX := srcRect.X0 + x
				dstRow[x] = (h3(rowM1, absX) + weight*h3(row0, absX) + h3(rowP1, absX)) * norm
			}
		}
	}
}
