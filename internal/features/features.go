// Package features implements the image-features overlay stage: patches
// (small reference-image copies blended onto the frame) and splines
// (parametric curves rasterized and painted with a color and width profile
// along their length).
//
// The blend arithmetic is grounded on the teacher's alpha compositing code
// (internal/dsp/alpha_proc.go): the same "scale by a coverage factor, add
// into the destination" shape, generalized here from 8-bit premultiplied
// ARGB to float32 planes and from a single alpha byte to a per-mode blend
// rule (replace, add, blend-with-coverage).
package features

import (
	"errors"

	"github.com/jxlrecon/framerecon/internal/filter"
	"github.com/jxlrecon/framerecon/planar"
)

// ErrSplineInconsistent is returned when a spline's control points fail the
// validity checks the rasterizer requires (fewer than 4 points, or a
// non-positive samples-per-segment count).
var ErrSplineInconsistent = errors.New("features: spline control points are inconsistent")

// BlendMode selects how a patch's reference pixels combine with the frame.
type BlendMode int

const (
	// BlendReplace overwrites the destination outright.
	BlendReplace BlendMode = iota
	// BlendAdd adds the reference pixel value to the destination.
	BlendAdd
	// BlendAbove alpha-composites the reference pixel over the destination
	// using the patch's per-pixel coverage (alpha) plane.
	BlendAbove
)

// Patch is a rectangular region of a reference image blended onto the frame
// at (DstX, DstY).
type Patch struct {
	Ref          *planar.Image3F
	RefRect      planar.Rect
	DstX, DstY   int
	Mode         BlendMode
	Alpha        *planar.Plane // coverage plane, only read when Mode == BlendAbove
}

// ApplyPatches blends every patch onto frame, clipping each patch's
// reference rect to the part that actually lands inside frame.
func ApplyPatches(frame *planar.Image3F, patches []Patch) {
	fw, fh := frame.Width(), frame.Height()
	for _, p := range patches {
		applyOne(frame, 0, fw, 0, fh, p)
	}
}

// ApplyPatchesInRect blends patches onto buf, given that patches carry
// frame-absolute destination coordinates but pixels are written at buf's own
// tileRect (tileRect.X0/Y0 is the rect's base within buf, which need not be
// (0,0): buf may be a tile-local scratch buffer or a full-frame buffer that
// this tile merely occupies a sub-rect of). Each patch is translated from
// frame-absolute coordinates into buf's coordinate system via tileRect's
// base and clipped to tileRect's bounds, so two tiles processing the same
// patch in parallel never write outside their own tile.
func ApplyPatchesInRect(buf *planar.Image3F, tileRect planar.Rect, originX, originY int, patches []Patch) {
	for _, p := range patches {
		local := p
		local.DstX = tileRect.X0 + (p.DstX - originX)
		local.DstY = tileRect.Y0 + (p.DstY - originY)
		applyOne(buf, tileRect.X0, tileRect.X1(), tileRect.Y0, tileRect.Y1(), local)
	}
}

func applyOne(frame *planar.Image3F, minX, maxX, minY, maxY int, p Patch) {
	w, h := p.RefRect.Width, p.RefRect.Height
	for y := 0; y < h; y++ {
		dstY := p.DstY + y
		if dstY < minY || dstY >= maxY {
			continue
		}
		refRow0 := planar.PlaneRow(p.Ref, 0, y, p.RefRect)
		refRow1 := planar.PlaneRow(p.Ref, 1, y, p.RefRect)
		refRow2 := planar.PlaneRow(p.Ref, 2, y, p.RefRect)
		var alphaRow []float32
		if p.Mode == BlendAbove && p.Alpha != nil {
			alphaRow = p.Alpha.Row(y)
		}
		dst0 := frame.Plane(0).Row(dstY)
		dst1 := frame.Plane(1).Row(dstY)
		dst2 := frame.Plane(2).Row(dstY)
		for x := 0; x < w; x++ {
			dstX := p.DstX + x
			if dstX < minX || dstX >= maxX {
				continue
			}
			switch p.Mode {
			case BlendReplace:
				dst0[dstX] = refRow0[x]
				dst1[dstX] = refRow1[x]
				dst2[dstX] = refRow2[x]
			case BlendAdd:
				dst0[dstX] += refRow0[x]
				dst1[dstX] += refRow1[x]
				dst2[dstX] += refRow2[x]
			case BlendAbove:
				a := float32(1)
				if alphaRow != nil {
					a = alphaRow[x]
				}
				dst0[dstX] = refRow0[x]*a + dst0[dstX]*(1-a)
				dst1[dstX] = refRow1[x]*a + dst1[dstX]*(1-a)
				dst2[dstX] = refRow2[x]*a + dst2[dstX]*(1-a)
			}
		}
	}
}

// CMapFactor returns the chroma-from-luma correlation multiplier cmap
// carries for the block covering frame-absolute pixel (absX, absY), at
// filter.BlockDim resolution and clamped to cmap's extent (the same
// out-of-range handling as filter.SigmaMap.at, since both are per-block maps
// addressed by absolute pixel position). A nil cmap (no correlation data
// decoded for this frame) is the identity factor 1.
func CMapFactor(cmap *planar.Plane, absX, absY int) float32 {
	if cmap == nil {
		return 1
	}
	bx := absX / filter.BlockDim
	by := absY / filter.BlockDim
	if bx < 0 {
		bx = 0
	} else if bx >= cmap.Width() {
		bx = cmap.Width() - 1
	}
	if by < 0 {
		by = 0
	} else if by >= cmap.Height() {
		by = cmap.Height() - 1
	}
	return cmap.At(bx, by)
}
