// Package planar implements the planar float-image data model shared by
// every stage of the frame reconstruction pipeline: a three-channel grid of
// float32 pixels, rectangles into it, and the mirror-pad helper that
// synthesizes border pixels for stages that read a neighborhood larger than
// their output tile.
package planar

import "fmt"

// Rect is an axis-aligned pixel rectangle, optionally bounded by the extent
// of the image it indexes into. ParentW/ParentH are zero for rectangles not
// yet attached to an image (e.g. freshly computed target rects); attaching
// happens by construction via NewRect.
type Rect struct {
	X0, Y0        int
	Width, Height int
	ParentW       int
	ParentH       int
}

// NewRect builds a rectangle bound to an image of size parentW x parentH.
// It panics if the rectangle does not fit, since out-of-bounds rectangle
// construction is a contract violation (spec: "out-of-bounds access is a
// contract violation").
func NewRect(x0, y0, width, height, parentW, parentH int) Rect {
	r := Rect{X0: x0, Y0: y0, Width: width, Height: height, ParentW: parentW, ParentH: parentH}
	if x0 < 0 || y0 < 0 || width < 0 || height < 0 {
		panic(fmt.Sprintf("planar: negative rect %+v", r))
	}
	if x0+width > parentW || y0+height > parentH {
		panic(fmt.Sprintf("planar: rect %+v exceeds parent %dx%d", r, parentW, parentH))
	}
	return r
}

// UnboundRect builds a rectangle with no parent-extent bound. Used for
// scratch-storage rectangles where the "parent" is a private buffer whose
// size is tracked separately.
func UnboundRect(x0, y0, width, height int) Rect {
	return Rect{X0: x0, Y0: y0, Width: width, Height: height}
}

func (r Rect) X1() int { return r.X0 + r.Width }
func (r Rect) Y1() int { return r.Y0 + r.Height }

// BlockAligned reports whether X0 is a multiple of b (the block granularity,
// B=8 for this pipeline).
func (r Rect) BlockAligned(b int) bool { return r.X0%b == 0 }

// Scaled returns the rectangle scaled by factor, as happens when mapping a
// pre-upsample rect into post-upsample coordinates.
func (r Rect) Scaled(factor int) Rect {
	return Rect{
		X0: r.X0 * factor, Y0: r.Y0 * factor,
		Width: r.Width * factor, Height: r.Height * factor,
		ParentW: r.ParentW * factor, ParentH: r.ParentH * factor,
	}
}

// Intersect returns the intersection of r and o, in r's coordinate space.
// Both rects must describe the same coordinate system (e.g. both are
// sub-rects of the same image); the returned rect carries r's parent extent.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X0, o.X0)
	y0 := max(r.Y0, o.Y0)
	x1 := min(r.X1(), o.X1())
	y1 := min(r.Y1(), o.Y1())
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X0: x0, Y0: y0, Width: x1 - x0, Height: y1 - y0, ParentW: r.ParentW, ParentH: r.ParentH}
}

func (r Rect) Empty() bool { return r.Width == 0 || r.Height == 0 }

// SameSize reports whether two rects have equal width and height.
func SameSize(a, b Rect) bool { return a.Width == b.Width && a.Height == b.Height }
