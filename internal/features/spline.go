package features

import "github.com/jxlrecon/framerecon/planar"

// ControlPoint is one knot of a spline, in frame pixel coordinates.
type ControlPoint struct {
	X, Y float32
}

// Spline is a parametric curve painted onto the frame with a per-channel
// color and a single width that is constant along its length.
type Spline struct {
	Points       []ControlPoint
	Color        [3]float32
	Width        float32
	SamplesPerSegment int // samples per control-point segment, evenly spaced in the curve parameter
}

// catmullRom evaluates the Catmull-Rom cubic through p1..p2 (with p0, p3 as
// the neighboring control points used to shape the tangents) at parameter
// t in [0,1].
func catmullRom(p0, p1, p2, p3 ControlPoint, t float32) ControlPoint {
	t2 := t * t
	t3 := t2 * t
	blend := func(v0, v1, v2, v3 float32) float32 {
		return 0.5 * ((2 * v1) +
			(-v0+v2)*t +
			(2*v0-5*v1+4*v2-v3)*t2 +
			(-v0+3*v1-3*v2+v3)*t3)
	}
	return ControlPoint{
		X: blend(p0.X, p1.X, p2.X, p3.X),
		Y: blend(p0.Y, p1.Y, p2.Y, p3.Y),
	}
}

// Rasterize walks the spline's Catmull-Rom curve and returns the sequence of
// points it passes through, at SamplesPerSegment samples per interior
// segment. It returns ErrSplineInconsistent if the spline has fewer than 4
// control points (Catmull-Rom needs a point before and after each
// interpolated segment) or a non-positive sample count.
func (s Spline) Rasterize() ([]ControlPoint, error) {
	if len(s.Points) < 4 {
		return nil, ErrSplineInconsistent
	}
	if s.SamplesPerSegment <= 0 {
		return nil, ErrSplineInconsistent
	}
	var out []ControlPoint
	n := len(s.Points)
	for i := 0; i < n-3; i++ {
		p0, p1, p2, p3 := s.Points[i], s.Points[i+1], s.Points[i+2], s.Points[i+3]
		for k := 0; k < s.SamplesPerSegment; k++ {
			t := float32(k) / float32(s.SamplesPerSegment)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	out = append(out, s.Points[n-2])
	return out, nil
}

// PaintSplines rasterizes every spline and paints its color into frame,
// covering a square of side Width (rounded to the nearest odd integer >= 1)
// centered on each rasterized point. Points (or their paint squares) outside
// frame's extent are silently clipped. cmap (may be nil) scales the chroma
// channels per CMapFactor for chroma-from-luma correlation.
func PaintSplines(frame *planar.Image3F, cmap *planar.Plane, splines []Spline) error {
	return paintSplines(frame, 0, frame.Width(), 0, frame.Height(), 0, 0, cmap, splines)
}

// PaintSplinesInRect is PaintSplines restricted to a tile: the splines'
// control points and cmap lookups are in frame-absolute coordinates, but
// pixels are written at buf's own tileRect (tileRect.X0/Y0 is the rect's base
// within buf, which need not be (0,0): buf may be a tile-local scratch
// buffer or a full-frame buffer that this tile merely occupies a sub-rect
// of). Painting is clipped to tileRect's bounds, so two tiles painting the
// same spline never write outside their own tile.
func PaintSplinesInRect(buf *planar.Image3F, tileRect planar.Rect, originX, originY int, cmap *planar.Plane, splines []Spline) error {
	return paintSplines(buf, tileRect.X0, tileRect.X1(), tileRect.Y0, tileRect.Y1(), tileRect.X0-originX, tileRect.Y0-originY, cmap, splines)
}

func paintSplines(buf *planar.Image3F, minX, maxX, minY, maxY, offsetX, offsetY int, cmap *planar.Plane, splines []Spline) error {
	for _, s := range splines {
		pts, err := s.Rasterize()
		if err != nil {
			return err
		}
		half := int(s.Width / 2)
		if half < 0 {
			half = 0
		}
		for _, pt := range pts {
			absX, absY := int(pt.X+0.5), int(pt.Y+0.5)
			cx, cy := absX+offsetX, absY+offsetY
			for dy := -half; dy <= half; dy++ {
				y := cy + dy
				if y < minY || y >= maxY {
					continue
				}
				for dx := -half; dx <= half; dx++ {
					x := cx + dx
					if x < minX || x >= maxX {
						continue
					}
					factor := CMapFactor(cmap, absX+dx, absY+dy)
					buf.Plane(0).Set(x, y, s.Color[0])
					buf.Plane(1).Set(x, y, s.Color[1]*factor)
					buf.Plane(2).Set(x, y, s.Color[2]*factor)
				}
			}
		}
	}
	return nil
}
