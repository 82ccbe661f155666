package planar

// AlignFloats is the number of float32 lanes row strides are rounded up to,
// mirroring the teacher's BPS stride constant but sized for vectorized
// float32 access rather than byte macroblocks.
const AlignFloats = 8

// PaddingCols is the number of extra initialized columns kept past the
// logical width of every row, so a lane-width vector load that overruns the
// last logical column still reads initialized (if meaningless) data.
const PaddingCols = AlignFloats

// Plane is a single-channel 2-D grid of float32 pixels with a stride-padded
// row layout.
type Plane struct {
	data   []float32
	w, h   int
	stride int
}

// NewPlane allocates a plane of the given logical size.
func NewPlane(w, h int) *Plane {
	stride := roundUp(w, AlignFloats) + PaddingCols
	return &Plane{
		data:   make([]float32, stride*h),
		w:      w,
		h:      h,
		stride: stride,
	}
}

func roundUp(v, to int) int {
	if to <= 0 {
		return v
	}
	return (v + to - 1) / to * to
}

func (p *Plane) Width() int  { return p.w }
func (p *Plane) Height() int { return p.h }
func (p *Plane) Stride() int { return p.stride }

// Row returns the writable slice for logical row y, with PaddingCols extra
// initialized entries available past Width().
func (p *Plane) Row(y int) []float32 {
	off := y * p.stride
	return p.data[off : off+p.w+PaddingCols]
}

// At returns the pixel at (x, y).
func (p *Plane) At(x, y int) float32 { return p.data[y*p.stride+x] }

// Set writes the pixel at (x, y).
func (p *Plane) Set(x, y int, v float32) { p.data[y*p.stride+x] = v }

// ShrinkTo reduces the plane's logical extent in place, without
// reallocating. Used after tiled reconstruction completes to trim the
// padded working size down to xsize_upsampled x ysize_upsampled.
func (p *Plane) ShrinkTo(w, h int) {
	if w > p.w || h > p.h {
		panic("planar: ShrinkTo must not grow a plane")
	}
	p.w, p.h = w, h
}

// InitializePaddingForUnalignedAccesses fills the PaddingCols tail of every
// row by replicating the last logical column, so SIMD-width loads that walk
// past Width() during upsampling read a deterministic value instead of
// whatever was left over from a previous tile's use of this scratch buffer.
func (p *Plane) InitializePaddingForUnalignedAccesses() {
	for y := 0; y < p.h; y++ {
		row := p.Row(y)
		last := row[p.w-1]
		for x := p.w; x < len(row); x++ {
			row[x] = last
		}
	}
}

// Image3F is a triple of float32 planes, indexed 0/1/2.
type Image3F struct {
	Planes [3]*Plane
}

// NewImage3F allocates a 3-plane image of the given logical size.
func NewImage3F(w, h int) *Image3F {
	return &Image3F{Planes: [3]*Plane{NewPlane(w, h), NewPlane(w, h), NewPlane(w, h)}}
}

func (im *Image3F) Width() int  { return im.Planes[0].Width() }
func (im *Image3F) Height() int { return im.Planes[0].Height() }

// Plane returns the c'th channel plane.
func (im *Image3F) Plane(c int) *Plane { return im.Planes[c] }

// ShrinkTo reduces every plane's logical extent in place.
func (im *Image3F) ShrinkTo(w, h int) {
	for c := range im.Planes {
		im.Planes[c].ShrinkTo(w, h)
	}
}

// EnsureSize grows the image's backing storage if it is smaller than
// w x h, reallocating all three planes; otherwise the existing allocation,
// possibly larger, is kept as scratch for reuse across tiles assigned to
// the same thread, and only the logical extent is set to w x h.
func (im *Image3F) EnsureSize(w, h int) {
	if p := im.Planes[0]; p != nil && p.stride >= roundUp(w, AlignFloats)+PaddingCols && len(p.data) >= p.stride*h {
		for c := range im.Planes {
			im.Planes[c].w, im.Planes[c].h = w, h
		}
		return
	}
	for c := range im.Planes {
		im.Planes[c] = NewPlane(w, h)
	}
}

// PlaneRow returns the row slice of channel c, row y, within rect r's
// coordinate offset applied (r.Y0+y absolute row, starting at column r.X0).
func PlaneRow(im *Image3F, c, y int, r Rect) []float32 {
	row := im.Planes[c].Row(r.Y0 + y)
	return row[r.X0:]
}
