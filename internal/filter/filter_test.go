package filter

import (
	"testing"

	"github.com/jxlrecon/framerecon/planar"
)

func TestParamsPadding(t *testing.T) {
	cases := []struct {
		name string
		p    Params
		want int
	}{
		{"neither", Params{}, 0},
		{"gaborish only", Params{Gaborish: true}, 2},
		{"epf one iter", Params{EPFIterations: 1}, 2},
		{"epf two iters", Params{EPFIterations: 2}, 3},
		{"epf three iters", Params{EPFIterations: 3}, 3},
		{"epf two plus gaborish", Params{EPFIterations: 2, Gaborish: true}, 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.p.Padding(); got != c.want {
				t.Errorf("Padding() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestParamsEnabled(t *testing.T) {
	if (Params{}).Enabled() {
		t.Fatal("zero Params should be disabled")
	}
	if !(Params{Gaborish: true}).Enabled() {
		t.Fatal("gaborish-only Params should be enabled")
	}
	if !(Params{EPFIterations: 1}).Enabled() {
		t.Fatal("epf Params should be enabled")
	}
}

func TestSigmaMapFillAndClamp(t *testing.T) {
	s := NewSigmaMap(2, 2) // covers a 16x16 pixel area
	s.Fill(0.5)
	if got := s.at(0, 0); got != 0.5 {
		t.Fatalf("at(0,0) = %v, want 0.5", got)
	}
	s.Set(1, 1, 1.25)
	if got := s.at(15, 15); got != 1.25 {
		t.Fatalf("at(15,15) = %v, want 1.25", got)
	}
	// Out-of-range absolute coordinates clamp to the nearest block rather
	// than panicking, since EPF's first pass queries sigma at positions
	// that reach past the frame edge.
	if got := s.at(-3, -3); got != 0.5 {
		t.Fatalf("at(-3,-3) = %v, want clamped 0.5", got)
	}
	if got := s.at(1000, 1000); got != 1.25 {
		t.Fatalf("at(1000,1000) = %v, want clamped 1.25", got)
	}
}

func TestGlobalSigmaValue(t *testing.T) {
	got := GlobalSigmaValue(0.8)
	want := float32(1.6 / 0.8)
	if got != want {
		t.Fatalf("GlobalSigmaValue(0.8) = %v, want %v", got, want)
	}
}

// fillConst fills every plane of img with v.
func fillConst(img *planar.Image3F, w, h int, v float32) {
	for c := 0; c < 3; c++ {
		for y := 0; y < h; y++ {
			row := img.Plane(c).Row(y)
			for x := 0; x < w; x++ {
				row[x] = v
			}
		}
	}
}

func TestRunEPFUniformInputStaysUniform(t *testing.T) {
	// A uniform field has zero distance between every tap and its center,
	// so every tap weight is exp(0)=1 regardless of sigma; the weighted
	// average of identical values equals that value.
	for _, iters := range []int{1, 2, 3} {
		border := Params{EPFIterations: iters}.Padding()
		w, h := 8, 8
		srcW, srcH := w+2*border, h+2*border
		src := planar.NewImage3F(srcW, srcH)
		fillConst(src, srcW, srcH, 0.75)
		srcRect := planar.UnboundRect(border, border, w, h)

		dst := planar.NewImage3F(w, h)
		dstRect := planar.UnboundRect(0, 0, w, h)
		ping := planar.NewImage3F(w, h)

		sigma := NewSigmaMap(1, 1)
		sigma.Fill(1.0)

		RunEPF(Params{EPFIterations: iters}, src, srcRect, dst, dstRect, sigma, ping)

		for c := 0; c < 3; c++ {
			for y := 0; y < h; y++ {
				row := dst.Plane(c).Row(y)
				for x := 0; x < w; x++ {
					if row[x] != 0.75 {
						t.Fatalf("iters=%d c=%d (%d,%d) = %v, want 0.75", iters, c, x, y, row[x])
					}
				}
			}
		}
	}
}

func TestRunEPFZeroSigmaIsIdentity(t *testing.T) {
	w, h, border := 4, 4, 2
	srcW, srcH := w+2*border, h+2*border
	src := planar.NewImage3F(srcW, srcH)
	i := float32(0)
	for c := 0; c < 3; c++ {
		for y := 0; y < srcH; y++ {
			row := src.Plane(c).Row(y)
			for x := 0; x < srcW; x++ {
				row[x] = i
				i++
			}
		}
	}
	srcRect := planar.UnboundRect(border, border, w, h)
	dst := planar.NewImage3F(w, h)
	dstRect := planar.UnboundRect(0, 0, w, h)
	ping := planar.NewImage3F(w, h)

	sigma := NewSigmaMap(1, 1)
	sigma.Fill(0) // sigma <= 0 means "copy center, no smoothing"

	RunEPF(Params{EPFIterations: 2}, src, srcRect, dst, dstRect, sigma, ping)

	for y := 0; y < h; y++ {
		srcRow := planar.PlaneRow(src, 0, y, srcRect)
		dstRow := dst.Plane(0).Row(y)
		for x := 0; x < w; x++ {
			if dstRow[x] != srcRow[x] {
				t.Fatalf("(%d,%d) = %v, want copy of center %v", x, y, dstRow[x], srcRow[x])
			}
		}
	}
}

func TestRunEPFZeroIterationsNoop(t *testing.T) {
	w, h := 4, 4
	dst := planar.NewImage3F(w, h)
	fillConst(dst, w, h, 9)
	src := planar.NewImage3F(w, h)
	dstRect := planar.UnboundRect(0, 0, w, h)
	sigma := NewSigmaMap(1, 1)
	ping := planar.NewImage3F(1, 1)
	RunEPF(Params{EPFIterations: 0}, src, dstRect, dst, dstRect, sigma, ping)
	if dst.Plane(0).At(0, 0) != 9 {
		t.Fatal("zero iterations must not touch dst")
	}
}

func TestGaborishUniformInputStaysUniform(t *testing.T) {
	w, h := 6, 6
	src := planar.NewImage3F(w+2, h+2)
	fillConst(src, w+2, h+2, 0.4)
	srcRect := planar.UnboundRect(1, 1, w, h)
	dst := planar.NewImage3F(w, h)
	dstRect := planar.UnboundRect(0, 0, w, h)

	Gaborish(0.5, src, srcRect, dst, dstRect)

	for y := 0; y < h; y++ {
		row := dst.Plane(0).Row(y)
		for x := 0; x < w; x++ {
			if diff := row[x] - 0.4; diff > 1e-5 || diff < -1e-5 {
				t.Fatalf("(%d,%d) = %v, want ~0.4", x, y, row[x])
			}
		}
	}
}

func TestGaborishPreservesImpulseSign(t *testing.T) {
	w, h := 5, 5
	src := planar.NewImage3F(w+2, h+2)
	srcRect := planar.UnboundRect(1, 1, w, h)
	// Single bright impulse at the tile center.
	src.Plane(1).Set(1+2, 1+2, 1.0)
	dst := planar.NewImage3F(w, h)
	dstRect := planar.UnboundRect(0, 0, w, h)

	Gaborish(0.5, src, srcRect, dst, dstRect)

	center := dst.Plane(1).At(2, 2)
	corner := dst.Plane(1).At(0, 0)
	if center <= 0 {
		t.Fatalf("center = %v, want > 0 (smoothed impulse still positive at its origin)", center)
	}
	if corner != 0 {
		t.Fatalf("corner = %v, want 0 (impulse does not reach 2 pixels away)", corner)
	}
}
