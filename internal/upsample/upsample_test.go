package upsample

import (
	"testing"

	"github.com/jxlrecon/framerecon/planar"
)

func within(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestUpsample2XPlaneUniformStaysUniform(t *testing.T) {
	src := planar.NewPlane(3, 3)
	for y := 0; y < 3; y++ {
		row := src.Row(y)
		for x := 0; x < 3; x++ {
			row[x] = 0.6
		}
	}
	dst := planar.NewPlane(6, 6)
	Upsample2XPlane(src, dst)
	for y := 0; y < 6; y++ {
		row := dst.Row(y)
		for x := 0; x < 6; x++ {
			if !within(row[x], 0.6, 1e-6) {
				t.Fatalf("(%d,%d) = %v, want 0.6", x, y, row[x])
			}
		}
	}
}

func TestUpsample2XPlaneNearTapDominates(t *testing.T) {
	// A single bright source pixel surrounded by zero: the near tap (this
	// pixel's own top-left output) should carry the heaviest weight
	// (9/16) and so be brighter than the far corner's contribution.
	src := planar.NewPlane(2, 2)
	src.Set(0, 0, 1.0)
	dst := planar.NewPlane(4, 4)
	Upsample2XPlane(src, dst)
	near := dst.At(0, 0)
	if !within(near, 9.0/16.0, 1e-6) {
		t.Fatalf("near tap = %v, want 9/16", near)
	}
}

func TestUpsampleImageFactor1IsCopy(t *testing.T) {
	src := planar.NewImage3F(2, 2)
	src.Plane(0).Set(1, 1, 0.33)
	dst := planar.NewImage3F(2, 2)
	scratch := planar.NewImage3F(1, 1)
	UpsampleImage(src, Factor1, dst, scratch)
	if dst.Plane(0).At(1, 1) != float32(0.33) {
		t.Fatalf("got %v, want 0.33", dst.Plane(0).At(1, 1))
	}
}

func TestUpsampleImageFactor4DoublesTwice(t *testing.T) {
	src := planar.NewImage3F(2, 2)
	for c := 0; c < 3; c++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				src.Plane(c).Set(x, y, 0.4)
			}
		}
	}
	dst := planar.NewImage3F(8, 8)
	scratch := planar.NewImage3F(4, 4)
	UpsampleImage(src, Factor4, dst, scratch)
	if dst.Width() != 8 || dst.Height() != 8 {
		t.Fatalf("dst size = %dx%d, want 8x8", dst.Width(), dst.Height())
	}
	if !within(dst.Plane(0).At(3, 3), 0.4, 1e-5) {
		t.Fatalf("got %v, want ~0.4", dst.Plane(0).At(3, 3))
	}
}

func TestUpsampleChroma444MatchesLumaResolution(t *testing.T) {
	src := &planar.Image3F{}
	src.Planes[0] = planar.NewPlane(8, 8)
	src.Planes[1] = planar.NewPlane(4, 4) // 4:2:0 chroma
	src.Planes[2] = planar.NewPlane(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Planes[1].Set(x, y, 0.5)
			src.Planes[2].Set(x, y, 0.25)
		}
	}
	out := planar.NewImage3F(8, 8)
	UpsampleChroma444(src, 2, 2, out)
	if out.Plane(1).Width() != 8 || out.Plane(1).Height() != 8 {
		t.Fatalf("chroma plane size = %dx%d, want 8x8", out.Plane(1).Width(), out.Plane(1).Height())
	}
	if !within(out.Plane(1).At(4, 4), 0.5, 1e-5) {
		t.Fatalf("upsampled Cb = %v, want ~0.5", out.Plane(1).At(4, 4))
	}
	if !within(out.Plane(2).At(4, 4), 0.25, 1e-5) {
		t.Fatalf("upsampled Cr = %v, want ~0.25", out.Plane(2).At(4, 4))
	}
}
