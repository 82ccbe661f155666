package colortransform

import (
	"math"
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

func TestXybKernelInvalidEncoding(t *testing.T) {
	img := planar.NewImage3F(4, 4)
	rect := planar.UnboundRect(0, 0, 4, 4)
	if err := XybKernel(img, rect, DefaultOpsinParams(), OutputEncoding(99)); err != ErrInvalidTargetEncoding {
		t.Fatalf("err = %v, want ErrInvalidTargetEncoding", err)
	}
}

// TestXybKernelMatchesDocumentedFormula checks the kernel implements the
// documented un-bias/cube/matrix steps exactly, for an arbitrary pixel.
func TestXybKernelMatchesDocumentedFormula(t *testing.T) {
	params := DefaultOpsinParams()
	x, y, b := float32(0.1), float32(0.3), float32(-0.05)

	img := planar.NewImage3F(1, 1)
	img.Plane(0).Set(0, 0, x)
	img.Plane(1).Set(0, 0, y)
	img.Plane(2).Set(0, 0, b)
	rect := planar.UnboundRect(0, 0, 1, 1)
	if err := XybKernel(img, rect, params, LinearSRGB); err != nil {
		t.Fatal(err)
	}

	wantR, wantG, wantB := xybToRGB(x, y, b, params.InverseMatrix, params.BiasCbrt, params.Bias)
	gotR := img.Plane(0).At(0, 0)
	gotG := img.Plane(1).At(0, 0)
	gotB := img.Plane(2).At(0, 0)
	if !within(gotR, wantR, 1e-6) || !within(gotG, wantG, 1e-6) || !within(gotB, wantB, 1e-6) {
		t.Fatalf("got (%v,%v,%v), want (%v,%v,%v)", gotR, gotG, gotB, wantR, wantG, wantB)
	}
}

// TestXybZeroChromaIsNeutralRG checks that X=0 (no opponent red-green
// signal) produces equal R and G, the half of "neutral gray" that does not
// depend on the B-channel's independent contribution.
func TestXybZeroChromaIsNeutralRG(t *testing.T) {
	params := DefaultOpsinParams()
	img := planar.NewImage3F(1, 1)
	img.Plane(0).Set(0, 0, 0)    // X = 0
	img.Plane(1).Set(0, 0, 0.25) // Y
	img.Plane(2).Set(0, 0, 0)    // B = 0
	rect := planar.UnboundRect(0, 0, 1, 1)
	if err := XybKernel(img, rect, params, LinearSRGB); err != nil {
		t.Fatal(err)
	}
	r := img.Plane(0).At(0, 0)
	g := img.Plane(1).At(0, 0)
	if !within(r, g, 1e-6) {
		t.Fatalf("R=%v G=%v, want equal for zero chroma input", r, g)
	}
}

func TestSRGBTransferFunctionBijection(t *testing.T) {
	for _, l := range []float32{0, 0.001, 0.0031308, 0.01, 0.25, 0.5, 1.0} {
		enc := srgbEncodedFromDisplay(l)
		back := srgbDisplayFromEncoded(enc)
		if !within(back, l, 1e-5) {
			t.Errorf("roundtrip(%v) = %v", l, back)
		}
	}
}

func TestYCbCrRoundTripIsIdentity(t *testing.T) {
	img := planar.NewImage3F(4, 4)
	want := make([][3]float32, 16)
	i := 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			r := float32(x) / 4
			g := float32(y) / 4
			b := float32((x + y) % 4) / 4
			img.Plane(0).Set(x, y, r)
			img.Plane(1).Set(x, y, g)
			img.Plane(2).Set(x, y, b)
			want[i] = [3]float32{r, g, b}
			i++
		}
	}
	rect := planar.UnboundRect(0, 0, 4, 4)
	RGBToYCbCr(img, rect)
	YCbCrToRGB(img, rect)

	i = 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			gotR := img.Plane(0).At(x, y)
			gotG := img.Plane(1).At(x, y)
			gotB := img.Plane(2).At(x, y)
			wr, wg, wb := want[i][0], want[i][1], want[i][2]
			if !within(gotR, wr, 1e-4) || !within(gotG, wg, 1e-4) || !within(gotB, wb, 1e-4) {
				t.Errorf("x=%d y=%d: got (%v,%v,%v) want (%v,%v,%v)", x, y, gotR, gotG, gotB, wr, wg, wb)
			}
			i++
		}
	}
}

func TestLaneWidthIsPositive(t *testing.T) {
	if LaneWidth <= 0 {
		t.Fatalf("LaneWidth = %d, want > 0", LaneWidth)
	}
}

func TestSRGBMonotonic(t *testing.T) {
	prev := float32(math.Inf(-1))
	for l := float32(0); l <= 1.0; l += 0.05 {
		v := srgbEncodedFromDisplay(l)
		if v < prev {
			t.Fatalf("sRGB OETF not monotonic at l=%v", l)
		}
		prev = v
	}
}
