package planar

import "testing"

func TestPlaneRowPadding(t *testing.T) {
	p := NewPlane(5, 2)
	for x := 0; x < 5; x++ {
		p.Set(x, 0, float32(x+1))
	}
	p.InitializePaddingForUnalignedAccesses()
	row := p.Row(0)
	if len(row) != 5+PaddingCols {
		t.Fatalf("row length = %d, want %d", len(row), 5+PaddingCols)
	}
	for i := 5; i < len(row); i++ {
		if row[i] != 5 {
			t.Errorf("padding col %d = %v, want replicated last column 5", i, row[i])
		}
	}
}

func TestImage3FShrinkAndEnsureSize(t *testing.T) {
	im := NewImage3F(16, 16)
	im.ShrinkTo(8, 8)
	if im.Width() != 8 || im.Height() != 8 {
		t.Fatalf("after ShrinkTo: %dx%d", im.Width(), im.Height())
	}
	im.EnsureSize(12, 12)
	if im.Width() != 12 || im.Height() != 12 {
		t.Fatalf("after EnsureSize growing within capacity: %dx%d", im.Width(), im.Height())
	}
	im.EnsureSize(64, 64)
	if im.Width() != 64 || im.Height() != 64 {
		t.Fatalf("after EnsureSize beyond capacity: %dx%d", im.Width(), im.Height())
	}
}

func TestRectIntersect(t *testing.T) {
	a := UnboundRect(0, 0, 10, 10)
	b := UnboundRect(5, 5, 10, 10)
	got := a.Intersect(b)
	if got.X0 != 5 || got.Y0 != 5 || got.Width != 5 || got.Height != 5 {
		t.Fatalf("Intersect = %+v", got)
	}
	c := UnboundRect(20, 20, 1, 1)
	if empty := a.Intersect(c); !empty.Empty() {
		t.Fatalf("expected empty intersection, got %+v", empty)
	}
}
