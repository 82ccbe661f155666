package planar

// Mirror reflects an out-of-range index i back into [0, n), applying the
// reflection iteratively if |i| exceeds n. This is the mirror-padding
// policy every stage's border synthesis relies on:
//
//	i < 0      -> -i - 1
//	0 <= i < n -> i
//	n <= i     -> 2n - i - 1
func Mirror(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		} else {
			i = 2*n - i - 1
		}
	}
	return i
}

// EnsurePadding produces a logical window of src:srcRect with at least
// xpadding/ypadding pixels of border on every side, using storage as
// scratch only when src does not already carry enough native border.
//
// xborder is the minimum horizontal border guaranteed in the output when a
// copy does happen, and must be >= xpadding so that stages which later
// widen their input (e.g. the loop filter's block-alignment extension) find
// enough slack without another copy.
//
// Returns the image to read from and the rectangle within it corresponding
// to srcRect.
func EnsurePadding(src *Image3F, srcRect Rect, storage *Image3F, xpadding, ypadding, xborder int) (*Image3F, Rect) {
	if xborder < xpadding {
		panic("planar: EnsurePadding: xborder < xpadding")
	}
	if srcRect.X0 >= xborder &&
		srcRect.X0+srcRect.Width+xborder <= src.Width() &&
		srcRect.Y0 >= ypadding &&
		srcRect.Y0+srcRect.Height+ypadding <= src.Height() {
		// Enough native border already: no copy.
		return src, srcRect
	}

	outRect := UnboundRect(xborder, ypadding, srcRect.Width, srcRect.Height)
	storage.EnsureSize(outRect.X0+outRect.Width+xborder, outRect.Y0+outRect.Height+ypadding)

	srcXStart := srcRect.X0 - xpadding
	srcXEnd := srcRect.X0 + srcRect.Width + xpadding
	storageXStart := outRect.X0 - xpadding
	n := src.Width()

	singleStep := srcXStart+n >= 0 && srcXEnd <= 2*n

	for c := 0; c < 3; c++ {
		srcPlane := src.Plane(c)
		dstPlane := storage.Plane(c)
		y0 := srcRect.Y0 - ypadding
		y1 := srcRect.Y0 + srcRect.Height + ypadding

		if singleStep {
			for y := y0; y < y1; y++ {
				rowOut := dstPlane.Row(y + outRect.Y0 - srcRect.Y0)
				rowIn := srcPlane.Row(Mirror(y, src.Height()))

				x := srcXStart
				for ; x < 0; x++ {
					rowOut[x-srcXStart+storageXStart] = rowIn[-x-1]
				}
				numDirect := srcXEnd
				if n < numDirect {
					numDirect = n
				}
				numDirect -= x
				copy(rowOut[x-srcXStart+storageXStart:x-srcXStart+storageXStart+numDirect], rowIn[x:x+numDirect])
				x += numDirect
				for ; x < srcXEnd; x++ {
					rowOut[x-srcXStart+storageXStart] = rowIn[2*n-x-1]
				}
			}
		} else {
			for y := y0; y < y1; y++ {
				rowOut := dstPlane.Row(y + outRect.Y0 - srcRect.Y0)
				rowIn := srcPlane.Row(Mirror(y, src.Height()))
				for x := srcXStart; x < srcXEnd; x++ {
					rowOut[x-srcXStart+storageXStart] = rowIn[Mirror(x, n)]
				}
			}
		}
	}

	return storage, outRect
}
