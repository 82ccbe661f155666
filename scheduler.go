package framerecon

import (
	"sync/atomic"

	"github.com/jxlrecon/framerecon/internal/parallel"
	"github.com/jxlrecon/framerecon/internal/upsample"
	"github.com/jxlrecon/framerecon/planar"
)

// buildSeamTiles enqueues only the strips that straddle a group boundary
// (tile-scheduler case A): horizontal seams first, each chunked into
// ApplyImageFeaturesTileDim-wide strips, then vertical seams, chunked the
// same way vertically and trimmed to avoid the rows a horizontal seam
// already covers.
func buildSeamTiles(dims FrameDimensions, padX, padY int) []planar.Rect {
	w, h := dims.XSizePadded, dims.YSizePadded
	gx, gy := dims.XSizeGroups, dims.YSizeGroups
	var tiles []planar.Rect

	for g := 0; g < gy-1; g++ {
		seamY := (g+1)*G - padY
		tileH := 2 * padY
		for x := 0; x < w; x += ApplyImageFeaturesTileDim {
			tw := ApplyImageFeaturesTileDim
			if x+tw > w {
				tw = w - x
			}
			tiles = append(tiles, planar.NewRect(x, seamY, tw, tileH, w, h))
		}
	}

	for g := 0; g < gx-1; g++ {
		// A tile's left edge must land on a B-aligned column (spec §3
		// invariant), but the raw seam span [center-padX, center+padX) need
		// not; round outward to the enclosing block boundary.
		center := (g + 1) * G
		rawX0, rawX1 := center-padX, center+padX
		seamX := (rawX0 / B) * B
		tileW := ((rawX1+B-1)/B)*B - seamX
		for gr := 0; gr < gy; gr++ {
			groupTop := gr * G
			groupBottom := min(h, (gr+1)*G)
			if groupBottom-groupTop < tileW+B {
				// Group is too narrow along this seam to carry its own
				// tile; it is covered whole by its neighbor's processing.
				continue
			}
			startY := groupTop
			if gr > 0 {
				startY = groupTop + padY
			}
			endY := groupBottom
			if gr < gy-1 {
				endY = groupBottom - padY
			}
			for y := startY; y < endY; y += ApplyImageFeaturesTileDim {
				th := min(ApplyImageFeaturesTileDim, endY-y)
				tiles = append(tiles, planar.NewRect(seamX, y, tileW, th, w, h))
			}
		}
	}
	return tiles
}

// buildWholeFrameTiles enqueues every G x G tile covering the frame
// (tile-scheduler case C).
func buildWholeFrameTiles(dims FrameDimensions) []planar.Rect {
	w, h := dims.XSizePadded, dims.YSizePadded
	var tiles []planar.Rect
	for y := 0; y < h; y += G {
		th := G
		if y+th > h {
			th = h - y
		}
		for x := 0; x < w; x += G {
			tw := G
			if x+tw > w {
				tw = w - x
			}
			tiles = append(tiles, planar.NewRect(x, y, tw, th, w, h))
		}
	}
	return tiles
}

// FinalizeFrameDecoding plans the tiles this frame needs, runs
// FinalizeImageRect for each one through runner, then shrinks and blends
// the result. rerender forces whole-frame reprocessing even when the
// seams-only optimization (case A) would otherwise apply; skipBlending
// bypasses the blender call entirely.
//
// As in spec.md (§1 scope, §9 design notes), this module does not itself
// perform per-group reconstruction: case A's seam-only tile set assumes an
// upstream, out-of-scope decoder already finalized every group's interior
// pixels (filter, features, upsample, noise, color transform included) with
// group-local borders, and only the seam strips need correcting. A caller
// exercising case A gets back a freshly allocated image in which only the
// seam region is written and every other pixel is zero; the finalized group
// interiors are not copied from input -- this mirrors spec.md's own scope
// boundary rather than silently promoting to whole-frame tiles.
func FinalizeFrameDecoding(input *planar.Image3F, state *DecoderState, runner parallel.Runner, rerender, skipBlending bool, blender Blender) (*planar.Image3F, error) {
	if blender == nil {
		blender = NopBlender{}
	}
	dims := state.Header.Dims
	up := state.Header.Upsampling

	workingInput := input
	if state.Header.ChromaSubsampling.Subsampled() {
		full := planar.NewImage3F(dims.XSizePadded, dims.YSizePadded)
		hFactor := 1 << state.Header.ChromaSubsampling.HShift[1]
		vFactor := 1 << state.Header.ChromaSubsampling.VShift[1]
		upsample.UpsampleChroma444(input, hFactor, vFactor, full)
		workingInput = full
	}

	var tiles []planar.Rect
	caseA := state.Header.Encoding == EncodingVarDCT &&
		!state.Header.ChromaSubsampling.Subsampled() &&
		!rerender &&
		state.Header.FinalizePadding != 0
	caseC := state.Header.Encoding == EncodingModular ||
		state.Header.ChromaSubsampling.Subsampled() ||
		rerender
	if caseA {
		tiles = append(tiles, buildSeamTiles(dims, state.Header.FinalizePadding, state.Header.FinalizePadding)...)
	}
	if caseC {
		tiles = append(tiles, buildWholeFrameTiles(dims)...)
	}

	outputWorking := planar.NewImage3F(dims.XSizePadded*up, dims.YSizePadded*up)
	if state.PreColorTransformFrame != nil {
		state.PreColorTransformFrame.EnsureSize(dims.XSizePadded*up, dims.YSizePadded*up)
	}

	var failed atomic.Bool
	ok := runner.RunParallel(0, len(tiles), func(numThreads int) bool {
		state.Scratch.EnsureStorage(numThreads)
		return true
	}, func(i, threadID int) {
		tileRect := tiles[i]
		outRect := tileRect.Scaled(up)
		if err := FinalizeImageRect(workingInput, tileRect, state, threadID, outputWorking, outRect); err != nil {
			failed.Store(true)
		}
	})
	if !ok || failed.Load() {
		return nil, ErrTileTaskFailed
	}

	outputWorking.ShrinkTo(dims.XSizeUpsampled, dims.YSizeUpsampled)
	if state.PreColorTransformFrame != nil {
		state.PreColorTransformFrame.ShrinkTo(dims.XSizeUpsampled, dims.YSizeUpsampled)
	}

	if !skipBlending {
		if err := blender.DoBlending(state, outputWorking); err != nil {
			return nil, err
		}
	}
	return outputWorking, nil
}
