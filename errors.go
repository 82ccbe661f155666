package framerecon

import (
	"errors"
	"fmt"

	"github.com/jxlrecon/framerecon/internal/colortransform"
	"github.com/jxlrecon/framerecon/internal/features"
)

// Errors returned by the reconstruction pipeline.
var (
	// ErrInvalidTargetEncoding re-exports the color transform package's
	// unrecognized-OutputEncoding error, since FinalizeImageRect's XYB step
	// surfaces it unchanged.
	ErrInvalidTargetEncoding = colortransform.ErrInvalidTargetEncoding

	// ErrSplineInconsistent re-exports the feature package's spline
	// validation error, since FinalizeImageRect surfaces it unchanged.
	ErrSplineInconsistent = features.ErrSplineInconsistent

	// ErrTileTaskFailed is returned by FinalizeFrameDecoding when one or
	// more tiles reported a failure. The individual tile errors are not
	// kept: each failing tile only sets a shared flag, so only the fact
	// of failure is reported here (spec: "the scheduler does not attempt
	// partial recovery; any tile error fails the whole frame").
	ErrTileTaskFailed = errors.New("framerecon: tile reconstruction failed")
)

// assertf panics if cond is false, formatting the same way as fmt.Sprintf.
// Used for contract violations the caller controls (rect alignment, rect
// sizing) rather than for runtime errors arising from frame content.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
