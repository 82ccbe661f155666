//go:build arm64

package colortransform

// NEON operates on 128-bit registers, i.e. 4 float32 lanes; record that as
// the native width on this architecture, mirroring dsp_arm64.go's separate
// (narrower) dispatch from the amd64/AVX2 path in the teacher.
func init() {
	LaneWidth = 4
}
