// Package noise implements synthetic grain injection: a deterministic,
// per-pixel-keyed pseudo-random value added to each channel before the
// color transform, scaled by a frame-level strength.
//
// The generator is Knuth's lagged-Fibonacci difference generator, the same
// one the teacher uses for RGB->YUV dithering (internal/dsp/random.go),
// reused verbatim for its table and difference recurrence. Ordinary
// dithering runs the generator as a single advancing stream; noise
// injection instead needs the value at pixel (x, y, channel) to be
// reproducible independent of scan order (tiles are reconstructed out of
// order across goroutines), so this package reseeds index1/index2 from a
// hash of (x, y, channel) and takes a fixed number of warm-up steps before
// reading a value, rather than keeping one running stream (see DESIGN.md,
// Open Question: noise keying).
package noise

const (
	ditherFix = 8
	tableSize = 55
	// warmupSteps decorrelates the two lagged-Fibonacci taps before the
	// first value is read; fewer steps and index1/index2 starting close
	// together (a risk when the hash below clusters) would leak visible
	// structure into the grain.
	warmupSteps = 4
)

var kRandomTable = [tableSize]uint32{
	0x0de15230, 0x03b31886, 0x775faccb, 0x1c88626a, 0x68385c55, 0x14b3b828,
	0x4a85fef8, 0x49ddb84b, 0x64fcf397, 0x5c550289, 0x4a290000, 0x0d7ec1da,
	0x5940b7ab, 0x5492577d, 0x4e19ca72, 0x38d38c69, 0x0c01ee65, 0x32a1755f,
	0x5437f652, 0x5abb2c32, 0x0faa57b1, 0x73f533e7, 0x685feeda, 0x7563cce2,
	0x6e990e83, 0x4730a7ed, 0x4fc0d9c6, 0x496b153c, 0x4f1403fa, 0x541afb0c,
	0x73990b32, 0x26d7cb1c, 0x6fcc3706, 0x2cbb77d8, 0x75762f2a, 0x6425ccdd,
	0x24b35461, 0x0a7d8715, 0x220414a8, 0x141ebf67, 0x56b41583, 0x73e502e3,
	0x44cab16f, 0x28264d42, 0x73baaefb, 0x0a50ebed, 0x1d6ab6fb, 0x0d3ad40b,
	0x35db3b68, 0x2b081e83, 0x77ce6b95, 0x5181e5f0, 0x78853bbc, 0x009f9494,
	0x27e5ed3c,
}

// generator is one lagged-Fibonacci stream instance, local to a single
// ValueAt call so concurrent tile workers never share mutable state.
type generator struct {
	tab            [tableSize]uint32
	index1, index2 int
}

func seed(x, y, channel int) generator {
	g := generator{tab: kRandomTable}
	h := hash64(x, y, channel)
	g.index1 = int(h % tableSize)
	g.index2 = int((h / tableSize) % tableSize)
	if g.index1 == g.index2 {
		g.index2 = (g.index2 + 1) % tableSize
	}
	for i := 0; i < warmupSteps; i++ {
		g.next()
	}
	return g
}

func hash64(x, y, channel int) uint64 {
	h := uint64(1469598103934665603) // FNV offset basis
	for _, v := range [3]int{x, y, channel} {
		h ^= uint64(uint32(v))
		h *= 1099511628211 // FNV prime
	}
	return h
}

// next advances the stream one step and returns the raw 31-bit difference
// value, matching the teacher's VP8Random recurrence.
func (g *generator) next() uint32 {
	diff := int64(g.tab[g.index1]) - int64(g.tab[g.index2])
	if diff < 0 {
		diff += 1 << 31
	}
	g.tab[g.index1] = uint32(diff)
	g.index1++
	if g.index1 == tableSize {
		g.index1 = 0
	}
	g.index2++
	if g.index2 == tableSize {
		g.index2 = 0
	}
	return uint32(diff)
}

// bits returns a signed, 0-centered value with numBits of amplitude scaled
// by amp (a ditherFix-point fraction in [0, 1<<ditherFix]), mirroring the
// teacher's RandomBits2.
func (g *generator) bits(numBits, amp int) int {
	diff := g.next()
	signed := int(int32(diff<<1)) >> (32 - numBits)
	signed = (signed * amp) >> ditherFix
	return signed
}

// ValueAt returns the deterministic grain value for pixel (x, y) of the
// given channel, in [-strength, strength], independent of the order this
// function is called across pixels or goroutines.
func ValueAt(x, y, channel int, strength float32) float32 {
	if strength <= 0 {
		return 0
	}
	g := seed(x, y, channel)
	const numBits = 12
	amp := 1 << ditherFix
	raw := g.bits(numBits, amp)
	half := float32(int(1) << (numBits - 1))
	return (float32(raw) / half) * strength
}

// Inject adds ValueAt(x, y, channel, strength) to every pixel of the given
// plane, for the channel index used to key the generator.
func Inject(plane interface {
	Width() int
	Height() int
	At(x, y int) float32
	Set(x, y int, v float32)
}, channel int, strength float32) {
	if strength <= 0 {
		return
	}
	w, h := plane.Width(), plane.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			plane.Set(x, y, plane.At(x, y)+ValueAt(x, y, channel, strength))
		}
	}
}
