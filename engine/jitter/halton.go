// Package jitter generates the deterministic sub-pixel offsets used to jitter the
// camera projection between accumulated frames.
package jitter

import "fmt"

// Halton returns element index of the Halton (radical inverse) sequence in the given base.
// The result lies in [0, 1). Index 0 yields 0.
//
// base must be at least 2 and index must be non-negative; violating either is a
// programming error and panics.
//
// Parameters:
//   - base: the integer base of the digit reversal
//   - index: the position in the sequence
//
// Returns:
//   - float64: the radical inverse of index in base
func Halton(base, index int) float64 {
	if base < 2 {
		panic(fmt.Sprintf("jitter: halton base %d < 2", base))
	}
	if index < 0 {
		panic(fmt.Sprintf("jitter: negative halton index %d", index))
	}

	result := 0.0
	f := 1.0
	for index > 0 {
		f /= float64(base)
		result += f * float64(index%base)
		index /= base
	}
	return result
}

// Offset is a 2D sub-pixel offset in units of pixels, centred on zero.
type Offset struct {
	X, Y float32
}

// Generate builds length offsets from the Halton (2, 3) sequence, starting at index 1.
// Each component is mapped from [0, 1) to [-1, 1).
//
// Parameters:
//   - length: number of offsets to generate
//
// Returns:
//   - []Offset: the generated offsets in sequence order
func Generate(length int) []Offset {
	out := make([]Offset, length)
	for i := 1; i <= length; i++ {
		out[i-1] = Offset{
			X: float32((Halton(2, i) - 0.5) * 2),
			Y: float32((Halton(3, i) - 0.5) * 2),
		}
	}
	return out
}
