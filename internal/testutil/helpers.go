// Package testutil provides reusable test helpers for rebuffering tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-6
	PCM16Tolerance   = 1.0 / 32767
)

// Ramp returns n samples counting up from start in steps of 1.
func Ramp(n int, start float32) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = start + float32(i)
	}
	return s
}

// Words returns n words counting up from start.
func Words(n int, start uint32) []uint32 {
	s := make([]uint32, n)
	for i := range s {
		s[i] = start + uint32(i)
	}
	return s
}

// Interleave converts a planar buffer of frames frames into interleaved layout.
func Interleave(planar []float32, channels, frames int) []float32 {
	out := make([]float32, len(planar))
	for c := range channels {
		for f := range frames {
			out[f*channels+c] = planar[c*frames+f]
		}
	}
	return out
}

// ConcatPlanar joins planar blocks along the frame axis. Every block must hold
// blockFrames frames of channels channels.
func ConcatPlanar(blocks [][]float32, channels, blockFrames int) []float32 {
	total := blockFrames * len(blocks)
	out := make([]float32, total*channels)
	for b, block := range blocks {
		for c := range channels {
			copy(out[c*total+b*blockFrames:c*total+(b+1)*blockFrames], block[c*blockFrames:(c+1)*blockFrames])
		}
	}
	return out
}

// ConcatInterleaved joins interleaved blocks along the frame axis.
func ConcatInterleaved(blocks [][]float32) []float32 {
	var out []float32
	for _, block := range blocks {
		out = append(out, block...)
	}
	return out
}

// AssertBitEqual verifies that two sample slices are identical bit for bit.
func AssertBitEqual(t *testing.T, expected, actual []float32, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if math.Float32bits(expected[i]) != math.Float32bits(actual[i]) {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}
