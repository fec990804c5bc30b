// Package pcm converts Context stream buffers to and from go-audio PCM buffers.
//
// Stream buffers hold normalized float32 samples in either interleaved or
// planar layout; go-audio buffers are always interleaved. A Converter keeps
// its scratch space between calls so steady-state conversion does not
// allocate.
package pcm

import (
	"github.com/go-audio/audio"

	"github.com/tphakala/go-audio-rebuffer/internal/frames"
	"github.com/tphakala/go-audio-rebuffer/internal/simdops"
)

// Sample format constants
const (
	monoChannels   = 1
	stereoChannels = 2

	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// MaxValue returns the full-scale integer value for a PCM bit depth.
// Unknown depths are treated as 16-bit.
func MaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// Converter moves samples between stream buffers and go-audio buffers.
type Converter struct {
	bitDepth int
	maxVal   float64
	ops      *simdops.Ops[float32]

	interleaved []float32
	scaled      []float32
}

// NewConverter creates a Converter for bitDepth-bit PCM.
func NewConverter(bitDepth int) *Converter {
	return &Converter{
		bitDepth: bitDepth,
		maxVal:   MaxValue(bitDepth),
		ops:      simdops.Float32Ops(),
	}
}

// BitDepth returns the PCM bit depth of the Converter.
func (c *Converter) BitDepth() int {
	return c.bitDepth
}

// Interleave returns the first nFrames frames of data in interleaved layout.
// Planar data must be a whole stream buffer, since its length sets the channel
// stride. Interleaved input is returned as is; planar input is copied into
// scratch space owned by the Converter, valid until the next call.
func (c *Converter) Interleave(data []float32, channels, nFrames int, interleaved bool) []float32 {
	n := channels * nFrames
	if n == 0 || interleaved || channels == monoChannels {
		return data[:n]
	}

	c.interleaved = grow(c.interleaved, n)
	dst := c.interleaved[:n]

	if channels == stereoChannels {
		total := len(data) / stereoChannels
		c.ops.Interleave2(dst, data[:nFrames], data[total:total+nFrames])
		return dst
	}

	total := len(data) / channels
	for f := range nFrames {
		base := f * channels
		for ch := range channels {
			dst[base+ch] = data[frames.Index(false, f, ch, channels, total)]
		}
	}
	return dst
}

// ToInt writes nFrames frames of data into dst as interleaved integer PCM,
// rounding to nearest and clipping to full scale. dst.Data is resized to fit.
func (c *Converter) ToInt(dst *audio.IntBuffer, data []float32, channels, nFrames int, interleaved bool) {
	src := c.Interleave(data, channels, nFrames, interleaved)
	n := len(src)

	c.scaled = grow(c.scaled, n)
	scaled := c.scaled[:n]
	c.ops.Scale(scaled, src, float32(c.maxVal))

	if cap(dst.Data) < n {
		dst.Data = make([]int, n)
	}
	dst.Data = dst.Data[:n]
	dst.SourceBitDepth = c.bitDepth

	limit := float32(c.maxVal)
	for i, v := range scaled {
		switch {
		case v > limit:
			v = limit
		case v < -limit:
			v = -limit
		}
		if v < 0 {
			dst.Data[i] = int(v - 0.5)
		} else {
			dst.Data[i] = int(v + 0.5)
		}
	}
}

// FromInt reads nFrames frames of interleaved integer PCM from src into dst,
// a stream buffer holding totalFrames frames of channels channels in the given
// layout. Missing source samples are written as silence.
func (c *Converter) FromInt(dst []float32, src *audio.IntBuffer, channels, nFrames, totalFrames int, interleaved bool) {
	inv := 1.0 / c.maxVal
	for f := range nFrames {
		for ch := range channels {
			var v float32
			if i := f*channels + ch; i < len(src.Data) {
				v = float32(float64(src.Data[i]) * inv)
			}
			dst[frames.Index(interleaved, f, ch, channels, totalFrames)] = v
		}
	}
}

func grow(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
