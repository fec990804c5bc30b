package rebuffer

import (
	"math"
)

// Flags describes properties shared by every buffer in a Context.
type Flags uint32

const (
	// FlagInterleaved stores samples frame-major: [frame][channel].
	// Without it, buffers are planar: [channel][frame].
	FlagInterleaved Flags = 1 << iota
)

// Context holds one callback's worth of multi-stream sample data.
//
// Each stream buffer holds Frames*Channels samples of its stream and is owned
// by the Context. The digital stream is bit-packed with one word per frame.
type Context struct {
	AudioIn  []float32
	AudioOut []float32

	AnalogIn  []float32
	AnalogOut []float32

	Digital []uint32

	AudioFrames      int
	AudioInChannels  int
	AudioOutChannels int
	AudioSampleRate  float32

	AnalogFrames      int
	AnalogInChannels  int
	AnalogOutChannels int
	AnalogSampleRate  float32

	DigitalFrames   int
	DigitalChannels int

	// FramesElapsed is the number of audio frames the pipeline had processed
	// when the data in this Context begins.
	FramesElapsed uint64

	Flags Flags
}

// Interleaved reports whether the Context buffers use interleaved layout.
func (c *Context) Interleaved() bool {
	return c.Flags&FlagInterleaved != 0
}

// Allocate allocates every stream buffer from the frame and channel counts
// already set on c. Existing buffers are dropped.
func (c *Context) Allocate() {
	c.AudioIn = make([]float32, c.AudioFrames*c.AudioInChannels)
	c.AudioOut = make([]float32, c.AudioFrames*c.AudioOutChannels)
	c.AnalogIn = make([]float32, c.AnalogFrames*c.AnalogInChannels)
	c.AnalogOut = make([]float32, c.AnalogFrames*c.AnalogOutChannels)
	c.Digital = make([]uint32, c.DigitalFrames)
}

// CopyTo copies metadata and buffer contents of c into dst. dst receives
// freshly allocated buffers, so nothing is shared with c afterwards.
func (c *Context) CopyTo(dst *Context) {
	*dst = *c
	dst.Allocate()
	copy(dst.AudioIn, c.AudioIn)
	copy(dst.AudioOut, c.AudioOut)
	copy(dst.AnalogIn, c.AnalogIn)
	copy(dst.AnalogOut, c.AnalogOut)
	copy(dst.Digital, c.Digital)
}

// Clone returns a deep copy of c.
func (c *Context) Clone() *Context {
	dst := &Context{}
	c.CopyTo(dst)
	return dst
}

// Equal reports whether c and other carry the same metadata and the same
// samples. FramesElapsed is a running position rather than content, so it is
// ignored. Samples are compared bit for bit over their declared extents.
func (c *Context) Equal(other *Context) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.shape() != other.shape() {
		return false
	}

	return floatsEqual(c.AudioIn, other.AudioIn, c.AudioFrames*c.AudioInChannels) &&
		floatsEqual(c.AudioOut, other.AudioOut, c.AudioFrames*c.AudioOutChannels) &&
		floatsEqual(c.AnalogIn, other.AnalogIn, c.AnalogFrames*c.AnalogInChannels) &&
		floatsEqual(c.AnalogOut, other.AnalogOut, c.AnalogFrames*c.AnalogOutChannels) &&
		wordsEqual(c.Digital, other.Digital, c.DigitalFrames)
}

// contextShape is the comparable metadata of a Context.
type contextShape struct {
	audioFrames, audioIn, audioOut    int
	analogFrames, analogIn, analogOut int
	digitalFrames, digitalChannels    int
	audioRate, analogRate             uint32
	flags                             Flags
}

func (c *Context) shape() contextShape {
	return contextShape{
		audioFrames:     c.AudioFrames,
		audioIn:         c.AudioInChannels,
		audioOut:        c.AudioOutChannels,
		analogFrames:    c.AnalogFrames,
		analogIn:        c.AnalogInChannels,
		analogOut:       c.AnalogOutChannels,
		digitalFrames:   c.DigitalFrames,
		digitalChannels: c.DigitalChannels,
		audioRate:       math.Float32bits(c.AudioSampleRate),
		analogRate:      math.Float32bits(c.AnalogSampleRate),
		flags:           c.Flags,
	}
}

// resized returns a buffer-less copy of c's metadata with every frame count
// multiplied by mul and divided by div.
func (c *Context) resized(mul, div int) Context {
	r := *c
	r.AudioIn, r.AudioOut, r.AnalogIn, r.AnalogOut, r.Digital = nil, nil, nil, nil, nil
	r.AudioFrames = c.AudioFrames * mul / div
	r.AnalogFrames = c.AnalogFrames * mul / div
	r.DigitalFrames = c.DigitalFrames * mul / div
	return r
}

func floatsEqual(a, b []float32, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := range n {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			return false
		}
	}
	return true
}

func wordsEqual(a, b []uint32, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := range n {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
