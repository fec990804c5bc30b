package rebuffer

// StreamKind identifies one of the sample streams carried by a Context.
type StreamKind int

const (
	// StreamAudioIn is the audio input stream.
	StreamAudioIn StreamKind = iota

	// StreamAudioOut is the audio output stream.
	StreamAudioOut

	// StreamAnalogIn is the analog sensor input stream.
	StreamAnalogIn

	// StreamAnalogOut is the analog output stream.
	StreamAnalogOut

	numStreams
)

// String returns the stream name.
func (k StreamKind) String() string {
	switch k {
	case StreamAudioIn:
		return "audio-in"
	case StreamAudioOut:
		return "audio-out"
	case StreamAnalogIn:
		return "analog-in"
	case StreamAnalogOut:
		return "analog-out"
	default:
		return "unknown"
	}
}

// StreamKinds lists every stream the Splitter reshapes, in processing order.
// The digital stream is not part of it.
func StreamKinds() []StreamKind {
	return []StreamKind{StreamAudioIn, StreamAudioOut, StreamAnalogIn, StreamAnalogOut}
}

// streamDescriptor locates one stream inside an arbitrary Context.
type streamDescriptor struct {
	frames   func(*Context) int
	channels func(*Context) int
	data     func(*Context) []float32
}

// streams is indexed by StreamKind. In and out variants of a stream share the
// frame count and differ in channel count and buffer.
var streams = [numStreams]streamDescriptor{
	StreamAudioIn: {
		frames:   func(c *Context) int { return c.AudioFrames },
		channels: func(c *Context) int { return c.AudioInChannels },
		data:     func(c *Context) []float32 { return c.AudioIn },
	},
	StreamAudioOut: {
		frames:   func(c *Context) int { return c.AudioFrames },
		channels: func(c *Context) int { return c.AudioOutChannels },
		data:     func(c *Context) []float32 { return c.AudioOut },
	},
	StreamAnalogIn: {
		frames:   func(c *Context) int { return c.AnalogFrames },
		channels: func(c *Context) int { return c.AnalogInChannels },
		data:     func(c *Context) []float32 { return c.AnalogIn },
	},
	StreamAnalogOut: {
		frames:   func(c *Context) int { return c.AnalogFrames },
		channels: func(c *Context) int { return c.AnalogOutChannels },
		data:     func(c *Context) []float32 { return c.AnalogOut },
	},
}

// Stream returns the frame count, channel count and buffer of one stream.
// Unknown kinds return zero values.
func (c *Context) Stream(kind StreamKind) (frames, channels int, data []float32) {
	if kind < 0 || kind >= numStreams {
		return 0, 0, nil
	}
	d := &streams[kind]
	return d.frames(c), d.channels(c), d.data(c)
}
