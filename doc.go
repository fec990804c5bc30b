// Package rebuffer regroups multi-stream sample blocks between two block sizes
// related by an integer ratio.
//
// Audio and sensor hardware delivers data in callbacks of a fixed size, while
// downstream processing often wants a different, fixed size. A [Splitter]
// bridges the two without changing any sample values: it either slices each
// hardware block into several smaller consecutive blocks, or accumulates
// several small blocks into one larger block.
//
// # Contexts and Streams
//
// A [Context] carries one callback's worth of data for several streams at
// once: audio in/out and analog in/out, each with its own frame and channel
// counts, plus a bit-packed digital stream. All buffers in a Context share one
// layout, selected by [FlagInterleaved]:
//
//	interleaved: sample(frame, channel) = buf[frame*channels + channel]
//	planar:      sample(frame, channel) = buf[frames*channel + frame]
//
// [Context.Stream] gives generic access to any stream by [StreamKind].
//
// # Quick Start
//
// Split a 128-frame hardware block into four 32-frame blocks:
//
//	template := &rebuffer.Context{
//	    AudioFrames: 128, AudioInChannels: 2, AudioOutChannels: 2,
//	    AnalogFrames: 64, AnalogInChannels: 8, AnalogOutChannels: 8,
//	    Flags: rebuffer.FlagInterleaved,
//	}
//	s, err := rebuffer.New(&rebuffer.Config{In: 1, Out: 4, Template: template})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// In the driver callback
//	if _, err := s.Push(hw); err != nil {
//	    log.Fatal(err)
//	}
//	for ctx := s.Pop(); ctx != nil; ctx = s.Pop() {
//	    process(ctx)
//	}
//
// Accumulating works the same way with In and Out swapped: the single output
// becomes ready after every fourth Push.
//
// # Buffer Ownership
//
// Output Contexts are allocated once by [Splitter.Setup] and reused for every
// cycle, so Push never allocates. A Context returned by [Splitter.Pop] is
// borrowed; it is overwritten by the next Push that refills its slot. Use
// [Context.Clone] to keep one.
//
// # Limitations
//
// The digital stream is allocated and copied along with the other buffers but
// is not regrouped by the Splitter. Pushed Contexts are assumed to match the
// setup template; [Splitter.CheckShape] can validate a driver once up front.
//
// # Thread Safety
//
// A Splitter does no locking. One goroutine may Push and another Pop only if
// the caller serializes the two.
package rebuffer
