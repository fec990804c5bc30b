package rebuffer

import (
	"testing"
)

// BenchmarkSplitInterleaved benchmarks one hardware block split into 8.
func BenchmarkSplitInterleaved(b *testing.B) {
	benchmarkCycle(b, 1, 8, FlagInterleaved, 2)
}

// BenchmarkSplitPlanar benchmarks one planar hardware block split into 8.
func BenchmarkSplitPlanar(b *testing.B) {
	benchmarkCycle(b, 1, 8, 0, 2)
}

// BenchmarkJoinInterleaved benchmarks 8 hardware blocks joined into one.
func BenchmarkJoinInterleaved(b *testing.B) {
	benchmarkCycle(b, 8, 1, FlagInterleaved, 2)
}

// BenchmarkJoinPlanar benchmarks 8 planar hardware blocks joined into one.
func BenchmarkJoinPlanar(b *testing.B) {
	benchmarkCycle(b, 8, 1, 0, 2)
}

// BenchmarkSplitChannels benchmarks planar splitting with varying channel counts.
func BenchmarkSplitChannels(b *testing.B) {
	for _, channels := range []int{1, 2, 4, 6, 8} {
		b.Run(channelName(channels), func(b *testing.B) {
			benchmarkCycle(b, 1, 4, 0, channels)
		})
	}
}

// benchmarkCycle measures one full cycle: enough pushes to fill the outputs
// and pops to drain them.
func benchmarkCycle(b *testing.B, in, out int, flags Flags, channels int) {
	b.Helper()

	const (
		audioFrames  = 128
		analogFrames = 64
	)

	template := &Context{
		AudioFrames:       audioFrames,
		AudioInChannels:   channels,
		AudioOutChannels:  channels,
		AudioSampleRate:   48000,
		AnalogFrames:      analogFrames,
		AnalogInChannels:  8,
		AnalogOutChannels: 8,
		AnalogSampleRate:  24000,
		DigitalFrames:     audioFrames,
		DigitalChannels:   16,
		Flags:             flags,
	}
	template.Allocate()
	for i := range template.AudioIn {
		template.AudioIn[i] = float32(i) / float32(len(template.AudioIn))
	}

	s, err := New(&Config{In: in, Out: out, Template: template})
	if err != nil {
		b.Fatalf("Failed to create splitter: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		for range in {
			if _, err := s.Push(template); err != nil {
				b.Fatalf("Push failed: %v", err)
			}
		}
		for s.Pop() != nil {
		}
	}
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	case 4:
		return "Quad"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return "Custom"
	}
}
