package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/sirupsen/logrus"

	rebuffer "github.com/tphakala/go-audio-rebuffer"
	"github.com/tphakala/go-audio-rebuffer/internal/pcm"
)

var errDiscontinuity = errors.New("output blocks are not contiguous")

// streamMeters tracks levels per stream kind.
type streamMeters map[rebuffer.StreamKind]*pcm.Meter

func newStreamMeters() streamMeters {
	m := make(streamMeters)
	for _, kind := range rebuffer.StreamKinds() {
		m[kind] = &pcm.Meter{}
	}
	return m
}

func (m streamMeters) add(c *rebuffer.Context) {
	for _, kind := range rebuffer.StreamKinds() {
		_, _, data := c.Stream(kind)
		m[kind].Add(data)
	}
}

// runStats summarizes one run.
type runStats struct {
	mode             string
	ratio            int
	channels         int
	sampleRate       int
	hardwareBlocks   int
	processingBlocks int
	outputFrames     int
	droppedFrames    int
	in               streamMeters
	out              streamMeters
}

func (s *runStats) report(log logrus.FieldLogger) {
	log.WithFields(logrus.Fields{
		"mode":              s.mode,
		"ratio":             s.ratio,
		"channels":          s.channels,
		"sample_rate":       s.sampleRate,
		"hardware_blocks":   s.hardwareBlocks,
		"processing_blocks": s.processingBlocks,
		"output_frames":     s.outputFrames,
		"dropped_frames":    s.droppedFrames,
	}).Info("rebuffering complete")

	for _, kind := range rebuffer.StreamKinds() {
		in, out := s.in[kind].Levels(), s.out[kind].Levels()
		log.WithFields(logrus.Fields{
			"stream":      kind.String(),
			"in_samples":  in.Samples,
			"out_samples": out.Samples,
			"in_peak":     in.Peak,
			"out_peak":    out.Peak,
			"in_rms":      in.RMS,
			"out_rms":     out.RMS,
		}).Debug("stream levels")
	}
}

// run pushes the input file through a Splitter and writes every popped block.
func run(opts options, log logrus.FieldLogger) (*runStats, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	input, err := openWAVInput(opts.inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	bitDepth := opts.bitDepth
	if bitDepth == 0 {
		bitDepth = input.bitDepth
	}

	log.WithFields(logrus.Fields{
		"input":       opts.inputPath,
		"output":      opts.outputPath,
		"sample_rate": input.rate,
		"channels":    input.channels,
		"bit_depth":   input.bitDepth,
		"block":       opts.blockFrames,
	}).Debug("input opened")

	template := newTemplate(opts, input.channels, input.rate)
	in, out := opts.cycle()
	splitter, err := rebuffer.New(&rebuffer.Config{
		In:       in,
		Out:      out,
		Template: template,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up splitter: %w", err)
	}
	defer splitter.Cleanup()

	hw := template.Clone()
	if err := splitter.CheckShape(hw); err != nil {
		return nil, err
	}

	output, err := createWAVOutput(opts.outputPath, input.rate, bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	defer func() { _ = output.Close() }()

	reader := pcm.NewConverter(input.bitDepth)
	writer := pcm.NewConverter(bitDepth)
	log.WithFields(logrus.Fields{
		"input_bit_depth":  reader.BitDepth(),
		"output_bit_depth": writer.BitDepth(),
	}).Debug("pcm converters ready")
	inBuf := &audio.IntBuffer{
		Format: input.format,
		Data:   make([]int, opts.blockFrames*input.channels),
	}
	outBuf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: input.channels, SampleRate: input.rate},
	}

	stats := &runStats{
		mode:       opts.mode,
		ratio:      splitter.Ratio(),
		channels:   input.channels,
		sampleRate: input.rate,
		in:         newStreamMeters(),
		out:        newStreamMeters(),
	}

	var next uint64
	for {
		inBuf.Data = inBuf.Data[:cap(inBuf.Data)]
		n, err := input.decoder.PCMBuffer(inBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}

		// The driver only delivers whole blocks.
		if got := n / input.channels; got < opts.blockFrames {
			stats.droppedFrames += got
			break
		}

		loadBlock(hw, reader, inBuf)
		stats.in.add(hw)
		stats.hardwareBlocks++

		if _, err := splitter.Push(hw); err != nil {
			return nil, fmt.Errorf("push failed: %w", err)
		}

		for c := splitter.Pop(); c != nil; c = splitter.Pop() {
			if c.FramesElapsed != next {
				return nil, fmt.Errorf("%w: block starts at frame %d, expected %d", errDiscontinuity, c.FramesElapsed, next)
			}
			next += uint64(c.AudioFrames)

			writer.ToInt(outBuf, c.AudioIn, c.AudioInChannels, c.AudioFrames, c.Interleaved())
			if err := output.Write(outBuf); err != nil {
				return nil, err
			}

			stats.out.add(c)
			stats.processingBlocks++
			stats.outputFrames += c.AudioFrames
		}

		hw.FramesElapsed += uint64(opts.blockFrames)
	}

	// An incomplete join cycle never reaches the output.
	stats.droppedFrames += splitter.Accumulated() * opts.blockFrames

	if err := output.Close(); err != nil {
		return nil, err
	}

	return stats, nil
}
