package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	rebuffer "github.com/tphakala/go-audio-rebuffer"
	"github.com/tphakala/go-audio-rebuffer/internal/frames"
	"github.com/tphakala/go-audio-rebuffer/internal/pcm"
)

// wavPCMFormat is the WAVE format tag for integer PCM.
const wavPCMFormat = 1

var errInvalidOptions = errors.New("invalid options")

// options holds the command-line configuration.
type options struct {
	inputPath      string
	outputPath     string
	blockFrames    int
	ratio          int
	mode           string
	planar         bool
	analogChannels int
	bitDepth       int
}

// validate checks option values that the Splitter cannot check itself.
func (o options) validate() error {
	if o.mode != modeSplit && o.mode != modeJoin {
		return fmt.Errorf("%w: mode must be %q or %q, got %q", errInvalidOptions, modeSplit, modeJoin, o.mode)
	}
	if o.blockFrames < 1 {
		return fmt.Errorf("%w: block must be positive", errInvalidOptions)
	}
	if o.blockFrames%analogRateDivisor != 0 {
		return fmt.Errorf("%w: block must be a multiple of %d", errInvalidOptions, analogRateDivisor)
	}
	if o.analogChannels < 0 {
		return fmt.Errorf("%w: analog channels must not be negative", errInvalidOptions)
	}
	return nil
}

// cycle returns the Splitter block counts for the selected mode.
func (o options) cycle() (in, out int) {
	if o.mode == modeJoin {
		return o.ratio, 1
	}
	return 1, o.ratio
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	if format.NumChannels < 1 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("WAV file has no channels: %s", path)
	}

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
		format:   format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	closed  bool
}

// createWAVOutput creates the output file and encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavPCMFormat),
	}, nil
}

// Write appends interleaved PCM to the output.
func (w *wavOutputWriter) Write(buf *audio.IntBuffer) error {
	if err := w.encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file. It is safe to call
// more than once.
func (w *wavOutputWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV output: %w", err)
	}
	return w.file.Close()
}

// newTemplate describes the hardware block the tool pushes on every callback.
func newTemplate(o options, channels, sampleRate int) *rebuffer.Context {
	c := &rebuffer.Context{
		AudioFrames:       o.blockFrames,
		AudioInChannels:   channels,
		AudioOutChannels:  channels,
		AudioSampleRate:   float32(sampleRate),
		AnalogFrames:      o.blockFrames / analogRateDivisor,
		AnalogInChannels:  o.analogChannels,
		AnalogOutChannels: o.analogChannels,
		AnalogSampleRate:  float32(sampleRate) / analogRateDivisor,
		DigitalFrames:     o.blockFrames,
		DigitalChannels:   digitalChannels,
	}
	if !o.planar {
		c.Flags = rebuffer.FlagInterleaved
	}
	c.Allocate()
	return c
}

// loadBlock fills hw with one hardware block: audio from src, mirrored to the
// audio output stream, and a simulated sensor ramp on the analog streams.
func loadBlock(hw *rebuffer.Context, conv *pcm.Converter, src *audio.IntBuffer) {
	interleaved := hw.Interleaved()

	conv.FromInt(hw.AudioIn, src, hw.AudioInChannels, hw.AudioFrames, hw.AudioFrames, interleaved)
	copy(hw.AudioOut, hw.AudioIn)

	start := int(hw.FramesElapsed / analogRateDivisor)
	channels := hw.AnalogInChannels
	for f := range hw.AnalogFrames {
		for ch := range channels {
			phase := (start + f + ch*sensorPeriod/channels) % sensorPeriod
			hw.AnalogIn[frames.Index(interleaved, f, ch, channels, hw.AnalogFrames)] = float32(phase) / sensorPeriod
		}
	}
	copy(hw.AnalogOut, hw.AnalogIn)
}
