package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rebuffer "github.com/tphakala/go-audio-rebuffer"
	"github.com/tphakala/go-audio-rebuffer/internal/pcm"
)

const (
	testRate     = 48000
	testBitDepth = 16
	testChannels = 2
	testFrames   = 1000
)

// writeTestWAV writes a stereo 16-bit file with distinct values per sample.
func writeTestWAV(t *testing.T, path string) []int {
	t.Helper()

	data := make([]int, testFrames*testChannels)
	for i := range data {
		data[i] = (i*37)%60000 - 30000
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, testRate, testBitDepth, testChannels, wavPCMFormat)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: testChannels, SampleRate: testRate},
		Data:           data,
		SourceBitDepth: testBitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	return data
}

func readTestWAV(t *testing.T, path string) (*audio.IntBuffer, *wav.Decoder) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf, dec
}

func TestRunPreservesAudio(t *testing.T) {
	tests := []struct {
		mode         string
		planar       bool
		block        int
		ratio        int
		outputFrames int
		blocks       int
	}{
		// 1000 frames: 15 whole blocks of 64, each split into 4.
		{modeSplit, false, 64, 4, 960, 60},
		{modeSplit, true, 64, 4, 960, 60},
		// 15 blocks of 64 joined by 4: three full cycles.
		{modeJoin, false, 64, 4, 768, 3},
		{modeJoin, true, 64, 4, 768, 3},
		// 10 blocks of 100 joined by 2: five full cycles, nothing dropped.
		{modeJoin, false, 100, 2, 1000, 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/planar=%t/ratio=%d", tt.mode, tt.planar, tt.ratio), func(t *testing.T) {
			dir := t.TempDir()
			inPath := filepath.Join(dir, "in.wav")
			outPath := filepath.Join(dir, "out.wav")
			data := writeTestWAV(t, inPath)

			logger, _ := logtest.NewNullLogger()
			stats, err := run(options{
				inputPath:      inPath,
				outputPath:     outPath,
				blockFrames:    tt.block,
				ratio:          tt.ratio,
				mode:           tt.mode,
				planar:         tt.planar,
				analogChannels: 4,
			}, logger)
			require.NoError(t, err)

			assert.Equal(t, tt.outputFrames, stats.outputFrames)
			assert.Equal(t, tt.blocks, stats.processingBlocks)
			assert.Equal(t, testFrames-tt.outputFrames, stats.droppedFrames)

			buf, dec := readTestWAV(t, outPath)
			assert.Equal(t, testChannels, buf.Format.NumChannels)
			assert.Equal(t, testRate, buf.Format.SampleRate)
			assert.Equal(t, uint16(testBitDepth), dec.BitDepth)
			assert.Equal(t, data[:tt.outputFrames*testChannels], buf.Data)
		})
	}
}

func TestRunStreamLevelsMatchInSplitMode(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	writeTestWAV(t, inPath)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	stats, err := run(options{
		inputPath:      inPath,
		outputPath:     filepath.Join(dir, "out.wav"),
		blockFrames:    32,
		ratio:          8,
		mode:           modeSplit,
		analogChannels: 3,
	}, logger)
	require.NoError(t, err)

	for _, kind := range rebuffer.StreamKinds() {
		in, out := stats.in[kind].Levels(), stats.out[kind].Levels()
		assert.Equal(t, in.Samples, out.Samples, kind.String())
		assert.InDelta(t, in.Peak, out.Peak, 0, kind.String())
		assert.InDelta(t, in.Sum, out.Sum, 1e-6, kind.String())
		assert.InDelta(t, in.RMS, out.RMS, 1e-9, kind.String())
	}

	var converters *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "pcm converters ready" {
			converters = e
		}
	}
	require.NotNil(t, converters)
	assert.Equal(t, testBitDepth, converters.Data["input_bit_depth"])
	assert.Equal(t, testBitDepth, converters.Data["output_bit_depth"])

	hook.Reset()
	stats.report(logger)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestRunRejectsBadOptions(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	writeTestWAV(t, inPath)
	logger, _ := logtest.NewNullLogger()

	base := options{
		inputPath:   inPath,
		outputPath:  filepath.Join(dir, "out.wav"),
		blockFrames: 64,
		ratio:       4,
		mode:        modeSplit,
	}

	badMode := base
	badMode.mode = "merge"
	_, err := run(badMode, logger)
	require.ErrorIs(t, err, errInvalidOptions)

	oddBlock := base
	oddBlock.blockFrames = 63
	_, err = run(oddBlock, logger)
	require.ErrorIs(t, err, errInvalidOptions)

	// 64 frames cannot be sliced into 5 equal blocks.
	badRatio := base
	badRatio.ratio = 5
	_, err = run(badRatio, logger)
	require.ErrorIs(t, err, rebuffer.ErrInvalidConfig)

	// A ratio of 1 leaves nothing to regroup.
	unitRatio := base
	unitRatio.ratio = 1
	_, err = run(unitRatio, logger)
	require.ErrorIs(t, err, rebuffer.ErrInvalidConfig)

	missing := base
	missing.inputPath = filepath.Join(dir, "missing.wav")
	_, err = run(missing, logger)
	require.Error(t, err)
}

func TestNewTemplate(t *testing.T) {
	o := options{blockFrames: 128, analogChannels: 8}
	c := newTemplate(o, 2, 44100)

	assert.True(t, c.Interleaved())
	assert.Equal(t, 64, c.AnalogFrames)
	assert.Len(t, c.AudioIn, 256)
	assert.Len(t, c.AnalogIn, 512)
	assert.Len(t, c.Digital, 128)
	assert.InDelta(t, 22050, c.AnalogSampleRate, 0)

	o.planar = true
	assert.False(t, newTemplate(o, 2, 44100).Interleaved())
}

func TestLoadBlock(t *testing.T) {
	for _, planar := range []bool{false, true} {
		o := options{blockFrames: 4, analogChannels: 2, planar: planar}
		hw := newTemplate(o, 2, 48000)
		hw.FramesElapsed = 8

		src := &audio.IntBuffer{Data: []int{32767, 0, 0, -32767, 32767, 0, 0, -32767}}
		loadBlock(hw, pcm.NewConverter(16), src)

		assert.Equal(t, hw.AudioIn, hw.AudioOut)
		assert.Equal(t, hw.AnalogIn, hw.AnalogOut)

		// First frame: left full scale, right silent.
		_, _, audioIn := hw.Stream(rebuffer.StreamAudioIn)
		if planar {
			assert.Equal(t, []float32{1, 0, 1, 0, 0, -1, 0, -1}, audioIn)
		} else {
			assert.Equal(t, []float32{1, 0, 0, -1, 1, 0, 0, -1}, audioIn)
		}

		// The sensor ramp starts at half the elapsed audio frames.
		first := hw.AnalogIn[0]
		assert.InDelta(t, 4.0/sensorPeriod, first, 1e-9)
	}
}
