// Command rebuffer-wav drives a WAV file through a rebuffer.Splitter.
//
// The tool plays the part of an audio driver: it cuts the input into
// fixed-size hardware blocks, pushes them through a Splitter configured to
// split or join, and writes the audio of every popped block to the output
// file. Since regrouping never changes sample values, the output matches the
// input up to the last incomplete hardware block or cycle.
//
// Usage:
//
//	rebuffer-wav -block 128 -ratio 4 -mode split input.wav output.wav
//	rebuffer-wav -block 16 -ratio 8 -mode join -planar input.wav output.wav
//	REBUFFER_DEBUG=1 rebuffer-wav -v input.wav output.wav
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-rebuffer/internal/logging"
)

const (
	// CLI defaults
	defaultBlockFrames    = 128
	defaultRatio          = 4
	defaultAnalogChannels = 8
	minRequiredArgs       = 2

	// Analog streams run at half the audio frame rate.
	analogRateDivisor = 2

	// Digital streams carry 16 bit-packed channels per frame.
	digitalChannels = 16

	// Simulated analog sensor ramp period in analog frames.
	sensorPeriod = 1000

	modeSplit = "split"
	modeJoin  = "join"
)

func main() {
	var (
		block          = flag.Int("block", defaultBlockFrames, "Hardware block size in audio frames")
		ratio          = flag.Int("ratio", defaultRatio, "Ratio between hardware and processing block sizes")
		mode           = flag.String("mode", modeSplit, "Regrouping mode: split or join")
		planar         = flag.Bool("planar", false, "Use planar instead of interleaved buffers")
		analogChannels = flag.Int("analog-channels", defaultAnalogChannels, "Number of simulated analog sensor channels")
		bits           = flag.Int("bits", 0, "Output bit depth (0 keeps the input bit depth)")
		verbose        = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintln(os.Stderr, "Usage: rebuffer-wav [options] input.wav output.wav")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logging.New()
	if *verbose && logger.GetLevel() < logrus.DebugLevel {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logger.WithField("run", xid.New().String())

	opts := options{
		inputPath:      args[0],
		outputPath:     args[1],
		blockFrames:    *block,
		ratio:          *ratio,
		mode:           *mode,
		planar:         *planar,
		analogChannels: *analogChannels,
		bitDepth:       *bits,
	}

	stats, err := run(opts, log)
	if err != nil {
		log.WithError(err).Fatal("rebuffering failed")
	}

	stats.report(log)
}
