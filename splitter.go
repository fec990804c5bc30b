package rebuffer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tphakala/go-audio-rebuffer/internal/frames"
	"github.com/tphakala/go-audio-rebuffer/internal/logging"
)

// Common errors returned by the Splitter.
var (
	// ErrInvalidConfig indicates invalid setup parameters.
	ErrInvalidConfig = errors.New("invalid splitter configuration")

	// ErrNotConfigured indicates use of a Splitter without a successful Setup.
	ErrNotConfigured = errors.New("splitter not configured")

	// ErrContractViolation indicates a call pattern the Splitter cannot honor,
	// such as pushing past the accumulation budget of a cycle.
	ErrContractViolation = errors.New("splitter contract violation")

	// ErrShapeMismatch indicates a Context that does not match the setup template.
	ErrShapeMismatch = errors.New("context shape mismatch")
)

var discardLogger = logging.Discard()

// Config holds Splitter configuration.
type Config struct {
	// In is the number of pushed Contexts that make up one cycle.
	In int

	// Out is the number of Contexts popped per cycle.
	// Exactly one of In and Out must be 1.
	Out int

	// Template describes the shape of every Context that will be pushed.
	// Only its metadata is read.
	Template *Context

	// Logger receives setup and contract violation messages.
	// Nil discards them.
	Logger logrus.FieldLogger
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validateSetup(c.In, c.Out, c.Template)
}

// Splitter regroups Contexts between two block sizes related by an integer
// ratio. In slice mode every pushed Context is cut into ratio consecutive
// outputs; in accumulate mode ratio pushed Contexts are concatenated into one
// output.
//
// A Splitter owns its output Contexts and reuses them for every cycle. Popped
// Contexts are borrowed: they are overwritten by the next Push that refills
// their slot. A Splitter performs no locking; a producer calling Push and a
// consumer calling Pop from different goroutines must synchronize themselves.
type Splitter struct {
	direction Direction
	ratio     int
	inLength  int
	outLength int
	inCount   int
	outCount  int

	outputs  []Context
	template Context

	configured bool
	log        logrus.FieldLogger
}

// New creates a Splitter from cfg.
func New(cfg *Config) (*Splitter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	s := &Splitter{log: cfg.Logger}
	if err := s.Setup(cfg.In, cfg.Out, cfg.Template); err != nil {
		return nil, err
	}
	return s, nil
}

// Setup configures the Splitter for cycles of in pushes and out pops.
//
// in == 1 selects slice mode and out == 1 accumulate mode; the other side is
// the ratio and must be at least 2. template gives the shape of pushed
// Contexts: outputs get its frame counts divided by the ratio in slice mode.
// In accumulate mode each output holds ratio times the template's frames.
// On error the Splitter is left unconfigured.
func (s *Splitter) Setup(in, out int, template *Context) error {
	s.Cleanup()

	if err := validateSetup(in, out, template); err != nil {
		s.logger().WithError(err).Debug("splitter setup rejected")
		return err
	}

	s.direction = DirectionAccumulate
	s.ratio = in
	if out != singleSide {
		s.direction = DirectionSlice
		s.ratio = out
	}

	s.template = template.resized(1, 1)
	shape := template.resized(in, out)
	s.outputs = make([]Context, out)
	for i := range s.outputs {
		s.outputs[i] = shape
		s.outputs[i].Allocate()
	}

	s.inCount = 0
	s.outCount = 0
	s.inLength = in
	s.outLength = out
	s.configured = true

	s.logger().WithFields(logrus.Fields{
		"direction":     s.direction.String(),
		"ratio":         s.ratio,
		"audio_frames":  shape.AudioFrames,
		"analog_frames": shape.AnalogFrames,
		"interleaved":   template.Interleaved(),
	}).Debug("splitter configured")

	return nil
}

// validateSetup checks setup parameters.
func validateSetup(in, out int, template *Context) error {
	if in < minBlocks || out < minBlocks {
		return fmt.Errorf("%w: block counts must be at least %d (in=%d, out=%d)", ErrInvalidConfig, minBlocks, in, out)
	}

	if (in == singleSide) == (out == singleSide) {
		return fmt.Errorf("%w: exactly one of in and out must be %d (in=%d, out=%d)", ErrInvalidConfig, singleSide, in, out)
	}

	ratio := max(in, out)
	if ratio > maxRatio {
		return fmt.Errorf("%w: ratio %d exceeds %d", ErrInvalidConfig, ratio, maxRatio)
	}

	if template == nil {
		return fmt.Errorf("%w: template is nil", ErrInvalidConfig)
	}

	counts := []struct {
		name  string
		value int
	}{
		{"audio frames", template.AudioFrames},
		{"audio input channels", template.AudioInChannels},
		{"audio output channels", template.AudioOutChannels},
		{"analog frames", template.AnalogFrames},
		{"analog input channels", template.AnalogInChannels},
		{"analog output channels", template.AnalogOutChannels},
		{"digital frames", template.DigitalFrames},
	}
	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: negative %s (%d)", ErrInvalidConfig, c.name, c.value)
		}
	}

	// Slicing must not drop trailing frames.
	if out > singleSide {
		for _, c := range []struct {
			name   string
			frames int
		}{
			{"audio", template.AudioFrames},
			{"analog", template.AnalogFrames},
			{"digital", template.DigitalFrames},
		} {
			if c.frames%out != 0 {
				return fmt.Errorf("%w: %s frames %d not divisible by %d", ErrInvalidConfig, c.name, c.frames, out)
			}
		}
	}

	return nil
}

// Push feeds one Context into the Splitter and returns the number of Contexts
// accumulated towards the current cycle. The count wraps to 0 when a cycle
// completes and its outputs become ready for Pop.
//
// in must match the setup template. Push never allocates and does not check
// the shape; see CheckShape.
func (s *Splitter) Push(in *Context) (int, error) {
	if !s.configured {
		return 0, ErrNotConfigured
	}

	if s.inCount > s.inLength {
		err := fmt.Errorf("%w: %d pushes accumulated, cycle length is %d", ErrContractViolation, s.inCount, s.inLength)
		s.logger().WithError(err).Warn("push rejected")
		return 0, err
	}

	if in == nil {
		return 0, fmt.Errorf("%w: nil context", ErrContractViolation)
	}

	interleaved := in.Interleaved()

	// The digital stream is left untouched.
	for k := range s.outputs {
		out := &s.outputs[k]

		if s.direction == DirectionSlice {
			out.FramesElapsed = in.FramesElapsed + uint64(k*out.AudioFrames)
		} else if s.inCount == 0 {
			out.FramesElapsed = in.FramesElapsed
		}

		for kind := range numStreams {
			d := &streams[kind]
			channels := d.channels(in)
			srcFrames := d.frames(in)
			dstFrames := d.frames(out)

			var srcStart, dstStart, n int
			if s.direction == DirectionSlice {
				srcStart = k * dstFrames
				n = dstFrames
			} else {
				// Assumes every pushed Context has the template's frame count.
				dstStart = s.inCount * srcFrames
				n = srcFrames
			}

			frames.Stack(interleaved, d.data(in), d.data(out), channels,
				srcStart, dstStart, n, srcFrames, dstFrames)
		}
	}

	s.inCount++
	if s.inCount == s.inLength {
		s.outCount = s.outLength
		s.inCount = 0
	}

	return s.inCount, nil
}

// Pop returns the next ready output Context, or nil when the current cycle
// has been drained. The Splitter keeps ownership of the returned Context.
func (s *Splitter) Pop() *Context {
	if s.outCount == 0 {
		return nil
	}

	c := &s.outputs[s.outLength-s.outCount]
	s.outCount--
	return c
}

// CheckShape reports whether c matches the template given to Setup. It is
// meant for validating a driver once, not for use on every callback.
func (s *Splitter) CheckShape(c *Context) error {
	if !s.configured {
		return ErrNotConfigured
	}
	if c == nil {
		return fmt.Errorf("%w: nil context", ErrShapeMismatch)
	}

	if c.Interleaved() != s.template.Interleaved() {
		return fmt.Errorf("%w: interleaved=%t, want %t", ErrShapeMismatch, c.Interleaved(), s.template.Interleaved())
	}

	for _, kind := range StreamKinds() {
		n, channels, data := c.Stream(kind)
		wantFrames, wantChannels, _ := s.template.Stream(kind)

		if n != wantFrames || channels != wantChannels {
			return fmt.Errorf("%w: %s is %d frames x %d channels, want %d x %d",
				ErrShapeMismatch, kind, n, channels, wantFrames, wantChannels)
		}
		if len(data) < n*channels {
			return fmt.Errorf("%w: %s buffer holds %d samples, want %d",
				ErrShapeMismatch, kind, len(data), n*channels)
		}
	}

	return nil
}

// Cleanup releases the output Contexts. The Splitter must be set up again
// before further use.
func (s *Splitter) Cleanup() {
	if s.configured {
		s.logger().WithField("outputs", len(s.outputs)).Debug("splitter cleaned up")
	}

	s.outputs = nil
	s.template = Context{}
	s.inCount = 0
	s.outCount = 0
	s.inLength = 0
	s.outLength = 0
	s.ratio = 0
	s.configured = false
}

// Direction returns the configured direction.
func (s *Splitter) Direction() Direction {
	return s.direction
}

// Ratio returns the block size ratio, or 0 when not configured.
func (s *Splitter) Ratio() int {
	return s.ratio
}

// Accumulated returns the number of Contexts pushed into the current cycle.
func (s *Splitter) Accumulated() int {
	return s.inCount
}

// Ready returns the number of output Contexts waiting to be popped.
func (s *Splitter) Ready() int {
	return s.outCount
}

// Len returns the number of output Contexts owned by the Splitter.
func (s *Splitter) Len() int {
	return len(s.outputs)
}

func (s *Splitter) logger() logrus.FieldLogger {
	if s.log == nil {
		return discardLogger
	}
	return s.log
}
