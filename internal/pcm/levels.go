package pcm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-rebuffer/internal/simdops"
)

// Levels summarizes the sample values of one stream.
type Levels struct {
	Samples int
	Sum     float64
	Peak    float64
	RMS     float64
}

// Meter accumulates Levels over successive blocks.
type Meter struct {
	samples int
	sum     float64
	peak    float64
	sumSq   float64

	scratch []float64
}

// Add folds a block of samples into the meter.
func (m *Meter) Add(block []float32) {
	if len(block) == 0 {
		return
	}

	if cap(m.scratch) < len(block) {
		m.scratch = make([]float64, len(block))
	}
	x := m.scratch[:len(block)]
	for i, v := range block {
		x[i] = float64(v)
	}

	m.samples += len(x)
	m.sum += simdops.Float64Ops().Sum(x)
	m.peak = math.Max(m.peak, math.Max(floats.Max(x), -floats.Min(x)))
	norm := floats.Norm(x, 2)
	m.sumSq += norm * norm
}

// Levels returns the summary of everything added so far.
func (m *Meter) Levels() Levels {
	l := Levels{Samples: m.samples, Sum: m.sum, Peak: m.peak}
	if m.samples > 0 {
		l.RMS = math.Sqrt(m.sumSq / float64(m.samples))
	}
	return l
}
