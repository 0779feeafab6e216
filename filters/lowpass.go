package filters

import (
	"fmt"
	"math"
)

// LowpassFilter implements a digital low-pass filter using biquad topology,
// same cookbook design as HighpassFilter.
type LowpassFilter struct {
	sampleRate float64
	cutoffFreq float64
	qFactor    float64

	b0, b1, b2 float64
	a0, a1, a2 float64

	x1, x2 float64

	initialized bool
}

// NewLowpassFilter creates a low-pass filter with a Butterworth Q.
func NewLowpassFilter(sampleRate, cutoffFreq float64) (*LowpassFilter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= sampleRate/2 {
		return nil, fmt.Errorf("cutoff must be between 0 and Nyquist (%g Hz), got %g",
			sampleRate/2, cutoffFreq)
	}

	lf := &LowpassFilter{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		qFactor:    1.0 / math.Sqrt2,
	}
	lf.computeCoefficients()
	return lf, nil
}

func (lf *LowpassFilter) computeCoefficients() {
	w0 := 2.0 * math.Pi * lf.cutoffFreq / lf.sampleRate
	if w0 >= math.Pi {
		w0 = math.Pi * 0.99
	}

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2.0 * lf.qFactor)

	// Low-pass coefficients (cookbook formula)
	lf.b0 = (1.0 - cosW0) / 2.0
	lf.b1 = 1.0 - cosW0
	lf.b2 = (1.0 - cosW0) / 2.0
	lf.a0 = 1.0 + alpha
	lf.a1 = -2.0 * cosW0
	lf.a2 = 1.0 - alpha

	lf.b0 /= lf.a0
	lf.b1 /= lf.a0
	lf.b2 /= lf.a0
	lf.a1 /= lf.a0
	lf.a2 /= lf.a0
	lf.a0 = 1.0

	lf.initialized = true
}

// Process applies the filter to a single sample using Direct Form II.
func (lf *LowpassFilter) Process(input float64) float64 {
	if !lf.initialized {
		lf.computeCoefficients()
	}

	w := input - lf.a1*lf.x1 - lf.a2*lf.x2
	output := lf.b0*w + lf.b1*lf.x1 + lf.b2*lf.x2

	lf.x2 = lf.x1
	lf.x1 = w

	return output
}

// ProcessBuffer applies the filter to an entire buffer of samples.
func (lf *LowpassFilter) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = lf.Process(sample)
	}
	return output
}

// Reset clears the filter's internal state.
func (lf *LowpassFilter) Reset() {
	lf.x1, lf.x2 = 0.0, 0.0
}

// GetCoefficients returns the current biquad coefficients.
func (lf *LowpassFilter) GetCoefficients() (b0, b1, b2, a0, a1, a2 float64) {
	return lf.b0, lf.b1, lf.b2, lf.a0, lf.a1, lf.a2
}
