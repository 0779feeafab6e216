// Package filters provides the generic filtering capability the correction
// pipeline hooks into before and after artifact removal: biquad high-pass
// and low-pass sections applied as a zero-phase forward-backward pass over a
// multi-channel signal.
package filters

import (
	"fmt"
	"math"
)

// HighpassFilter implements a digital high-pass filter using biquad topology.
//
// Coefficients follow the cookbook formulas from Robert Bristow-Johnson's
// "Cookbook formulae for audio EQ biquad filter coefficients"
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
type HighpassFilter struct {
	sampleRate float64
	cutoffFreq float64 // Cutoff frequency in Hz
	qFactor    float64 // Quality factor

	// Biquad coefficients
	b0, b1, b2 float64 // Numerator coefficients
	a0, a1, a2 float64 // Denominator coefficients

	// State variables for direct form II implementation
	x1, x2 float64

	initialized bool
}

// NewHighpassFilter creates a high-pass filter with a Butterworth Q of
// 1/sqrt(2), the standard choice for a maximally flat passband.
func NewHighpassFilter(sampleRate, cutoffFreq float64) (*HighpassFilter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if cutoffFreq <= 0 || cutoffFreq >= sampleRate/2 {
		return nil, fmt.Errorf("cutoff must be between 0 and Nyquist (%g Hz), got %g",
			sampleRate/2, cutoffFreq)
	}

	hf := &HighpassFilter{
		sampleRate: sampleRate,
		cutoffFreq: cutoffFreq,
		qFactor:    1.0 / math.Sqrt2,
	}
	hf.computeCoefficients()
	return hf, nil
}

// computeCoefficients calculates the biquad coefficients using the cookbook formula.
func (hf *HighpassFilter) computeCoefficients() {
	w0 := 2.0 * math.Pi * hf.cutoffFreq / hf.sampleRate
	if w0 >= math.Pi {
		w0 = math.Pi * 0.99
	}

	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)
	alpha := sinW0 / (2.0 * hf.qFactor)

	// High-pass coefficients (cookbook formula)
	hf.b0 = (1.0 + cosW0) / 2.0
	hf.b1 = -(1.0 + cosW0)
	hf.b2 = (1.0 + cosW0) / 2.0
	hf.a0 = 1.0 + alpha
	hf.a1 = -2.0 * cosW0
	hf.a2 = 1.0 - alpha

	// Normalize by a0 for direct form II implementation
	hf.b0 /= hf.a0
	hf.b1 /= hf.a0
	hf.b2 /= hf.a0
	hf.a1 /= hf.a0
	hf.a2 /= hf.a0
	hf.a0 = 1.0

	hf.initialized = true
}

// Process applies the filter to a single sample using Direct Form II.
func (hf *HighpassFilter) Process(input float64) float64 {
	if !hf.initialized {
		hf.computeCoefficients()
	}

	w := input - hf.a1*hf.x1 - hf.a2*hf.x2
	output := hf.b0*w + hf.b1*hf.x1 + hf.b2*hf.x2

	hf.x2 = hf.x1
	hf.x1 = w

	return output
}

// ProcessBuffer applies the filter to an entire buffer of samples.
func (hf *HighpassFilter) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = hf.Process(sample)
	}
	return output
}

// Reset clears the filter's internal state (delay line).
// Call this when processing discontinuous segments.
func (hf *HighpassFilter) Reset() {
	hf.x1, hf.x2 = 0.0, 0.0
}

// GetCoefficients returns the current biquad coefficients.
func (hf *HighpassFilter) GetCoefficients() (b0, b1, b2, a0, a1, a2 float64) {
	return hf.b0, hf.b1, hf.b2, hf.a0, hf.a1, hf.a2
}
