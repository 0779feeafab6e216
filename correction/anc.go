package correction

import (
	"fmt"

	"github.com/neurowav/gradcorr/eeg"
)

// NoiseCanceller adaptively cancels residual artifact (e.g. the cardiac
// ballistogram) remaining after template subtraction, driven by a reference
// channel correlated with the residual. It is a pluggable strategy; the
// pipeline runs it only when one is configured, so a skipped stage is
// always explicit and never mistaken for a successful one.
type NoiseCanceller interface {
	// Cancel returns a new cleaned Signal; the input is not modified.
	// referenceChannel names the channel driving the adaptive filter.
	Cancel(signal *eeg.Signal, referenceChannel string) (*eeg.Signal, error)
}

// LMSCanceller implements NoiseCanceller with a normalized least-mean-
// squares filter: for each data channel, an FIR filter on the reference
// channel is adapted sample-by-sample to predict the channel's residual
// artifact, and the prediction is subtracted.
type LMSCanceller struct {
	// Taps is the FIR filter order
	Taps int `json:"taps"`

	// StepSize is the normalized LMS adaptation rate, in (0, 2)
	StepSize float64 `json:"step_size"`
}

// NewLMSCanceller creates a canceller with the given filter order and
// adaptation rate.
func NewLMSCanceller(taps int, stepSize float64) (*LMSCanceller, error) {
	if taps < 1 {
		return nil, fmt.Errorf("lms taps must be >= 1, got %d", taps)
	}
	if stepSize <= 0 || stepSize >= 2 {
		return nil, fmt.Errorf("lms step size must be in (0, 2), got %g", stepSize)
	}
	return &LMSCanceller{Taps: taps, StepSize: stepSize}, nil
}

// Cancel runs the normalized LMS filter over every channel except the
// reference itself and returns the cleaned signal.
func (c *LMSCanceller) Cancel(signal *eeg.Signal, referenceChannel string) (*eeg.Signal, error) {
	refIdx, ok := signal.ChannelIndex(referenceChannel)
	if !ok {
		return nil, fmt.Errorf("%w: no channel named %q", eeg.ErrBadSignal, referenceChannel)
	}

	ref := signal.Data[refIdx]
	out := signal.Clone()

	for ch := range signal.Data {
		if ch == refIdx {
			continue
		}
		c.cancelChannel(out.Data[ch], signal.Data[ch], ref)
	}

	return out, nil
}

// cancelChannel adapts an FIR estimate of desired from ref and writes the
// prediction error (the cleaned samples) into dst.
func (c *LMSCanceller) cancelChannel(dst, desired, ref []float64) {
	weights := make([]float64, c.Taps)
	const eps = 1e-12

	for n := range desired {
		// FIR prediction from the most recent Taps reference samples
		var estimate, energy float64
		for k := 0; k < c.Taps; k++ {
			idx := n - k
			if idx < 0 {
				break
			}
			estimate += weights[k] * ref[idx]
			energy += ref[idx] * ref[idx]
		}

		err := desired[n] - estimate
		dst[n] = err

		// Normalized update keeps adaptation rate independent of the
		// reference channel's amplitude
		step := c.StepSize / (energy + eps)
		for k := 0; k < c.Taps; k++ {
			idx := n - k
			if idx < 0 {
				break
			}
			weights[k] += step * err * ref[idx]
		}
	}
}
