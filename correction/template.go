package correction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// Template is the per-channel, per-sample artifact estimate for one epoch.
// Same shape as the epoch it corrects; ephemeral, recomputed per run.
type Template struct {
	// Data is indexed [channel][sample within window]
	Data [][]float64
}

// Estimator computes average-artifact-subtraction templates: each epoch's
// template is the weighted mean of a rolling neighborhood of epochs.
type Estimator struct {
	// windowSize is the maximum number of epochs in a neighborhood
	windowSize int

	// relPosition shifts the neighborhood center relative to the target
	// epoch, as a fraction of windowSize; 0 means centered
	relPosition float64

	// weights holds one non-negative scalar per input epoch; nil means
	// uniform weighting (plain moving average)
	weights []float64
}

// NewEstimator creates an estimator with uniform weighting.
func NewEstimator(windowSize int, relPosition float64) (*Estimator, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("estimator window size must be >= 1, got %d", windowSize)
	}
	return &Estimator{windowSize: windowSize, relPosition: relPosition}, nil
}

// SetWeights attaches externally supplied per-epoch weights (one per epoch
// passed to Estimate, in the same order). Weights must be non-negative.
func (e *Estimator) SetWeights(weights []float64) error {
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("weight %d is %g, must be non-negative", i, w)
		}
	}
	e.weights = weights
	return nil
}

// Estimate returns one template per input epoch. The neighborhood for epoch
// i holds up to windowSize epochs centered on i (shifted by relPosition),
// clipped at the sequence boundaries without wraparound; the first and last
// windowSize/2 epochs therefore average over truncated neighborhoods, which
// is expected. A windowSize above len(epochs) degrades to a global average.
//
// Accumulation runs in float64 in fixed ascending-epoch order, keeping the
// mean deterministic and stable for neighborhoods of a few hundred epochs.
// A neighborhood whose weights sum to zero falls back to uniform averaging
// and is reported in the diagnostics, never as an error.
func (e *Estimator) Estimate(epochs []Epoch) ([]Template, *eeg.Diagnostics, error) {
	if len(epochs) == 0 {
		return nil, nil, fmt.Errorf("no epochs to estimate templates from")
	}
	if e.weights != nil && len(e.weights) != len(epochs) {
		return nil, nil, fmt.Errorf("%d weights for %d epochs", len(e.weights), len(epochs))
	}

	channels := epochs[0].Channels()
	length := epochs[0].Length()
	for i := range epochs {
		if epochs[i].Channels() != channels || epochs[i].Length() != length {
			return nil, nil, fmt.Errorf("%w: epoch %d is %dx%d, expected %dx%d",
				eeg.ErrInvalidTemplateShape,
				i, epochs[i].Channels(), epochs[i].Length(), channels, length)
		}
	}

	diags := &eeg.Diagnostics{}
	templates := make([]Template, len(epochs))

	for i := range epochs {
		lo, hi := e.neighborhood(i, len(epochs))

		weightSum := 0.0
		if e.weights != nil {
			for j := lo; j <= hi; j++ {
				weightSum += e.weights[j]
			}
		}

		uniform := e.weights == nil
		if !uniform && weightSum <= 0 {
			// Every neighbor is above the motion threshold; uniform
			// averaging is the deterministic fallback
			uniform = true
			diags.WeightFallbacks = append(diags.WeightFallbacks, i)
			logging.Warn("zero-weight neighborhood, falling back to unweighted average",
				logging.Fields{"epoch": i, "lo": lo, "hi": hi})
		}
		if uniform {
			weightSum = float64(hi - lo + 1)
		}

		data := make([][]float64, channels)
		for ch := 0; ch < channels; ch++ {
			acc := make([]float64, length)
			for j := lo; j <= hi; j++ {
				w := 1.0
				if !uniform {
					w = e.weights[j]
				}
				if w == 0 {
					continue
				}
				floats.AddScaled(acc, w, epochs[j].Channel(ch))
			}
			floats.Scale(1/weightSum, acc)
			data[ch] = acc
		}

		templates[i] = Template{Data: data}
	}

	return templates, diags, nil
}

// neighborhood returns the inclusive epoch range averaged for epoch i.
func (e *Estimator) neighborhood(i, total int) (lo, hi int) {
	if e.windowSize >= total {
		return 0, total - 1
	}

	offset := int(math.Floor(e.relPosition * float64(e.windowSize)))
	lo = i - e.windowSize/2 + offset
	hi = lo + e.windowSize - 1

	if lo < 0 {
		lo = 0
	}
	if hi > total-1 {
		hi = total - 1
	}
	// An extreme relPosition can push the whole window past either end;
	// clamp back to the nearest surviving epoch
	if lo > total-1 {
		lo = total - 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
