package correction

import (
	"fmt"
	"math"

	"github.com/neurowav/gradcorr/logging"
)

// MotionWeights converts per-epoch motion magnitudes (e.g. framewise
// displacement from the scanner's realignment parameters) into averaging
// weights for the estimator: w = 1 - motion/threshold, clipped at zero.
// Motion at or above the threshold removes the epoch from every
// neighborhood it appears in; below the threshold influence decays
// linearly. One motion value per epoch is required.
func MotionWeights(motion []float64, threshold float64) ([]float64, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("motion threshold must be positive, got %g", threshold)
	}
	if len(motion) == 0 {
		return nil, fmt.Errorf("no motion values supplied")
	}

	weights := make([]float64, len(motion))
	suppressed := 0
	for i, m := range motion {
		if math.IsNaN(m) || m < 0 {
			return nil, fmt.Errorf("motion value %d is %g, must be non-negative", i, m)
		}
		w := 1.0 - m/threshold
		if w <= 0 {
			w = 0
			suppressed++
		}
		weights[i] = w
	}

	if suppressed > 0 {
		logging.Info("motion weighting suppressed epochs", logging.Fields{
			"suppressed": suppressed,
			"total":      len(motion),
			"threshold":  threshold,
		})
	}

	return weights, nil
}

// WeightsForEpochs maps trigger-ordinal-keyed weights onto a surviving
// epoch sequence. Boundary drops break the plain 1:1 index correspondence,
// so weights are picked by each epoch's source trigger ordinal.
func WeightsForEpochs(weights []float64, epochs []Epoch) ([]float64, error) {
	out := make([]float64, len(epochs))
	for i := range epochs {
		ord := epochs[i].TriggerOrdinal
		if ord < 0 || ord >= len(weights) {
			return nil, fmt.Errorf("no weight for trigger ordinal %d (%d weights)", ord, len(weights))
		}
		out[i] = weights[ord]
	}
	return out, nil
}
