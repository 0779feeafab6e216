package eeg

// Diagnostics collects the non-fatal events of a correction run: epochs
// dropped at the signal boundary, weight neighborhoods that degenerated to
// unweighted averaging, and resampling edge distortion. Consumed by the
// host's evaluation/export layer; never raised as errors.
type Diagnostics struct {
	// DroppedTriggers lists the sequence numbers of triggers whose epoch
	// window fell outside the recording and was excluded
	DroppedTriggers []int `json:"dropped_triggers,omitempty"`

	// WeightFallbacks lists epoch positions whose averaging neighborhood
	// had zero total weight and fell back to uniform weighting
	WeightFallbacks []int `json:"weight_fallbacks,omitempty"`

	// ResamplingEdgeSamples is the per-end width, in samples at the original
	// rate, of the region where the interpolation filter's edge effects may
	// distort the round-tripped signal
	ResamplingEdgeSamples int `json:"resampling_edge_samples,omitempty"`
}

// Merge folds another diagnostics record into this one.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.DroppedTriggers = append(d.DroppedTriggers, other.DroppedTriggers...)
	d.WeightFallbacks = append(d.WeightFallbacks, other.WeightFallbacks...)
	if other.ResamplingEdgeSamples > d.ResamplingEdgeSamples {
		d.ResamplingEdgeSamples = other.ResamplingEdgeSamples
	}
}
