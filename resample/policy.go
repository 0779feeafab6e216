package resample

import (
	"fmt"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// Policy decides when rate conversion must bracket the correction stages.
// A factor of 1 is a valid configuration and turns both directions into
// pass-throughs (integer-sample alignment needs no upsampling).
type Policy struct {
	factor    int
	resampler *Resampler
}

// NewPolicy creates a resampling policy for the given integer factor.
func NewPolicy(factor int) (*Policy, error) {
	if factor < 1 {
		return nil, fmt.Errorf("upsampling factor must be >= 1, got %d", factor)
	}
	return &Policy{factor: factor, resampler: New()}, nil
}

// NewPolicyWithQuality creates a policy with an explicit kernel quality.
func NewPolicyWithQuality(factor, lobes int) (*Policy, error) {
	p, err := NewPolicy(factor)
	if err != nil {
		return nil, err
	}
	p.resampler = NewWithQuality(lobes)
	return p, nil
}

// Factor returns the configured integer factor.
func (p *Policy) Factor() int {
	return p.factor
}

// EdgeSamples returns the per-end width of the accepted boundary-distortion
// region, in samples at the original rate.
func (p *Policy) EdgeSamples() int {
	if p.factor == 1 {
		return 0
	}
	return p.resampler.EdgeSamples()
}

// EnsurePrecision upsamples the signal by the policy factor and returns it
// together with a new TriggerSet whose indices are scaled exactly by the
// same factor. The inputs are left untouched.
func (p *Policy) EnsurePrecision(signal *eeg.Signal, triggers *eeg.TriggerSet) (*eeg.Signal, *eeg.TriggerSet, error) {
	scaled := triggers.Clone()
	if p.factor == 1 {
		return signal.Clone(), scaled, nil
	}

	data := make([][]float64, signal.Channels())
	for ch := range signal.Data {
		data[ch] = p.resampler.Upsample(signal.Data[ch], p.factor)
	}

	out, err := eeg.NewSignal(signal.SampleRate*float64(p.factor), signal.ChannelNames, data)
	if err != nil {
		return nil, nil, err
	}
	out.TimeOrigin = signal.TimeOrigin

	scaled.Scale(p.factor)

	logging.Debug("signal upsampled", logging.Fields{
		"factor":   p.factor,
		"new_rate": out.SampleRate,
		"samples":  out.Length(),
	})

	return out, scaled, nil
}

// Restore decimates the signal back by the policy factor, undoing
// EnsurePrecision. Only the edge region reported by EdgeSamples may deviate
// from the pre-upsampling signal.
func (p *Policy) Restore(signal *eeg.Signal) (*eeg.Signal, error) {
	if p.factor == 1 {
		return signal.Clone(), nil
	}

	data := make([][]float64, signal.Channels())
	for ch := range signal.Data {
		data[ch] = p.resampler.Decimate(signal.Data[ch], p.factor)
	}

	out, err := eeg.NewSignal(signal.SampleRate/float64(p.factor), signal.ChannelNames, data)
	if err != nil {
		return nil, err
	}
	out.TimeOrigin = signal.TimeOrigin

	logging.Debug("signal restored to original rate", logging.Fields{
		"factor":   p.factor,
		"new_rate": out.SampleRate,
		"samples":  out.Length(),
	})

	return out, nil
}

// RestoreTriggers maps trigger indices back to the original rate. Aligned
// indices are not generally multiples of the factor anymore, so the division
// rounds to the nearest original-rate sample.
func (p *Policy) RestoreTriggers(triggers *eeg.TriggerSet) *eeg.TriggerSet {
	out := triggers.Clone()
	if p.factor == 1 {
		return out
	}
	for i := 0; i < out.Len(); i++ {
		idx := out.At(i).SampleIndex
		out.SetIndex(i, (idx+p.factor/2)/p.factor)
	}
	return out
}
