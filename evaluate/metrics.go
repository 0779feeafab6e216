// Package evaluate quantifies how well artifact correction worked. The
// measures compare the corrected recording against the uncorrected one and
// against an artifact-free reference section (typically the pre-scan part
// of the recording, before the first trigger). No plotting, no file I/O:
// the host wires the numbers into whatever reporting it uses.
package evaluate

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/neurowav/gradcorr/correction"
	"github.com/neurowav/gradcorr/eeg"
)

// Section is a sample range [Start, End) selecting the part of a recording
// a measure runs on, e.g. the artifact section versus the pre-scan
// reference section.
type Section struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// slice cuts the section out of every channel, clamped to the signal.
func (s Section) slice(signal *eeg.Signal) ([][]float64, error) {
	start, end := s.Start, s.End
	if end == 0 || end > signal.Length() {
		end = signal.Length()
	}
	if start < 0 || start >= end {
		return nil, fmt.Errorf("invalid section [%d, %d) for signal of length %d",
			s.Start, s.End, signal.Length())
	}
	out := make([][]float64, signal.Channels())
	for ch := range signal.Data {
		out[ch] = signal.Data[ch][start:end]
	}
	return out, nil
}

// SNR estimates the signal-to-noise ratio of the corrected recording: for
// each channel, the reference section's power divided by the residual power
// the correction left behind (corrected power minus reference power),
// median across channels. Values grow as the residual shrinks.
func SNR(corrected *eeg.Signal, artifact, reference Section) (float64, error) {
	art, err := artifact.slice(corrected)
	if err != nil {
		return 0, err
	}
	ref, err := reference.slice(corrected)
	if err != nil {
		return 0, err
	}

	ratios := make([]float64, len(art))
	for ch := range art {
		powerCorrected := stat.Variance(art[ch], nil)
		powerReference := stat.Variance(ref[ch], nil)
		powerResidual := powerCorrected - powerReference
		if powerResidual == 0 {
			ratios[ch] = math.Inf(1)
			continue
		}
		ratios[ch] = math.Abs(powerReference / powerResidual)
	}

	return median(ratios), nil
}

// RMSCorrectionRatio is the per-channel ratio of uncorrected to corrected
// RMS over the artifact section, median across channels. Large values mean
// the correction removed most of the artifact energy.
func RMSCorrectionRatio(uncorrected, corrected *eeg.Signal, artifact Section) (float64, error) {
	if uncorrected.Channels() != corrected.Channels() {
		return 0, fmt.Errorf("%w: %d vs %d channels",
			eeg.ErrBadSignal, uncorrected.Channels(), corrected.Channels())
	}

	raw, err := artifact.slice(uncorrected)
	if err != nil {
		return 0, err
	}
	corr, err := artifact.slice(corrected)
	if err != nil {
		return 0, err
	}

	ratios := make([]float64, len(raw))
	for ch := range raw {
		corrRMS := rms(corr[ch])
		if corrRMS == 0 {
			ratios[ch] = math.Inf(1)
			continue
		}
		ratios[ch] = rms(raw[ch]) / corrRMS
	}

	return median(ratios), nil
}

// RMSResidualRatio is the per-channel ratio of corrected-section RMS to
// reference-section RMS, median across channels. Values near 1 mean the
// corrected signal's amplitude matches unimpaired EEG.
func RMSResidualRatio(corrected *eeg.Signal, artifact, reference Section) (float64, error) {
	corr, err := artifact.slice(corrected)
	if err != nil {
		return 0, err
	}
	ref, err := reference.slice(corrected)
	if err != nil {
		return 0, err
	}

	ratios := make([]float64, len(corr))
	for ch := range corr {
		refRMS := rms(ref[ch])
		if refRMS == 0 {
			ratios[ch] = math.Inf(1)
			continue
		}
		ratios[ch] = rms(corr[ch]) / refRMS
	}

	return median(ratios), nil
}

// MedianImagingArtifact measures the median artifact magnitude: for every
// epoch the peak-to-peak amplitude per channel, averaged across channels,
// then the median across epochs. Run on the uncorrected signal it gauges
// artifact size; on the corrected signal, the residual.
func MedianImagingArtifact(signal *eeg.Signal, triggers *eeg.TriggerSet, windowLength int, relWindowPosition float64) (float64, error) {
	extracted, err := correction.Extract(signal, triggers, windowLength, relWindowPosition)
	if err != nil {
		return 0, err
	}
	if len(extracted.Epochs) == 0 {
		return 0, fmt.Errorf("%w: no epochs inside the recording", eeg.ErrInsufficientData)
	}

	meanP2P := make([]float64, len(extracted.Epochs))
	for i := range extracted.Epochs {
		epoch := &extracted.Epochs[i]
		total := 0.0
		for ch := 0; ch < epoch.Channels(); ch++ {
			samples := epoch.Channel(ch)
			total += floats.Max(samples) - floats.Min(samples)
		}
		meanP2P[i] = total / float64(epoch.Channels())
	}

	return median(meanP2P), nil
}

func rms(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}

func median(data []float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
