package filters

import (
	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// sampleFilter is the per-sample surface shared by the biquad sections.
type sampleFilter interface {
	Process(input float64) float64
	Reset()
}

// filtfilt runs the filter forward and then backward over the data. The
// second pass cancels the first pass's phase shift; EEG correction cannot
// tolerate phase distortion because it would smear artifact residuals in
// time. The effective attenuation is the square of the single-pass response.
func filtfilt(f sampleFilter, data []float64) []float64 {
	forward := make([]float64, len(data))
	f.Reset()
	for i, sample := range data {
		forward[i] = f.Process(sample)
	}

	out := make([]float64, len(data))
	f.Reset()
	for i := len(forward) - 1; i >= 0; i-- {
		out[i] = f.Process(forward[i])
	}

	return out
}

// HighPass returns a new Signal with every channel high-passed at the given
// cutoff using a zero-phase forward-backward biquad pass. The input signal
// is not modified.
func HighPass(signal *eeg.Signal, cutoffFreq float64) (*eeg.Signal, error) {
	hf, err := NewHighpassFilter(signal.SampleRate, cutoffFreq)
	if err != nil {
		return nil, err
	}

	data := make([][]float64, signal.Channels())
	for ch := range signal.Data {
		data[ch] = filtfilt(hf, signal.Data[ch])
	}

	logging.Debug("high-pass applied", logging.Fields{"cutoff_hz": cutoffFreq})
	return signal.WithData(data)
}

// LowPass returns a new Signal with every channel low-passed at the given
// cutoff using a zero-phase forward-backward biquad pass. The input signal
// is not modified.
func LowPass(signal *eeg.Signal, cutoffFreq float64) (*eeg.Signal, error) {
	lf, err := NewLowpassFilter(signal.SampleRate, cutoffFreq)
	if err != nil {
		return nil, err
	}

	data := make([][]float64, signal.Channels())
	for ch := range signal.Data {
		data[ch] = filtfilt(lf, signal.Data[ch])
	}

	logging.Debug("low-pass applied", logging.Fields{"cutoff_hz": cutoffFreq})
	return signal.WithData(data)
}
