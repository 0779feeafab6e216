package correction

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// AlignPolicy selects how precisely trigger onsets are refined.
type AlignPolicy int

const (
	// AlignInteger shifts triggers by whole samples of the stored signal.
	AlignInteger AlignPolicy = iota

	// AlignSubSample expects the signal to have been upsampled first, so
	// that one native-rate sample spans many stored samples and a rounded
	// shift lands with sub-sample precision at the native rate.
	AlignSubSample
)

func (p AlignPolicy) valid() bool {
	return p == AlignInteger || p == AlignSubSample
}

// fftThreshold is the correlation window size above which the aligner
// switches from time-domain correlation to the FFT path.
const fftThreshold = 1024

// Aligner refines trigger sample indices against a reference trigger by
// cross-correlating short signal windows around each onset.
type Aligner struct {
	policy AlignPolicy

	// windowSize is the correlation window length in samples of the
	// signal being aligned
	windowSize int

	// maxShift bounds the lag search on each side
	maxShift int

	// channel used for correlation; gradient artifacts are near-identical
	// across channels so one channel suffices
	channel int
}

// NewAligner creates an aligner. windowSize is the correlation window
// length, maxShift the largest shift considered, both in samples of the
// signal that will be aligned.
func NewAligner(policy AlignPolicy, windowSize, maxShift int) (*Aligner, error) {
	if !policy.valid() {
		return nil, fmt.Errorf("unknown alignment policy %d", policy)
	}
	if windowSize <= 2 {
		return nil, fmt.Errorf("alignment window must exceed 2 samples, got %d", windowSize)
	}
	if maxShift <= 0 || maxShift >= windowSize {
		return nil, fmt.Errorf("max shift must be in (0, window size), got %d", maxShift)
	}
	return &Aligner{policy: policy, windowSize: windowSize, maxShift: maxShift}, nil
}

// SetChannel selects the channel the correlation runs on.
func (a *Aligner) SetChannel(ch int) {
	a.channel = ch
}

// Align refines every trigger except the reference in place. For each
// trigger a window centered on its onset is correlated against the window
// around the reference trigger; the peak lag, refined by parabolic
// interpolation, moves the trigger's sample index. The trigger count and
// ordering are never changed.
func (a *Aligner) Align(signal *eeg.Signal, triggers *eeg.TriggerSet, referenceIndex int) error {
	if referenceIndex < 0 || referenceIndex >= triggers.Len() {
		return fmt.Errorf("%w: index %d with %d triggers",
			eeg.ErrInvalidReference, referenceIndex, triggers.Len())
	}
	if a.channel < 0 || a.channel >= signal.Channels() {
		return fmt.Errorf("%w: alignment channel %d with %d channels",
			eeg.ErrBadSignal, a.channel, signal.Channels())
	}

	reference, err := a.window(signal, triggers.At(referenceIndex).SampleIndex)
	if err != nil {
		return err
	}

	adjusted := 0
	for i := 0; i < triggers.Len(); i++ {
		if i == referenceIndex {
			continue
		}

		trig := triggers.At(i)
		win, err := a.window(signal, trig.SampleIndex)
		if err != nil {
			return err
		}

		shift, err := a.EstimateShift(win, reference)
		if err != nil {
			return err
		}

		rounded := int(math.Round(shift))
		if rounded != 0 {
			triggers.SetIndex(i, trig.SampleIndex+rounded)
			adjusted++
		}
	}

	logging.Debug("triggers aligned", logging.Fields{
		"reference": referenceIndex,
		"adjusted":  adjusted,
		"total":     triggers.Len(),
	})

	return nil
}

// window extracts the correlation window centered on a trigger onset.
func (a *Aligner) window(signal *eeg.Signal, center int) ([]float64, error) {
	half := a.windowSize / 2
	start := center - half
	end := start + a.windowSize
	if start < 0 || end > signal.Length() {
		return nil, fmt.Errorf("%w: window [%d, %d) with signal length %d",
			eeg.ErrInsufficientData, start, end, signal.Length())
	}
	return signal.Data[a.channel][start:end], nil
}

// EstimateShift returns the (possibly fractional) shift of win relative to
// the reference window that maximizes their cross-correlation. A positive
// shift means the artifact in win occurs later than in the reference, so
// the trigger index must grow by the shift to line up.
func (a *Aligner) EstimateShift(win, reference []float64) (float64, error) {
	if len(win) != len(reference) {
		return 0, fmt.Errorf("%w: window lengths %d and %d",
			eeg.ErrInsufficientData, len(win), len(reference))
	}

	var correlations []float64
	if len(win) >= fftThreshold {
		correlations = a.correlateFFT(win, reference)
	} else {
		correlations = a.correlateTimeDomain(win, reference)
	}

	// Peak over the lag grid [-maxShift, maxShift]
	peakIdx := 0
	for i, c := range correlations {
		if c > correlations[peakIdx] {
			peakIdx = i
		}
	}
	shift := float64(peakIdx - a.maxShift)

	if a.policy == AlignInteger {
		return shift, nil
	}

	// Parabolic vertex through the peak and its neighbors gives the
	// fractional part of the lag.
	if peakIdx > 0 && peakIdx < len(correlations)-1 {
		prev := correlations[peakIdx-1]
		curr := correlations[peakIdx]
		next := correlations[peakIdx+1]
		denom := prev - 2*curr + next
		if math.Abs(denom) > 1e-12 {
			shift += 0.5 * (prev - next) / denom
		}
	}

	return shift, nil
}

// correlateTimeDomain computes normalized cross-correlation for every lag
// in [-maxShift, maxShift], correlating the overlapping region only.
func (a *Aligner) correlateTimeDomain(win, reference []float64) []float64 {
	n := len(win)
	correlations := make([]float64, 2*a.maxShift+1)

	for li := range correlations {
		lag := li - a.maxShift

		var sum, sumWin, sumRef float64
		for i := 0; i < n; i++ {
			j := i + lag
			if j < 0 || j >= n {
				continue
			}
			// win sample at j against reference at i: positive lag
			// matches a window that lags behind the reference
			sum += win[j] * reference[i]
			sumWin += win[j] * win[j]
			sumRef += reference[i] * reference[i]
		}

		denom := math.Sqrt(sumWin * sumRef)
		if denom < 1e-12 {
			continue
		}
		correlations[li] = sum / denom
	}

	return correlations
}

// correlateFFT computes the same lag grid through the frequency domain:
// corr = IFFT(FFT(win) * conj(FFT(reference))), zero-padded to avoid
// circular wraparound inside the lag range.
func (a *Aligner) correlateFFT(win, reference []float64) []float64 {
	n := len(win)
	padded := nextPowerOf2(n + a.maxShift)

	w := make([]float64, padded)
	r := make([]float64, padded)
	copy(w, win)
	copy(r, reference)

	fw := fft.FFTReal(w)
	fr := fft.FFTReal(r)

	cross := make([]complex128, padded)
	for i := range cross {
		cross[i] = fw[i] * cmplx.Conj(fr[i])
	}
	corr := fft.IFFT(cross)

	// Energy normalization so the FFT path matches the time-domain scale
	// closely enough for peak picking
	var energyW, energyR float64
	for i := 0; i < n; i++ {
		energyW += win[i] * win[i]
		energyR += reference[i] * reference[i]
	}
	denom := math.Sqrt(energyW * energyR)

	correlations := make([]float64, 2*a.maxShift+1)
	if denom < 1e-12 {
		return correlations
	}

	for li := range correlations {
		lag := li - a.maxShift
		idx := lag
		if idx < 0 {
			idx += padded
		}
		correlations[li] = real(corr[idx]) / denom
	}

	return correlations
}

// nextPowerOf2 returns the next power of 2 greater than or equal to n.
func nextPowerOf2(n int) int {
	if n <= 0 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
