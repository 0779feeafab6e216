package correction

import (
	"fmt"
	"math"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// Epoch is a fixed-length window of the signal anchored at one trigger. It
// references the parent signal's sample storage without copying; template
// estimation reads through the view and only the subtraction stage writes,
// into a separate copy of the signal.
type Epoch struct {
	// TriggerOrdinal is the sequence number of the source trigger. After
	// boundary drops the epoch slice is no longer in 1:1 correspondence
	// with the trigger set, so each epoch carries its origin.
	TriggerOrdinal int

	// Start is the window's first sample index in the parent signal
	Start int

	// data is indexed [channel][sample within window]
	data [][]float64
}

// Length returns the window length in samples.
func (e *Epoch) Length() int {
	if len(e.data) == 0 {
		return 0
	}
	return len(e.data[0])
}

// Channels returns the channel count.
func (e *Epoch) Channels() int {
	return len(e.data)
}

// Channel returns the window's view of one channel.
func (e *Epoch) Channel(ch int) []float64 {
	return e.data[ch]
}

// ExtractResult is the outcome of epoch extraction: the surviving epochs in
// trigger order plus the ordinals of triggers whose window fell outside the
// recording.
type ExtractResult struct {
	Epochs  []Epoch
	Dropped []int
}

// Extract slices the signal into one epoch per trigger. The window for a
// trigger starts at trigger + floor(relWindowPosition*windowLength);
// relWindowPosition may be negative to begin the window before the trigger.
// Triggers whose window would leave [0, signal length) are dropped, counted
// and logged, never read out of range.
func Extract(signal *eeg.Signal, triggers *eeg.TriggerSet, windowLength int, relWindowPosition float64) (*ExtractResult, error) {
	if windowLength <= 0 {
		return nil, fmt.Errorf("window length must be positive, got %d", windowLength)
	}

	offset := int(math.Floor(relWindowPosition * float64(windowLength)))
	signalLen := signal.Length()

	result := &ExtractResult{}
	for i := 0; i < triggers.Len(); i++ {
		trig := triggers.At(i)
		start := trig.SampleIndex + offset

		if start < 0 || start+windowLength > signalLen {
			result.Dropped = append(result.Dropped, trig.Sequence)
			logging.Debug("epoch dropped at signal boundary", logging.Fields{
				"trigger": trig.Sequence,
				"start":   start,
				"length":  windowLength,
			})
			continue
		}

		data := make([][]float64, signal.Channels())
		for ch := range signal.Data {
			data[ch] = signal.Data[ch][start : start+windowLength]
		}

		result.Epochs = append(result.Epochs, Epoch{
			TriggerOrdinal: trig.Sequence,
			Start:          start,
			data:           data,
		})
	}

	if len(result.Dropped) > 0 {
		logging.Warn("epochs excluded at signal boundary", logging.Fields{
			"dropped": len(result.Dropped),
			"kept":    len(result.Epochs),
		})
	}

	return result, nil
}
