package correction

import (
	"fmt"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// Subtract removes each epoch's template from a copy of the signal and
// returns the corrected copy; the input signal is never modified, so the
// host can keep the uncorrected recording for evaluation. Regions not
// covered by any epoch pass through unchanged.
//
// Templates may come from Estimate or be supplied externally (cached or
// precomputed); shapes are validated either way. When two epochs overlap,
// subtraction proceeds in ascending epoch order and each epoch writes
// raw - template, so the later epoch's correction wins in the overlap —
// a deterministic last-write-wins tie-break.
func Subtract(signal *eeg.Signal, epochs []Epoch, templates []Template) (*eeg.Signal, error) {
	if len(templates) != len(epochs) {
		return nil, fmt.Errorf("%w: %d templates for %d epochs",
			eeg.ErrInvalidTemplateShape, len(templates), len(epochs))
	}

	for i := range templates {
		if len(templates[i].Data) != epochs[i].Channels() {
			return nil, fmt.Errorf("%w: template %d has %d channels, epoch has %d",
				eeg.ErrInvalidTemplateShape, i, len(templates[i].Data), epochs[i].Channels())
		}
		for ch := range templates[i].Data {
			if len(templates[i].Data[ch]) != epochs[i].Length() {
				return nil, fmt.Errorf("%w: template %d channel %d has %d samples, epoch has %d",
					eeg.ErrInvalidTemplateShape, i, ch, len(templates[i].Data[ch]), epochs[i].Length())
			}
		}
		if len(templates[i].Data) != signal.Channels() {
			return nil, fmt.Errorf("%w: template %d has %d channels, signal has %d",
				eeg.ErrInvalidTemplateShape, i, len(templates[i].Data), signal.Channels())
		}
		if epochs[i].Start < 0 || epochs[i].Start+epochs[i].Length() > signal.Length() {
			return nil, fmt.Errorf("%w: epoch %d spans [%d, %d) outside signal of length %d",
				eeg.ErrInsufficientData, i, epochs[i].Start,
				epochs[i].Start+epochs[i].Length(), signal.Length())
		}
	}

	corrected := signal.Clone()

	for i := range epochs {
		start := epochs[i].Start
		length := epochs[i].Length()
		for ch := range templates[i].Data {
			raw := signal.Data[ch][start : start+length]
			out := corrected.Data[ch][start : start+length]
			tmpl := templates[i].Data[ch]
			for s := 0; s < length; s++ {
				out[s] = raw[s] - tmpl[s]
			}
		}
	}

	logging.Info("artifact templates subtracted", logging.Fields{
		"epochs":   len(epochs),
		"channels": signal.Channels(),
	})

	return corrected, nil
}
