// Package trigger detects artifact-onset triggers in a recording's marker
// stream. The markers themselves come from the importer (an external
// collaborator); this package only pattern-matches their descriptions and
// converts onsets to sample indices.
package trigger

import (
	"fmt"
	"math"
	"regexp"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

// Annotation is one marker event from the recording's annotation stream.
type Annotation struct {
	// Onset in seconds relative to the signal's time origin
	Onset float64 `json:"onset"`

	// Description is the marker label, e.g. "Volume/V 1" or "Response/R128"
	Description string `json:"description"`
}

// Detector builds a TriggerSet by matching a pattern against marker
// descriptions.
type Detector struct {
	sampleRate float64
}

// NewDetector creates a detector for a recording at the given sampling rate.
func NewDetector(sampleRate float64) (*Detector, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %g", eeg.ErrBadSignal, sampleRate)
	}
	return &Detector{sampleRate: sampleRate}, nil
}

// Find matches pattern (a regular expression) against every annotation
// description and returns the triggers for the matching markers, in onset
// order. Fails if the pattern does not compile or matches nothing.
func (d *Detector) Find(annotations []Annotation, pattern string) (*eeg.TriggerSet, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid trigger pattern %q: %w", pattern, err)
	}

	var indices []int
	for _, ann := range annotations {
		if !re.MatchString(ann.Description) {
			continue
		}
		idx := int(math.Round(ann.Onset * d.sampleRate))
		if idx < 0 {
			return nil, fmt.Errorf("%w: marker %q has negative onset %gs",
				eeg.ErrBadTriggers, ann.Description, ann.Onset)
		}
		indices = append(indices, idx)
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: pattern %q matched no annotations", eeg.ErrBadTriggers, pattern)
	}

	logging.Info("triggers detected", logging.Fields{
		"pattern": pattern,
		"count":   len(indices),
	})

	return eeg.NewTriggerSet(indices)
}
