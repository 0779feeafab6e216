package eeg

import (
	"fmt"
)

// Trigger marks the onset of one MRI volume/slice acquisition.
type Trigger struct {
	// SampleIndex into the Signal the trigger was detected on
	SampleIndex int

	// Sequence is the epoch sequence number, assigned at construction
	Sequence int
}

// TriggerSet is an ordered set of trigger occurrences. Indices are
// non-decreasing and unique. The set is created once per correction run by
// trigger detection; only the aligner (index refinement) and the resampling
// policy (exact integer scaling) modify it afterwards.
type TriggerSet struct {
	triggers []Trigger
}

// NewTriggerSet builds a TriggerSet from sample indices, assigning sequence
// numbers in order. The indices must be sorted ascending and free of
// duplicates.
func NewTriggerSet(sampleIndices []int) (*TriggerSet, error) {
	if len(sampleIndices) == 0 {
		return nil, fmt.Errorf("%w: empty trigger list", ErrBadTriggers)
	}

	triggers := make([]Trigger, len(sampleIndices))
	for i, idx := range sampleIndices {
		if i > 0 {
			prev := sampleIndices[i-1]
			if idx < prev {
				return nil, fmt.Errorf("%w: unsorted index %d after %d", ErrBadTriggers, idx, prev)
			}
			if idx == prev {
				return nil, fmt.Errorf("%w: duplicate index %d", ErrBadTriggers, idx)
			}
		}
		triggers[i] = Trigger{SampleIndex: idx, Sequence: i}
	}

	return &TriggerSet{triggers: triggers}, nil
}

// Len returns the number of triggers.
func (ts *TriggerSet) Len() int {
	return len(ts.triggers)
}

// At returns the trigger at position i.
func (ts *TriggerSet) At(i int) Trigger {
	return ts.triggers[i]
}

// Indices returns a copy of all sample indices in order.
func (ts *TriggerSet) Indices() []int {
	out := make([]int, len(ts.triggers))
	for i, t := range ts.triggers {
		out[i] = t.SampleIndex
	}
	return out
}

// SetIndex moves trigger i to a new sample index. Reserved for the aligner;
// the count and ordering of triggers never changes.
func (ts *TriggerSet) SetIndex(i, sampleIndex int) {
	ts.triggers[i].SampleIndex = sampleIndex
}

// Scale multiplies every sample index by an integer factor. Exact by
// construction, no rounding loss. Used by the resampling policy.
func (ts *TriggerSet) Scale(factor int) {
	for i := range ts.triggers {
		ts.triggers[i].SampleIndex *= factor
	}
}

// Clone deep-copies the trigger set.
func (ts *TriggerSet) Clone() *TriggerSet {
	triggers := make([]Trigger, len(ts.triggers))
	copy(triggers, ts.triggers)
	return &TriggerSet{triggers: triggers}
}

// MeanSpacing returns the mean distance between consecutive triggers in
// samples. Used to derive a default artifact window length.
func (ts *TriggerSet) MeanSpacing() float64 {
	if len(ts.triggers) < 2 {
		return 0
	}
	total := ts.triggers[len(ts.triggers)-1].SampleIndex - ts.triggers[0].SampleIndex
	return float64(total) / float64(len(ts.triggers)-1)
}
