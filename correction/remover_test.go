package correction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurowav/gradcorr/eeg"
)

func TestSubtractOwnEpochYieldsZeros(t *testing.T) {
	signal := rampSignal(t, 60)
	triggers, err := eeg.NewTriggerSet([]int{10, 30})
	require.NoError(t, err)

	result, err := Extract(signal, triggers, 8, 0)
	require.NoError(t, err)

	// Templates equal to the epochs themselves
	templates := make([]Template, len(result.Epochs))
	for i := range result.Epochs {
		tmpl := make([]float64, result.Epochs[i].Length())
		copy(tmpl, result.Epochs[i].Channel(0))
		templates[i] = Template{Data: [][]float64{tmpl}}
	}

	corrected, err := Subtract(signal, result.Epochs, templates)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		inEpoch := (i >= 10 && i < 18) || (i >= 30 && i < 38)
		if inEpoch {
			assert.Zero(t, corrected.Data[0][i], "sample %d should be cancelled", i)
		} else {
			assert.Equal(t, signal.Data[0][i], corrected.Data[0][i],
				"sample %d outside any epoch must pass through", i)
		}
	}
}

func TestSubtractDoesNotMutateInput(t *testing.T) {
	signal := rampSignal(t, 40)
	triggers, err := eeg.NewTriggerSet([]int{10})
	require.NoError(t, err)

	result, err := Extract(signal, triggers, 5, 0)
	require.NoError(t, err)

	templates := []Template{{Data: [][]float64{{1, 1, 1, 1, 1}}}}
	_, err = Subtract(signal, result.Epochs, templates)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		assert.Equal(t, float64(i), signal.Data[0][i])
	}
}

func TestSubtractOverlapLastWriteWins(t *testing.T) {
	signal := rampSignal(t, 40)

	// Two overlapping epochs: [10, 18) and [14, 22)
	epochs := []Epoch{
		{TriggerOrdinal: 0, Start: 10, data: [][]float64{signal.Data[0][10:18]}},
		{TriggerOrdinal: 1, Start: 14, data: [][]float64{signal.Data[0][14:22]}},
	}
	templates := []Template{
		{Data: [][]float64{{1, 1, 1, 1, 1, 1, 1, 1}}},
		{Data: [][]float64{{2, 2, 2, 2, 2, 2, 2, 2}}},
	}

	corrected, err := Subtract(signal, epochs, templates)
	require.NoError(t, err)

	// Non-overlapping part of the first epoch: raw - 1
	for i := 10; i < 14; i++ {
		assert.Equal(t, float64(i)-1, corrected.Data[0][i], "sample %d", i)
	}
	// Overlap [14, 18): the later epoch's subtraction wins
	for i := 14; i < 22; i++ {
		assert.Equal(t, float64(i)-2, corrected.Data[0][i], "sample %d", i)
	}
}

func TestSubtractValidatesTemplateShape(t *testing.T) {
	signal := rampSignal(t, 40)
	triggers, err := eeg.NewTriggerSet([]int{10})
	require.NoError(t, err)

	result, err := Extract(signal, triggers, 5, 0)
	require.NoError(t, err)

	tests := []struct {
		name      string
		templates []Template
	}{
		{name: "count mismatch", templates: nil},
		{name: "length mismatch", templates: []Template{{Data: [][]float64{{1, 2}}}}},
		{name: "channel mismatch", templates: []Template{{Data: [][]float64{
			{1, 1, 1, 1, 1}, {2, 2, 2, 2, 2},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Subtract(signal, result.Epochs, tt.templates)
			require.ErrorIs(t, err, eeg.ErrInvalidTemplateShape)
		})
	}
}

func TestLMSCancellerRemovesCorrelatedInterference(t *testing.T) {
	const length = 4000
	ref := make([]float64, length)
	contaminated := make([]float64, length)
	for i := range ref {
		// Interference on the data channel is a scaled copy of the
		// reference channel
		ref[i] = osc(i)
		contaminated[i] = 0.8 * osc(i)
	}

	signal, err := eeg.NewSignal(250, []string{"Fp1", "ECG"}, [][]float64{contaminated, ref})
	require.NoError(t, err)

	canceller, err := NewLMSCanceller(8, 0.5)
	require.NoError(t, err)

	cleaned, err := canceller.Cancel(signal, "ECG")
	require.NoError(t, err)

	// After convergence the residual should be far below the interference
	tail := cleaned.Data[0][length/2:]
	var residual float64
	for _, v := range tail {
		residual += v * v
	}
	var before float64
	for _, v := range contaminated[length/2:] {
		before += v * v
	}
	assert.Less(t, residual, before/100)

	// Reference channel passes through untouched
	assert.Equal(t, ref, cleaned.Data[1])
}

func TestLMSCancellerUnknownReference(t *testing.T) {
	signal := rampSignal(t, 10)
	canceller, err := NewLMSCanceller(4, 0.5)
	require.NoError(t, err)

	_, err = canceller.Cancel(signal, "ECG")
	require.Error(t, err)
}

func TestNewLMSCancellerValidation(t *testing.T) {
	_, err := NewLMSCanceller(0, 0.5)
	require.Error(t, err)
	_, err = NewLMSCanceller(8, 0)
	require.Error(t, err)
	_, err = NewLMSCanceller(8, 2)
	require.Error(t, err)
}

// osc is a deterministic band-limited test waveform.
func osc(i int) float64 {
	x := float64(i)
	return math.Sin(2*math.Pi*x/50) + 0.3*math.Sin(2*math.Pi*x/13)
}
