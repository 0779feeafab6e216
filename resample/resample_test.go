package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func sineSignal(t *testing.T, rate float64, length int, freq float64) *eeg.Signal {
	t.Helper()
	data := make([]float64, length)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	s, err := eeg.NewSignal(rate, []string{"Fp1"}, [][]float64{data})
	require.NoError(t, err)
	return s
}

func TestUpsamplePreservesOriginalSamples(t *testing.T) {
	r := New()
	data := []float64{0.5, -1.25, 3.0, 0.0, 2.5}
	up := r.Upsample(data, 4)

	require.Len(t, up, len(data)*4)
	for i, v := range data {
		// Grid positions carry the input through bit-exactly
		assert.Equal(t, v, up[i*4], "sample %d", i)
	}
}

func TestUpsampleFactorOneIsCopy(t *testing.T) {
	r := New()
	data := []float64{1, 2, 3}
	up := r.Upsample(data, 1)
	assert.Equal(t, data, up)

	up[0] = 99
	assert.Equal(t, 1.0, data[0])
}

func TestRoundTripLaw(t *testing.T) {
	const (
		rate   = 250.0
		length = 2000
		factor = 10
	)

	signal := sineSignal(t, rate, length, 7)
	triggers, err := eeg.NewTriggerSet([]int{400, 800, 1200, 1600})
	require.NoError(t, err)

	policy, err := NewPolicy(factor)
	require.NoError(t, err)

	up, upTriggers, err := policy.EnsurePrecision(signal, triggers)
	require.NoError(t, err)

	assert.Equal(t, rate*factor, up.SampleRate)
	assert.Equal(t, length*factor, up.Length())
	assert.Equal(t, []int{4000, 8000, 12000, 16000}, upTriggers.Indices())

	// The inputs were not touched
	assert.Equal(t, []int{400, 800, 1200, 1600}, triggers.Indices())
	assert.Equal(t, length, signal.Length())

	restored, err := policy.Restore(up)
	require.NoError(t, err)

	// Rate and duration are reproduced exactly
	assert.Equal(t, rate, restored.SampleRate)
	assert.Equal(t, length, restored.Length())

	// Trigger indices survive the round trip exactly
	back := policy.RestoreTriggers(upTriggers)
	assert.Equal(t, triggers.Indices(), back.Indices())

	// Samples match outside the accepted edge-distortion region
	edge := policy.EdgeSamples()
	require.Greater(t, edge, 0)
	for i := edge; i < length-edge; i++ {
		assert.InDelta(t, signal.Data[0][i], restored.Data[0][i], 1e-2, "sample %d", i)
	}
}

func TestRoundTripConstantSignal(t *testing.T) {
	policy, err := NewPolicy(5)
	require.NoError(t, err)

	data := make([]float64, 500)
	for i := range data {
		data[i] = 3.25
	}
	signal, err := eeg.NewSignal(100, []string{"Fp1"}, [][]float64{data})
	require.NoError(t, err)

	triggers, err := eeg.NewTriggerSet([]int{100})
	require.NoError(t, err)

	up, _, err := policy.EnsurePrecision(signal, triggers)
	require.NoError(t, err)
	restored, err := policy.Restore(up)
	require.NoError(t, err)

	// Unit DC gain keeps constants exact even at the edges
	for i, v := range restored.Data[0] {
		assert.InDelta(t, 3.25, v, 1e-9, "sample %d", i)
	}
}

func TestPolicyFactorOnePassThrough(t *testing.T) {
	policy, err := NewPolicy(1)
	require.NoError(t, err)
	assert.Zero(t, policy.EdgeSamples())

	signal := sineSignal(t, 100, 200, 5)
	triggers, err := eeg.NewTriggerSet([]int{50, 150})
	require.NoError(t, err)

	up, upTriggers, err := policy.EnsurePrecision(signal, triggers)
	require.NoError(t, err)
	assert.Equal(t, signal.SampleRate, up.SampleRate)
	assert.Equal(t, signal.Data[0], up.Data[0])
	assert.Equal(t, triggers.Indices(), upTriggers.Indices())
}

func TestNewPolicyRejectsBadFactor(t *testing.T) {
	_, err := NewPolicy(0)
	require.Error(t, err)
	_, err = NewPolicy(-2)
	require.Error(t, err)
}

func TestRestoreTriggersRoundsToNearest(t *testing.T) {
	policy, err := NewPolicy(10)
	require.NoError(t, err)

	// 104 at the upsampled rate is 10.4 original samples -> 10;
	// 257 is 25.7 -> 26
	ts, err := eeg.NewTriggerSet([]int{104, 257})
	require.NoError(t, err)

	back := policy.RestoreTriggers(ts)
	assert.Equal(t, []int{10, 26}, back.Indices())
}
