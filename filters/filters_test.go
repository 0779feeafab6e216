package filters

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

func rmsOf(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}

func sineData(rate, freq float64, length int) []float64 {
	data := make([]float64, length)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return data
}

func TestHighpassAttenuatesSlowDrift(t *testing.T) {
	const rate = 250.0
	drift := sineData(rate, 0.05, 5000)

	signal, err := eeg.NewSignal(rate, []string{"Fp1"}, [][]float64{drift})
	require.NoError(t, err)

	filtered, err := HighPass(signal, 1)
	require.NoError(t, err)

	// Interior samples only, away from the forward-backward pass's edge
	// transients
	assert.Less(t, rmsOf(filtered.Data[0][500:4500]), rmsOf(drift)/10,
		"0.05 Hz drift should be strongly attenuated by a 1 Hz high-pass")
}

func TestHighpassKeepsPassband(t *testing.T) {
	const rate = 250.0
	alpha := sineData(rate, 10, 5000)

	signal, err := eeg.NewSignal(rate, []string{"Fp1"}, [][]float64{alpha})
	require.NoError(t, err)

	filtered, err := HighPass(signal, 1)
	require.NoError(t, err)

	// 10 Hz is far into the passband of a 1 Hz high-pass
	assert.InDelta(t, rmsOf(alpha[500:4500]), rmsOf(filtered.Data[0][500:4500]),
		0.05*rmsOf(alpha))
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	const rate = 250.0
	fast := sineData(rate, 100, 5000)

	signal, err := eeg.NewSignal(rate, []string{"Fp1"}, [][]float64{fast})
	require.NoError(t, err)

	filtered, err := LowPass(signal, 50)
	require.NoError(t, err)

	assert.Less(t, rmsOf(filtered.Data[0][500:4500]), rmsOf(fast)/5)
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	const rate = 250.0
	data := sineData(rate, 10, 1000)
	original := make([]float64, len(data))
	copy(original, data)

	signal, err := eeg.NewSignal(rate, []string{"Fp1"}, [][]float64{data})
	require.NoError(t, err)

	_, err = HighPass(signal, 1)
	require.NoError(t, err)
	_, err = LowPass(signal, 50)
	require.NoError(t, err)

	assert.Equal(t, original, signal.Data[0])
}

func TestFilterParameterValidation(t *testing.T) {
	tests := []struct {
		name   string
		rate   float64
		cutoff float64
	}{
		{"zero cutoff", 250, 0},
		{"cutoff at nyquist", 250, 125},
		{"cutoff above nyquist", 250, 200},
		{"zero rate", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHighpassFilter(tt.rate, tt.cutoff)
			require.Error(t, err)
			_, err = NewLowpassFilter(tt.rate, tt.cutoff)
			require.Error(t, err)
		})
	}
}

func TestBiquadResetClearsState(t *testing.T) {
	hf, err := NewHighpassFilter(250, 1)
	require.NoError(t, err)

	first := hf.ProcessBuffer([]float64{1, 2, 3, 4})
	hf.Reset()
	second := hf.ProcessBuffer([]float64{1, 2, 3, 4})

	assert.Equal(t, first, second)
}
