package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func TestDetectorFindsMatchingMarkers(t *testing.T) {
	annotations := []Annotation{
		{Onset: 0.5, Description: "Response/R128"},
		{Onset: 1.0, Description: "Volume/V 1"},
		{Onset: 2.0, Description: "Volume/V 2"},
		{Onset: 2.5, Description: "Comment/noise"},
		{Onset: 3.0, Description: "Volume/V 3"},
	}

	d, err := NewDetector(250)
	require.NoError(t, err)

	triggers, err := d.Find(annotations, `^Volume/V`)
	require.NoError(t, err)

	require.Equal(t, 3, triggers.Len())
	assert.Equal(t, []int{250, 500, 750}, triggers.Indices())
}

func TestDetectorRoundsOnsetsToNearestSample(t *testing.T) {
	d, err := NewDetector(100)
	require.NoError(t, err)

	triggers, err := d.Find([]Annotation{
		{Onset: 0.113, Description: "T"},
		{Onset: 0.508, Description: "T"},
	}, "T")
	require.NoError(t, err)

	assert.Equal(t, []int{11, 51}, triggers.Indices())
}

func TestDetectorErrors(t *testing.T) {
	d, err := NewDetector(250)
	require.NoError(t, err)

	_, err = d.Find([]Annotation{{Onset: 1, Description: "x"}}, "(")
	require.Error(t, err, "invalid pattern must not compile")

	_, err = d.Find([]Annotation{{Onset: 1, Description: "x"}}, "Volume")
	require.ErrorIs(t, err, eeg.ErrBadTriggers)

	_, err = NewDetector(0)
	require.Error(t, err)
}

func TestDetectorRejectsNegativeOnsets(t *testing.T) {
	d, err := NewDetector(250)
	require.NoError(t, err)

	_, err = d.Find([]Annotation{
		{Onset: -0.02, Description: "Volume/V 1"},
		{Onset: 1.0, Description: "Volume/V 2"},
	}, `^Volume/V`)
	require.ErrorIs(t, err, eeg.ErrBadTriggers)
	assert.Contains(t, err.Error(), "negative onset")

	// An onset that rounds to sample 0 is still valid
	triggers, err := d.Find([]Annotation{
		{Onset: 0.001, Description: "Volume/V 1"},
		{Onset: 1.0, Description: "Volume/V 2"},
	}, `^Volume/V`)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 250}, triggers.Indices())
}
