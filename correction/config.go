package correction

import (
	"fmt"
)

// Config collects the knobs of a correction run. Zero values for the
// optional fields mean "derive a default" (window lengths) or "skip the
// stage" (filter cutoffs).
type Config struct {
	// WindowSize is the number of epochs averaged into each template
	WindowSize int `json:"window_size"`

	// RelWindowPosition offsets both the epoch window relative to its
	// trigger and the averaging neighborhood relative to the target
	// epoch, as a fraction of the respective window length; may be
	// negative to reach before the trigger
	RelWindowPosition float64 `json:"rel_window_position"`

	// EpochWindowLength is the artifact window in samples at the original
	// rate; 0 derives it from the mean trigger spacing
	EpochWindowLength int `json:"epoch_window_length"`

	// UpsamplingFactor brackets alignment and subtraction with
	// EnsurePrecision/Restore; must be > 1 for sub-sample alignment
	UpsamplingFactor int `json:"upsampling_factor"`

	// AlignPolicy selects integer or sub-sample trigger refinement
	AlignPolicy AlignPolicy `json:"align_policy"`

	// ReferenceTrigger is the index of the alignment reference occurrence
	ReferenceTrigger int `json:"reference_trigger"`

	// AlignWindow is the correlation window in samples at the original
	// rate; 0 derives it from the epoch window
	AlignWindow int `json:"align_window"`

	// AlignMaxShift bounds the trigger shift in samples at the original
	// rate; 0 defaults to one sample
	AlignMaxShift int `json:"align_max_shift"`

	// MotionThreshold is the Moosmann suppression threshold for motion-
	// weighted runs
	MotionThreshold float64 `json:"motion_threshold"`

	// HighPassHz, applied before correction when > 0
	HighPassHz float64 `json:"high_pass_hz"`

	// LowPassHz, applied after correction when > 0
	LowPassHz float64 `json:"low_pass_hz"`

	// ANCReference names the channel driving the optional adaptive noise
	// canceller; empty skips the stage
	ANCReference string `json:"anc_reference,omitempty"`
}

// DefaultConfig mirrors the parameter defaults of the published FACET
// pipeline: 25-epoch averaging window, tenfold upsampling with sub-sample
// alignment, motion threshold 5, 1 Hz high-pass and 50 Hz low-pass hooks.
func DefaultConfig() Config {
	return Config{
		WindowSize:       25,
		UpsamplingFactor: 10,
		AlignPolicy:      AlignSubSample,
		MotionThreshold:  5,
		HighPassHz:       1,
		LowPassHz:        50,
	}
}

// Validate rejects inconsistent configurations up front; the pipeline never
// falls back silently on an unknown strategy value.
func (c *Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("window_size must be >= 1, got %d", c.WindowSize)
	}
	if c.UpsamplingFactor < 1 {
		return fmt.Errorf("upsampling_factor must be >= 1, got %d", c.UpsamplingFactor)
	}
	if !c.AlignPolicy.valid() {
		return fmt.Errorf("unknown align_policy %d", c.AlignPolicy)
	}
	if c.AlignPolicy == AlignSubSample && c.UpsamplingFactor < 2 {
		return fmt.Errorf("sub-sample alignment requires upsampling_factor > 1, got %d", c.UpsamplingFactor)
	}
	if c.RelWindowPosition < -1 || c.RelWindowPosition > 1 {
		return fmt.Errorf("rel_window_position must be in [-1, 1], got %g", c.RelWindowPosition)
	}
	if c.EpochWindowLength < 0 {
		return fmt.Errorf("epoch_window_length must not be negative, got %d", c.EpochWindowLength)
	}
	if c.AlignWindow < 0 || c.AlignMaxShift < 0 {
		return fmt.Errorf("alignment window parameters must not be negative")
	}
	if c.MotionThreshold < 0 {
		return fmt.Errorf("motion_threshold must not be negative, got %g", c.MotionThreshold)
	}
	if c.ReferenceTrigger < 0 {
		return fmt.Errorf("reference_trigger must not be negative, got %d", c.ReferenceTrigger)
	}
	return nil
}
