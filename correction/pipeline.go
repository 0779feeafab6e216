package correction

import (
	"fmt"
	"math"

	"github.com/neurowav/gradcorr/eeg"
	"github.com/neurowav/gradcorr/filters"
	"github.com/neurowav/gradcorr/logging"
	"github.com/neurowav/gradcorr/resample"
)

// Result carries a completed correction run: the corrected signal at the
// original rate, the aligned triggers mapped back to that rate, and the
// run's diagnostics. The input signal is untouched, so the caller keeps the
// uncorrected recording for evaluation.
type Result struct {
	Corrected   *eeg.Signal
	Triggers    *eeg.TriggerSet
	Diagnostics eeg.Diagnostics
}

// Pipeline executes the correction stages strictly in sequence:
// (high-pass) -> upsample -> align -> extract -> estimate -> subtract ->
// downsample -> (low-pass) -> (adaptive cancellation). Each stage fully
// materializes its output before the next begins; signals move by
// ownership transfer and only the trigger set is refined in place, inside
// the aligner, as documented.
type Pipeline struct {
	cfg       Config
	policy    *resample.Policy
	canceller NoiseCanceller
}

// NewPipeline validates the configuration and prepares the resampling
// policy.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid correction config: %w", err)
	}

	factor := cfg.UpsamplingFactor
	if cfg.AlignPolicy == AlignInteger {
		// Integer alignment gains nothing from a higher rate
		factor = 1
	}
	policy, err := resample.NewPolicy(factor)
	if err != nil {
		return nil, err
	}

	return &Pipeline{cfg: cfg, policy: policy}, nil
}

// SetNoiseCanceller plugs an adaptive residual canceller into the final
// stage. Without one the stage is skipped explicitly.
func (p *Pipeline) SetNoiseCanceller(nc NoiseCanceller) {
	p.canceller = nc
}

// Run corrects the signal with uniform (standard AAS) weighting.
func (p *Pipeline) Run(signal *eeg.Signal, triggers *eeg.TriggerSet) (*Result, error) {
	return p.run(signal, triggers, nil)
}

// RunWithMotion corrects the signal with Moosmann motion weighting. motion
// holds one non-negative value per trigger, keyed by trigger ordinal.
func (p *Pipeline) RunWithMotion(signal *eeg.Signal, triggers *eeg.TriggerSet, motion []float64) (*Result, error) {
	if len(motion) != triggers.Len() {
		return nil, fmt.Errorf("%d motion values for %d triggers", len(motion), triggers.Len())
	}
	weights, err := MotionWeights(motion, p.cfg.MotionThreshold)
	if err != nil {
		return nil, err
	}
	return p.run(signal, triggers, weights)
}

func (p *Pipeline) run(signal *eeg.Signal, triggers *eeg.TriggerSet, triggerWeights []float64) (*Result, error) {
	if signal == nil || triggers == nil {
		return nil, fmt.Errorf("%w: nil signal or triggers", eeg.ErrBadSignal)
	}

	log := logging.WithFields(logging.Fields{
		"channels": signal.Channels(),
		"triggers": triggers.Len(),
	})
	log.Info("starting artifact correction")

	diags := eeg.Diagnostics{}
	work := signal

	if p.cfg.HighPassHz > 0 {
		filtered, err := filters.HighPass(work, p.cfg.HighPassHz)
		if err != nil {
			return nil, err
		}
		work = filtered
	}

	windowLength := p.cfg.EpochWindowLength
	if windowLength == 0 {
		spacing := triggers.MeanSpacing()
		if spacing <= 0 {
			return nil, fmt.Errorf("%w: cannot derive epoch window from %d trigger(s)",
				eeg.ErrBadTriggers, triggers.Len())
		}
		windowLength = int(math.Round(spacing))
	}

	up, upTriggers, err := p.policy.EnsurePrecision(work, triggers)
	if err != nil {
		return nil, err
	}
	diags.ResamplingEdgeSamples = p.policy.EdgeSamples()

	factor := p.policy.Factor()
	alignWindow := p.cfg.AlignWindow
	if alignWindow == 0 {
		alignWindow = windowLength
	}
	maxShift := p.cfg.AlignMaxShift
	if maxShift == 0 {
		maxShift = 1
	}

	aligner, err := NewAligner(p.cfg.AlignPolicy, alignWindow*factor, maxShift*factor)
	if err != nil {
		return nil, err
	}
	if err := aligner.Align(up, upTriggers, p.cfg.ReferenceTrigger); err != nil {
		return nil, err
	}

	extracted, err := Extract(up, upTriggers, windowLength*factor, p.cfg.RelWindowPosition)
	if err != nil {
		return nil, err
	}
	diags.DroppedTriggers = append(diags.DroppedTriggers, extracted.Dropped...)
	if len(extracted.Epochs) == 0 {
		return nil, fmt.Errorf("%w: every epoch fell outside the recording", eeg.ErrInsufficientData)
	}

	estimator, err := NewEstimator(p.cfg.WindowSize, p.cfg.RelWindowPosition)
	if err != nil {
		return nil, err
	}
	if triggerWeights != nil {
		epochWeights, err := WeightsForEpochs(triggerWeights, extracted.Epochs)
		if err != nil {
			return nil, err
		}
		if err := estimator.SetWeights(epochWeights); err != nil {
			return nil, err
		}
	}

	templates, estDiags, err := estimator.Estimate(extracted.Epochs)
	if err != nil {
		return nil, err
	}
	diags.Merge(estDiags)

	corrected, err := Subtract(up, extracted.Epochs, templates)
	if err != nil {
		return nil, err
	}

	restored, err := p.policy.Restore(corrected)
	if err != nil {
		return nil, err
	}
	outTriggers := p.policy.RestoreTriggers(upTriggers)

	if p.cfg.LowPassHz > 0 {
		filtered, err := filters.LowPass(restored, p.cfg.LowPassHz)
		if err != nil {
			return nil, err
		}
		restored = filtered
	}

	if p.canceller != nil {
		if p.cfg.ANCReference == "" {
			return nil, fmt.Errorf("noise canceller configured without anc_reference channel")
		}
		cleaned, err := p.canceller.Cancel(restored, p.cfg.ANCReference)
		if err != nil {
			return nil, err
		}
		restored = cleaned
	}

	log.Info("artifact correction finished", logging.Fields{
		"epochs":  len(extracted.Epochs),
		"dropped": len(diags.DroppedTriggers),
	})

	return &Result{
		Corrected:   restored,
		Triggers:    outTriggers,
		Diagnostics: diags,
	}, nil
}
