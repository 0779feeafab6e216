// Package resample provides integer-factor sample rate conversion and the
// precision policy that brackets sub-sample trigger alignment: upsample
// before aligning so a fractional-sample shift becomes many whole samples,
// restore the original rate once subtraction is done.
package resample

import (
	"math"
)

// Resampler performs integer-factor rate conversion using windowed sinc
// interpolation with a Blackman window.
type Resampler struct {
	// sincLobes is the number of sinc lobes on each side of the kernel.
	// More lobes means a sharper filter and a wider edge-effect region.
	sincLobes int
}

// DefaultLobes balances interpolation quality against kernel width.
const DefaultLobes = 16

// New creates a Resampler with default quality.
func New() *Resampler {
	return &Resampler{sincLobes: DefaultLobes}
}

// NewWithQuality creates a Resampler with the given number of sinc lobes,
// clamped to [4, 64].
func NewWithQuality(lobes int) *Resampler {
	if lobes < 4 {
		lobes = 4
	}
	if lobes > 64 {
		lobes = 64
	}
	return &Resampler{sincLobes: lobes}
}

// EdgeSamples returns the per-end width, in samples at the lower rate, of
// the region where kernel truncation distorts the converted signal.
func (r *Resampler) EdgeSamples() int {
	return r.sincLobes
}

// sinc computes sin(pi*x)/(pi*x) with proper handling at x=0.
func sinc(x float64) float64 {
	if math.Abs(x) < 1e-10 {
		return 1.0
	}
	pix := math.Pi * x
	return math.Sin(pix) / pix
}

// blackmanWindow computes the Blackman window value for x in [-1, 1],
// zero outside that range.
func blackmanWindow(x float64) float64 {
	if x < -1.0 || x > 1.0 {
		return 0.0
	}
	t := (x + 1.0) / 2.0
	return 0.42 - 0.5*math.Cos(2*math.Pi*t) + 0.08*math.Cos(4*math.Pi*t)
}

// Upsample raises the rate by an integer factor. Output sample j
// interpolates input position j/factor; positions that land exactly on an
// input sample reproduce it bit-exactly (the sinc kernel is zero at every
// other integer offset), which is what keeps the round-trip law exact for
// trigger-anchored samples.
func (r *Resampler) Upsample(data []float64, factor int) []float64 {
	if len(data) == 0 || factor <= 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	lobes := float64(r.sincLobes)
	out := make([]float64, len(data)*factor)

	for j := range out {
		pos := float64(j) / float64(factor)

		if j%factor == 0 {
			out[j] = data[j/factor]
			continue
		}

		lo := int(math.Ceil(pos - lobes))
		hi := int(math.Floor(pos + lobes))
		if lo < 0 {
			lo = 0
		}
		if hi > len(data)-1 {
			hi = len(data) - 1
		}

		sum := 0.0
		weightSum := 0.0
		for i := lo; i <= hi; i++ {
			x := pos - float64(i)
			w := sinc(x) * blackmanWindow(x/lobes)
			sum += data[i] * w
			weightSum += w
		}

		// Renormalizing compensates kernel truncation near the edges
		if weightSum != 0 {
			out[j] = sum / weightSum
		}
	}

	return out
}

// Decimate lowers the rate by an integer factor, applying a zero-phase
// windowed-sinc anti-aliasing filter before picking every factor-th sample.
// The kernel is normalized to unit DC gain so constant signals survive
// decimation exactly.
func (r *Resampler) Decimate(data []float64, factor int) []float64 {
	if len(data) == 0 || factor <= 1 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	halfWidth := r.sincLobes * factor
	kernel := make([]float64, 2*halfWidth+1)
	kernelSum := 0.0
	for m := -halfWidth; m <= halfWidth; m++ {
		w := sinc(float64(m)/float64(factor)) * blackmanWindow(float64(m)/float64(halfWidth))
		kernel[m+halfWidth] = w
		kernelSum += w
	}
	for i := range kernel {
		kernel[i] /= kernelSum
	}

	outLen := len(data) / factor
	out := make([]float64, outLen)

	for i := range out {
		center := i * factor
		sum := 0.0
		weightSum := 0.0
		for m := -halfWidth; m <= halfWidth; m++ {
			idx := center + m
			if idx < 0 || idx >= len(data) {
				continue
			}
			sum += data[idx] * kernel[m+halfWidth]
			weightSum += kernel[m+halfWidth]
		}
		if weightSum != 0 {
			out[i] = sum / weightSum
		}
	}

	return out
}
