// Package grade derives and applies the statistical color transfer: a
// per-channel affine transform in the Oklab working space plus shadow
// crush, contrast lift, and luminance masking.
package grade

import (
	"github.com/Yu62ballena/iroAwase/internal/imgstat"
)

// Coefficients is the calibrated transform for one (reference, target,
// parameters) tuple. Pure value; two calibrations with identical inputs
// are bit-identical.
type Coefficients struct {
	// Scale and Offset form the per-channel affine transform
	// (0 = L, 1 = a, 2 = b): v' = v*Scale[i] + Offset[i].
	Scale  [3]float64
	Offset [3]float64

	// ShadowAmount is the premixed crush strength at zero lightness;
	// the curve ramps linearly from no-op at ShadowCutoff down to
	// (1 - ShadowAmount) at L = 0.
	ShadowAmount float64
	ShadowCutoff float64

	// LiftFactor stretches lightness around LiftPivot, the expected
	// output mean; pivoting there keeps a uniform image a fixed point
	// of the transfer.
	LiftFactor float64
	LiftPivot  float64

	// Mask thresholds, copied from the tuning so Apply needs only
	// the coefficients.
	HighlightMaskStart float64
	ShadowMaskStart    float64
}

// Identity reports whether the coefficients leave every pixel unchanged.
func (c Coefficients) Identity() bool {
	return c.Scale == [3]float64{1, 1, 1} &&
		c.Offset == [3]float64{0, 0, 0} &&
		c.ShadowAmount == 0 &&
		c.LiftFactor == 1
}

// clampParam brings a user-facing 0-100 slider value into range.
func clampParam(v int) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return float64(v)
}

// Calibrate derives transfer coefficients from reference and target
// statistics. intensity and shadowStrength are 0-100 sliders; 50 is the
// standard strength, 0 the identity, 100 the strongest effect the caps
// allow.
func Calibrate(ref, tgt imgstat.Stats, intensity, shadowStrength int, tun Tuning) Coefficients {
	// intensity 50 -> 1.0 (standard), 100 -> 2.0 (strongest).
	strength := clampParam(intensity) / 50

	// The mean shift saturates at a full match; pushing past that
	// would overshoot the reference instead of approaching it.
	meanShift := strength * tun.MeanBlend
	if meanShift > 1 {
		meanShift = 1
	}
	// Shadow crush and contrast lift reach full effect at the
	// standard strength.
	unit := strength
	if unit > 1 {
		unit = 1
	}

	c := Coefficients{
		ShadowCutoff:       tun.ShadowCutoff,
		LiftFactor:         1 + (tun.ContrastLift-1)*unit,
		HighlightMaskStart: tun.HighlightMaskStart,
		ShadowMaskStart:    tun.ShadowMaskStart,
	}
	c.ShadowAmount = clampParam(shadowStrength) / 100 * tun.ShadowGain * unit
	if c.ShadowAmount > 1 {
		c.ShadowAmount = 1
	}

	for i := 0; i < 3; i++ {
		refStd := ref.Std[i]
		if refStd > tun.RefStdCeiling {
			refStd = tun.RefStdCeiling
		}

		raw := 1.0
		if tgt.Std[i] > tun.StdEpsilon {
			raw = refStd / tgt.Std[i]
		}
		if raw < tun.ScaleMin {
			raw = tun.ScaleMin
		}
		if raw > tun.ScaleMax {
			raw = tun.ScaleMax
		}

		scale := 1 + (raw-1)*tun.ScaleBlend*strength
		if scale < tun.ScaleMin {
			scale = tun.ScaleMin
		}
		if scale > tun.ScaleMax {
			scale = tun.ScaleMax
		}

		c.Scale[i] = scale
		c.Offset[i] = (ref.Mean[i] - tgt.Mean[i]*scale) * meanShift
	}
	c.LiftPivot = tgt.Mean[0]*c.Scale[0] + c.Offset[0]

	if strength == 0 {
		// Zero intensity is the exact identity regardless of float
		// residue in the blend arithmetic.
		c.Scale = [3]float64{1, 1, 1}
		c.Offset = [3]float64{0, 0, 0}
		c.ShadowAmount = 0
		c.LiftFactor = 1
	}
	return c
}

// shadowFactor is the multiplicative crush for a lightness value:
// 1.0 at or above the cutoff, ramping down to (1 - ShadowAmount) at
// zero lightness, floored at 0.
func (c Coefficients) shadowFactor(l float64) float64 {
	if c.ShadowAmount == 0 || l >= c.ShadowCutoff {
		return 1
	}
	t := l / c.ShadowCutoff
	if t < 0 {
		t = 0
	}
	f := 1 - c.ShadowAmount*(1-t)
	if f < 0 {
		return 0
	}
	return f
}

// maskWeight is the chroma blend weight for an original lightness:
// 1.0 in the midtones, decaying linearly to 0 as the pixel approaches
// pure black or pure white. Keeps new color out of pixels where added
// chroma reads as mud.
func (c Coefficients) maskWeight(l float64) float64 {
	w := 1.0
	if l > c.HighlightMaskStart {
		w = (1 - l) / (1 - c.HighlightMaskStart)
	} else if l < c.ShadowMaskStart {
		w = l / c.ShadowMaskStart
	}
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// highlightWeight gates the lightness delta at the white end only, so a
// blown highlight is never pushed off pure white by the transfer while
// the shadow crush stays fully effective near black.
func (c Coefficients) highlightWeight(l float64) float64 {
	if l <= c.HighlightMaskStart {
		return 1
	}
	w := (1 - l) / (1 - c.HighlightMaskStart)
	if w < 0 {
		return 0
	}
	return w
}
