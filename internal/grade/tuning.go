package grade

// Tuning holds the empirical constants of the transfer. They define the
// visual output contract: change one and every graded image changes.
// Centralized here so presets or remote configuration can swap them as
// a block.
type Tuning struct {
	// RefStdCeiling caps the reference standard deviation before it
	// enters any ratio. Working-space units.
	RefStdCeiling float64

	// ScaleMin/ScaleMax bound the per-channel contrast ratio so a
	// nearly flat target channel cannot be amplified without limit.
	ScaleMin float64
	ScaleMax float64

	// StdEpsilon is the smallest target deviation considered real;
	// below it the ratio degrades to the neutral 1.0.
	StdEpsilon float64

	// ScaleBlend and MeanBlend soften how much of the statistical
	// ratio and of the mean shift are applied. Overcorrecting the
	// mean reads harsher than overcorrecting contrast, so the two
	// are tuned independently.
	ScaleBlend float64
	MeanBlend  float64

	// ShadowCutoff is the lightness below which the shadow crush
	// ramps in; ShadowGain maps the 0-100 slider to a usable range
	// of compression at zero lightness.
	ShadowCutoff float64
	ShadowGain   float64

	// ContrastLift stretches lightness around the midpoint to
	// counteract the flatness introduced by averaging.
	ContrastLift float64

	// HighlightMaskStart / ShadowMaskStart are the lightness levels
	// where the chroma blend weight starts decaying toward zero at
	// the white and black ends.
	HighlightMaskStart float64
	ShadowMaskStart    float64
}

// DefaultTuning returns the standard constants.
func DefaultTuning() Tuning {
	return Tuning{
		RefStdCeiling:      0.18,
		ScaleMin:           1.0 / 3.0,
		ScaleMax:           3.0,
		StdEpsilon:         1e-4,
		ScaleBlend:         0.8,
		MeanBlend:          0.7,
		ShadowCutoff:       0.66,
		ShadowGain:         1.25,
		ContrastLift:       1.06,
		HighlightMaskStart: 0.85,
		ShadowMaskStart:    0.12,
	}
}
