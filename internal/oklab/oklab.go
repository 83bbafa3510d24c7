// Package oklab converts between display-referred 8-bit sRGB and the Oklab
// working space used for all grading math.
//
// Performance design:
//   - 256-entry sRGB→linear LUT, filled once in init (per pixel per channel
//     the decode side is a table read, never a Pow)
//   - float64 throughout; the transfer contract is defined in float64
//   - no allocations; both directions are pure functions of their inputs
//   - round trip FromWorking(ToWorking(x)) is within ±1 count over the
//     full 8-bit domain
//
// Lightness L is in [0,1] for in-gamut sRGB input; the a/b opponent
// channels are roughly within [-0.4, 0.4].
package oklab

import "math"

// srgbToLinear maps an 8-bit sRGB channel to linear light.
// Two-segment sRGB EOTF: linear below the knee, power law above.
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		c := float64(i) / 255
		if c <= 0.04045 {
			srgbToLinear[i] = c / 12.92
		} else {
			srgbToLinear[i] = math.Pow((c+0.055)/1.055, 2.4)
		}
	}
}

// lmsFloor keeps the cube root away from the flat spot at zero.
const lmsFloor = 1e-12

// ToWorking converts an 8-bit sRGB triple to Oklab (L, a, b).
func ToWorking(r, g, b uint8) (float64, float64, float64) {
	lr := srgbToLinear[r]
	lg := srgbToLinear[g]
	lb := srgbToLinear[b]

	// Linear sRGB → cone-like LMS.
	l := 0.4122214708*lr + 0.5363325363*lg + 0.0514459929*lb
	m := 0.2119034982*lr + 0.6806995451*lg + 0.1073969566*lb
	s := 0.0883024619*lr + 0.2817188376*lg + 0.6299787005*lb

	if l < lmsFloor {
		l = lmsFloor
	}
	if m < lmsFloor {
		m = lmsFloor
	}
	if s < lmsFloor {
		s = lmsFloor
	}

	lc := math.Cbrt(l)
	mc := math.Cbrt(m)
	sc := math.Cbrt(s)

	// Nonlinear LMS → Lab.
	okL := 0.2104542553*lc + 0.7936177850*mc - 0.0040720468*sc
	okA := 1.9779984951*lc - 2.4285922050*mc + 0.4505937099*sc
	okB := 0.0259040371*lc + 0.7827717662*mc - 0.8086757660*sc

	return okL, okA, okB
}

// FromWorking converts Oklab (L, a, b) back to an 8-bit sRGB triple,
// clamping each channel to [0,255]. Exact inverse of ToWorking up to
// 8-bit rounding.
func FromWorking(okL, okA, okB float64) (uint8, uint8, uint8) {
	lc := okL + 0.3963377774*okA + 0.2158037573*okB
	mc := okL - 0.1055613458*okA - 0.0638541728*okB
	sc := okL - 0.0894841775*okA - 1.2914855480*okB

	l := lc * lc * lc
	m := mc * mc * mc
	s := sc * sc * sc

	// Nonlinear LMS cubed → linear sRGB.
	lr := 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	lg := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	lb := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return linearToSRGB8(lr), linearToSRGB8(lg), linearToSRGB8(lb)
}

// linearToSRGB8 applies the sRGB OETF and quantizes to 8 bits.
func linearToSRGB8(c float64) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	var e float64
	if c <= 0.0031308 {
		e = c * 12.92
	} else {
		e = 1.055*math.Pow(c, 1.0/2.4) - 0.055
	}
	v := math.Round(e * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
