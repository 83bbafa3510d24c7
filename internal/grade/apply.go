package grade

import (
	"image"

	"github.com/Yu62ballena/iroAwase/internal/oklab"
)

// Apply runs the calibrated transform over every pixel of img and
// returns a new buffer of the same dimensions. The input is never
// mutated; alpha passes through untouched.
func Apply(img *image.NRGBA, c Coefficients) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if c.Identity() {
		copyPixels(out, img)
		return out
	}

	w, h := bounds.Dx(), bounds.Dy()
	src := img.Pix
	dst := out.Pix
	srcStride := img.Stride
	dstStride := out.Stride

	for y := 0; y < h; y++ {
		so := y * srcStride
		do := y * dstStride
		for x := 0; x < w; x++ {
			r := src[so]
			g := src[so+1]
			b := src[so+2]
			a := src[so+3]

			L, ca, cb := oklab.ToWorking(r, g, b)

			// Lightness: affine, then contrast lift around the
			// expected output mean, then the shadow crush.
			nl := L*c.Scale[0] + c.Offset[0]
			nl = c.LiftPivot + (nl-c.LiftPivot)*c.LiftFactor
			nl *= c.shadowFactor(nl)
			if nl < 0 {
				nl = 0
			} else if nl > 1 {
				nl = 1
			}
			// Highlight gate on the lightness delta, keyed on the
			// original lightness: pure white stays pure white.
			hw := c.highlightWeight(L)
			nl = L + (nl-L)*hw

			// Chroma: affine candidate, masked toward the original
			// near both lightness extremes.
			na := ca*c.Scale[1] + c.Offset[1]
			nb := cb*c.Scale[2] + c.Offset[2]
			mw := c.maskWeight(L)
			na = ca + (na-ca)*mw
			nb = cb + (nb-cb)*mw

			nr, ng, nbb := oklab.FromWorking(nl, na, nb)
			dst[do] = nr
			dst[do+1] = ng
			dst[do+2] = nbb
			dst[do+3] = a

			so += 4
			do += 4
		}
	}
	return out
}

// copyPixels duplicates src into dst row by row; dst has origin (0,0)
// and the same dimensions.
func copyPixels(dst, src *image.NRGBA) {
	w := src.Bounds().Dx() * 4
	h := src.Bounds().Dy()
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}
