// Package imgstat reduces an image to per-channel mean and standard
// deviation in the Oklab working space.
//
// One pass over the pixels, float64 sum + sum-of-squares accumulation.
// Optionally skips clipped pixels (all display channels within a few
// counts of 0 or 255) so blown highlights and crushed shadows do not
// drive the color match. Extraction never fails: an image with zero
// qualifying pixels yields the neutral sentinel (mean 0, std 1).
package imgstat

import (
	"image"
	"math"

	"github.com/Yu62ballena/iroAwase/internal/oklab"
)

// Clip thresholds for the exclusion policy, in 8-bit display counts.
// A pixel is excluded only when all three channels sit inside one of
// the bands, i.e. it reads as uniformly crushed or uniformly blown.
const (
	clipLow  = 8
	clipHigh = 247
)

// Stats holds per-channel mean and standard deviation in the working
// space (index 0 = L, 1 = a, 2 = b) for one image at one resolution.
type Stats struct {
	Mean    [3]float64
	Std     [3]float64
	Samples int
}

// Sentinel is the fallback for a zero-sample extraction: neutral mean,
// unit spread, so every downstream ratio degrades to a no-op.
func Sentinel() Stats {
	return Stats{Mean: [3]float64{0, 0, 0}, Std: [3]float64{1, 1, 1}}
}

// Extract computes working-space statistics for img. When excludeClipped
// is set, uniformly crushed or blown pixels are left out of the sample.
func Extract(img *image.NRGBA, excludeClipped bool) Stats {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Sentinel()
	}

	var sum, sumSq [3]float64
	n := 0

	pix := img.Pix
	stride := img.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			r := pix[off]
			g := pix[off+1]
			b := pix[off+2]
			off += 4

			if excludeClipped && isClipped(r, g, b) {
				continue
			}

			L, a, bb := oklab.ToWorking(r, g, b)
			sum[0] += L
			sum[1] += a
			sum[2] += bb
			sumSq[0] += L * L
			sumSq[1] += a * a
			sumSq[2] += bb * bb
			n++
		}
	}

	if n == 0 {
		return Sentinel()
	}

	var s Stats
	s.Samples = n
	inv := 1 / float64(n)
	for i := 0; i < 3; i++ {
		mean := sum[i] * inv
		s.Mean[i] = mean
		// Guard the variance against negative float residue.
		v := sumSq[i]*inv - mean*mean
		if v < 0 {
			v = 0
		}
		s.Std[i] = math.Sqrt(v)
	}
	return s
}

func isClipped(r, g, b uint8) bool {
	if r <= clipLow && g <= clipLow && b <= clipLow {
		return true
	}
	return r >= clipHigh && g >= clipHigh && b >= clipHigh
}
