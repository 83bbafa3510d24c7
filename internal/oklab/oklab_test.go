package oklab

import (
	"math"
	"testing"
)

// TestRoundTripExhaustive checks FromWorking(ToWorking(x)) over the full
// 8-bit domain. The working space is continuous, so we allow a single
// count of rounding slack per channel.
func TestRoundTripExhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive sweep skipped in -short mode")
	}
	var worst int
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				L, a, bb := ToWorking(uint8(r), uint8(g), uint8(b))
				r2, g2, b2 := FromWorking(L, a, bb)
				d := absDiff(r, int(r2))
				if e := absDiff(g, int(g2)); e > d {
					d = e
				}
				if e := absDiff(b, int(b2)); e > d {
					d = e
				}
				if d > worst {
					worst = d
					if d > 1 {
						t.Fatalf("round trip (%d,%d,%d) -> (%d,%d,%d): off by %d",
							r, g, b, r2, g2, b2, d)
					}
				}
			}
		}
	}
	t.Logf("worst round-trip error: %d counts", worst)
}

// TestRoundTripGrayRamp requires the neutral axis to survive exactly:
// grading never touches a gray ramp through conversion alone.
func TestRoundTripGrayRamp(t *testing.T) {
	for v := 0; v < 256; v++ {
		L, a, b := ToWorking(uint8(v), uint8(v), uint8(v))
		r2, g2, b2 := FromWorking(L, a, b)
		if int(r2) != v || int(g2) != v || int(b2) != v {
			t.Fatalf("gray %d round-tripped to (%d,%d,%d)", v, r2, g2, b2)
		}
	}
}

// TestLandmarks pins the conversion to known Oklab reference values.
func TestLandmarks(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantL   float64
		wantA   float64
		wantB   float64
		tol     float64
	}{
		{"white", 255, 255, 255, 1.0, 0.0, 0.0, 1e-4},
		{"black", 0, 0, 0, 0.0, 0.0, 0.0, 1e-3},
		{"red", 255, 0, 0, 0.62796, 0.22486, 0.12585, 2e-3},
		{"green", 0, 255, 0, 0.86644, -0.23389, 0.17950, 2e-3},
		{"blue", 0, 0, 255, 0.45201, -0.03246, -0.31153, 2e-3},
	}
	for _, tc := range tests {
		L, a, b := ToWorking(tc.r, tc.g, tc.b)
		if math.Abs(L-tc.wantL) > tc.tol ||
			math.Abs(a-tc.wantA) > tc.tol ||
			math.Abs(b-tc.wantB) > tc.tol {
			t.Errorf("%s: got (%.5f, %.5f, %.5f), want (%.5f, %.5f, %.5f)",
				tc.name, L, a, b, tc.wantL, tc.wantA, tc.wantB)
		}
	}
}

// TestNeutralAxisChroma verifies grays carry essentially no chroma.
func TestNeutralAxisChroma(t *testing.T) {
	for v := 0; v < 256; v += 5 {
		_, a, b := ToWorking(uint8(v), uint8(v), uint8(v))
		if math.Abs(a) > 1e-6 || math.Abs(b) > 1e-6 {
			t.Fatalf("gray %d has chroma (%.2e, %.2e)", v, a, b)
		}
	}
}

// L must strictly increase along the gray ramp.
func TestLightnessMonotonic(t *testing.T) {
	prev := -1.0
	for v := 0; v < 256; v++ {
		L, _, _ := ToWorking(uint8(v), uint8(v), uint8(v))
		if L <= prev {
			t.Fatalf("L not increasing at gray %d: %.6f <= %.6f", v, L, prev)
		}
		prev = L
	}
}

func TestLUTMatchesFormula(t *testing.T) {
	for _, i := range []int{0, 1, 10, 11, 128, 200, 255} {
		c := float64(i) / 255
		var want float64
		if c <= 0.04045 {
			want = c / 12.92
		} else {
			want = math.Pow((c+0.055)/1.055, 2.4)
		}
		if got := srgbToLinear[i]; math.Abs(got-want) > 1e-15 {
			t.Errorf("lut[%d] = %.17g, want %.17g", i, got, want)
		}
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func BenchmarkToWorking(b *testing.B) {
	b.ReportAllocs()
	var sink float64
	for i := 0; i < b.N; i++ {
		L, _, _ := ToWorking(uint8(i), uint8(i>>8), uint8(i>>16))
		sink += L
	}
	_ = sink
}

func BenchmarkRoundTrip(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		L, a, bb := ToWorking(uint8(i), 128, 64)
		FromWorking(L, a, bb)
	}
}
