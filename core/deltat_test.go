package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaTKnownEras(t *testing.T) {
	testCases := []struct {
		name  string
		jd    float64
		want  float64
		delta float64
	}{
		{"J2000", 2451545.0, 63.8, 0.5},
		{"Einstein 1879", 2407422.951389, -4.8, 1.0},
		{"1900", 2415020.5, -2.8, 0.5},
		{"1970", 2440587.5, 40.2, 0.5},
		{"2022", 2459580.5, 72.6, 3.0},
		{"1800", 2378496.5, 13.7, 0.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, DeltaT(tc.jd), tc.delta)
		})
	}
}

func TestDeltaTIsContinuousAcrossSegments(t *testing.T) {
	const step = 1e-3 // years

	for _, seg := range deltaTSegments[1:] {
		join := seg.from
		prev := DeltaT(yearToJD(join - 1))
		for y := join - 1 + step; y <= join+1; y += step {
			cur := DeltaT(yearToJD(y))
			if jump := math.Abs(cur - prev); jump > 0.05 {
				t.Fatalf("ΔT jumps by %.3fs near %.3f (segment join %v)", jump, y, join)
			}
			prev = cur
		}
	}
}

func TestToTTAppliesDeltaTOnce(t *testing.T) {
	// A JD near 2.4e6 resolves to ~4e-5 s, so compare in seconds.
	for _, jd := range []float64{2451545.0, 2407422.951389, 2299160.5} {
		assert.InDelta(t, DeltaT(jd), (ToTT(jd)-jd)*86400, 1e-4, "JD %v", jd)
	}
}

func yearToJD(y float64) float64 {
	return 2451544.5 + (y-2000)*365.2425
}
