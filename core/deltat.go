package core

import "math"

// deltaTSegment is one polynomial of the Espenak & Meeus (2006) ΔT model,
// valid for decimal years in [from, to).
type deltaTSegment struct {
	from, to float64
	eval     func(y float64) float64
}

// blendYears is the width of the window centred on each segment join across
// which adjacent polynomials are interpolated, so ΔT has no steps.
const blendYears = 1.0

var deltaTSegments = []deltaTSegment{
	{math.Inf(-1), -500, longTermDeltaT},
	{-500, 500, func(y float64) float64 {
		u := y / 100
		return horner(u, 10583.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	}},
	{500, 1600, func(y float64) float64 {
		u := (y - 1000) / 100
		return horner(u, 1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	}},
	{1600, 1700, func(y float64) float64 {
		t := y - 1600
		return horner(t, 120, -0.9808, -0.01532, 1.0/7129)
	}},
	{1700, 1800, func(y float64) float64 {
		t := y - 1700
		return horner(t, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000)
	}},
	{1800, 1860, func(y float64) float64 {
		t := y - 1800
		return horner(t, 13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	}},
	{1860, 1900, func(y float64) float64 {
		t := y - 1860
		return horner(t, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174)
	}},
	{1900, 1920, func(y float64) float64 {
		t := y - 1900
		return horner(t, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	}},
	{1920, 1941, func(y float64) float64 {
		t := y - 1920
		return horner(t, 21.20, 0.84493, -0.076100, 0.0020936)
	}},
	{1941, 1961, func(y float64) float64 {
		t := y - 1950
		return horner(t, 29.07, 0.407, -1.0/233, 1.0/2547)
	}},
	{1961, 1986, func(y float64) float64 {
		t := y - 1975
		return horner(t, 45.45, 1.067, -1.0/260, -1.0/718)
	}},
	{1986, 2005, func(y float64) float64 {
		t := y - 2000
		return horner(t, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	}},
	{2005, 2050, func(y float64) float64 {
		t := y - 2000
		return horner(t, 62.92, 0.32217, 0.005589)
	}},
	{2050, 2150, func(y float64) float64 {
		return longTermDeltaT(y) - 0.5628*(2150-y)
	}},
	{2150, math.Inf(1), longTermDeltaT},
}

func longTermDeltaT(y float64) float64 {
	u := (y - 1820) / 100
	return -20 + 32*u*u
}

// horner evaluates c[0] + c[1]x + c[2]x² + ...
func horner(x float64, c ...float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}

// DecimalYear converts a Julian Day to a decimal Gregorian year.
func DecimalYear(jd float64) float64 {
	return 2000 + (jd-2451544.5)/365.2425
}

// DeltaT returns TT - UT in seconds for the given Julian Day (UT).
//
// Values after the last observed data are extrapolations.
func DeltaT(jdUT float64) float64 {
	y := DecimalYear(jdUT)
	for i, seg := range deltaTSegments {
		if y < seg.from || y >= seg.to {
			continue
		}
		if i > 0 && y < seg.from+blendYears/2 {
			return blend(deltaTSegments[i-1].eval, seg.eval, seg.from, y)
		}
		if i < len(deltaTSegments)-1 && y >= seg.to-blendYears/2 {
			return blend(seg.eval, deltaTSegments[i+1].eval, seg.to, y)
		}
		return seg.eval(y)
	}
	return longTermDeltaT(y)
}

// blend interpolates linearly from before to after across the window centred
// on join.
func blend(before, after func(float64) float64, join, y float64) float64 {
	w := (y - (join - blendYears/2)) / blendYears
	return (1-w)*before(y) + w*after(y)
}

// ToTT converts a Julian Day in UT to Terrestrial Time.
func ToTT(jdUT float64) float64 {
	return jdUT + DeltaT(jdUT)/86400
}
