package core

// MeanObliquity returns the mean obliquity of the ecliptic in degrees for a
// Julian Day (TT), IAU 1980.
func MeanObliquity(jdTT float64) float64 {
	t := JulianCenturies(jdTT)
	arcsec := horner(t, 84381.448, -46.8150, -0.00059, 0.001813)
	return arcsec / 3600
}

// Nutation returns the nutation in longitude and in obliquity, in degrees,
// from the four-term series of Meeus ch. 22 (good to 0.5″ and 0.1″).
func Nutation(jdTT float64) (dpsi, deps float64) {
	t := JulianCenturies(jdTT)
	omega := horner(t, 125.04452, -1934.136261, 0.0020708, 1.0/450000)
	l := 280.4665 + 36000.7698*t
	lp := 218.3165 + 481267.8813*t

	dpsi = -17.20*sind(omega) - 1.32*sind(2*l) - 0.23*sind(2*lp) + 0.21*sind(2*omega)
	deps = 9.20*cosd(omega) + 0.57*cosd(2*l) + 0.10*cosd(2*lp) - 0.09*cosd(2*omega)
	return dpsi / 3600, deps / 3600
}

// TrueObliquity is the mean obliquity corrected for nutation.
func TrueObliquity(jdTT float64) float64 {
	_, deps := Nutation(jdTT)
	return MeanObliquity(jdTT) + deps
}
