package core

// GreenwichMeanSiderealTime returns GMST in hours [0,24) for a Julian Day (UT),
// using the IAU 1982 expression referred to J2000.0.
func GreenwichMeanSiderealTime(jdUT float64) float64 {
	t := JulianCenturies(jdUT)
	deg := 280.46061837 +
		360.98564736629*(jdUT-J2000) +
		0.000387933*t*t -
		t*t*t/38710000
	return Normalize(deg) / 15
}

// LocalSiderealTime returns the local sidereal time in degrees [0,360) for an
// east-positive geographic longitude. The result doubles as the ARMC.
func LocalSiderealTime(jdUT, geoLongitudeDeg float64) float64 {
	return Normalize(GreenwichMeanSiderealTime(jdUT)*15 + geoLongitudeDeg)
}

// LocalApparentSiderealTime adds the equation of the equinoxes, Δψ cos ε, to
// the local mean sidereal time. Nutation is evaluated at ToTT(jdUT).
func LocalApparentSiderealTime(jdUT, geoLongitudeDeg float64) float64 {
	jdTT := ToTT(jdUT)
	dpsi, _ := Nutation(jdTT)
	return Normalize(LocalSiderealTime(jdUT, geoLongitudeDeg) + dpsi*cosd(TrueObliquity(jdTT)))
}
