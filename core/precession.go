package core

// PrecessEcliptic carries ecliptic coordinates referred to the mean equinox
// and ecliptic of J2000.0 to those of jdTT (Meeus eq. 21.5 and 21.7).
func PrecessEcliptic(lon, lat, jdTT float64) (float64, float64) {
	t := JulianCenturies(jdTT)

	eta := horner(t, 0, 47.0029, -0.03302, 0.000060) / 3600
	pi := 174.876384 - horner(t, 0, 869.8089, -0.03536)/3600
	p := horner(t, 0, 5029.0966, 1.11113, -0.000006) / 3600

	a := cosd(eta)*cosd(lat)*sind(pi-lon) - sind(eta)*sind(lat)
	b := cosd(lat) * cosd(pi-lon)
	c := cosd(eta)*sind(lat) + sind(eta)*cosd(lat)*sind(pi-lon)

	return Normalize(p + pi - atan2d(a, b)), asind(c)
}
