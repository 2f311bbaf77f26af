package core

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi

	// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 TT).
	J2000 = 2451545.0
	// DaysPerCentury is the length of a Julian century.
	DaysPerCentury = 36525.0
)

// Normalize reduces an angle in degrees into [0,360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value plus 360 can round up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// AngleDiff returns a-b folded into (-180,180].
func AngleDiff(a, b float64) float64 {
	d := Normalize(a - b)
	if d > 180 {
		d -= 360
	}
	return d
}

// JulianCenturies returns centuries since J2000.0.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

func sind(d float64) float64 { return math.Sin(d * deg2rad) }
func cosd(d float64) float64 { return math.Cos(d * deg2rad) }
func tand(d float64) float64 { return math.Tan(d * deg2rad) }

func atan2d(y, x float64) float64 { return math.Atan2(y, x) * rad2deg }

// asind clamps its argument to [-1,1] before taking the arcsine.
func asind(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return math.Asin(x) * rad2deg
}

// Vec3 is a rectangular ecliptic vector, in AU unless stated otherwise.
type Vec3 struct {
	X, Y, Z float64
}

// VecFromSpherical builds a vector from longitude and latitude in degrees and
// a radius.
func VecFromSpherical(lon, lat, r float64) Vec3 {
	cl := cosd(lat)
	return Vec3{
		X: r * cl * cosd(lon),
		Y: r * cl * sind(lon),
		Z: r * sind(lat),
	}
}

// Spherical returns longitude [0,360), latitude and radius.
func (v Vec3) Spherical() (lon, lat, r float64) {
	r = v.Norm()
	if r == 0 {
		return 0, 0, 0
	}
	lon = Normalize(atan2d(v.Y, v.X))
	lat = atan2d(v.Z, math.Hypot(v.X, v.Y))
	return lon, lat, r
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}
