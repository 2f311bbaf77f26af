package model

import "math"

// BodyPosition is a geocentric, apparent ecliptic position of date.
//
// Distance is in astronomical units for every body, the Moon included. Providers
// that work in kilometres convert before returning.
type BodyPosition struct {
	Body           Body
	Longitude      float64 // degrees, [0,360)
	Latitude       float64 // degrees
	Distance       float64 // AU
	LongitudeSpeed float64 // degrees/day, signed
	LatitudeSpeed  float64 // degrees/day
}

// Retrograde reports apparent backward motion.
func (p BodyPosition) Retrograde() bool {
	return p.LongitudeSpeed < 0
}

// Tolerance bounds the disagreement allowed between two positions of the same
// body at the same moment.
type Tolerance struct {
	Angle    float64 // degrees, longitude and latitude
	Distance float64 // AU
	Speed    float64 // degrees/day
}

// DefaultTolerance matches the six decimal places committed to by the export.
var DefaultTolerance = Tolerance{
	Angle:    0.0001,
	Distance: 1e-5,
	Speed:    0.0001,
}

// Divergence describes one field outside tolerance.
type Divergence struct {
	Field    string
	Expected float64
	Actual   float64
}

// Within compares p (expected) against actual and returns the fields that
// disagree. Longitudes are compared across the 0/360 seam.
func (p BodyPosition) Within(actual BodyPosition, tol Tolerance) []Divergence {
	var out []Divergence

	dl := math.Mod(actual.Longitude-p.Longitude, 360)
	if dl > 180 {
		dl -= 360
	} else if dl < -180 {
		dl += 360
	}
	if math.Abs(dl) > tol.Angle {
		out = append(out, Divergence{Field: "longitude", Expected: p.Longitude, Actual: actual.Longitude})
	}
	if math.Abs(actual.Latitude-p.Latitude) > tol.Angle {
		out = append(out, Divergence{Field: "latitude", Expected: p.Latitude, Actual: actual.Latitude})
	}
	if math.Abs(actual.Distance-p.Distance) > tol.Distance {
		out = append(out, Divergence{Field: "distance", Expected: p.Distance, Actual: actual.Distance})
	}
	if math.Abs(actual.LongitudeSpeed-p.LongitudeSpeed) > tol.Speed {
		out = append(out, Divergence{Field: "longitude_speed", Expected: p.LongitudeSpeed, Actual: actual.LongitudeSpeed})
	}
	if math.Abs(actual.LatitudeSpeed-p.LatitudeSpeed) > tol.Speed {
		out = append(out, Divergence{Field: "latitude_speed", Expected: p.LatitudeSpeed, Actual: actual.LatitudeSpeed})
	}
	return out
}
