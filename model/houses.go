package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLocation reports a latitude or longitude outside its range.
var ErrInvalidLocation = errors.New("invalid location")

// GeoLocation is an observer position on Earth, in degrees.
type GeoLocation struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`   // north positive
	Longitude float64 `json:"longitude" yaml:"longitude"` // east positive
}

// Validate checks latitude in [-90,90] and longitude in [-180,360].
func (g GeoLocation) Validate() error {
	if math.IsNaN(g.Latitude) || g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidLocation, g.Latitude)
	}
	if math.IsNaN(g.Longitude) || g.Longitude < -180 || g.Longitude > 360 {
		return fmt.Errorf("%w: longitude %v outside [-180, 360]", ErrInvalidLocation, g.Longitude)
	}
	return nil
}

// HouseSystemResult holds the angles and cusps of a house system. All values
// are ecliptic longitudes in [0,360) except ARMC, which is a right ascension.
type HouseSystemResult struct {
	Ascendant float64
	Midheaven float64
	ARMC      float64
	Vertex    float64

	// Cusps[0] is house 1.
	Cusps [12]float64
}

// Cusp returns the cusp of house n (1..12).
func (h HouseSystemResult) Cusp(n int) float64 {
	return h.Cusps[n-1]
}

// Sign is one of the twelve tropical zodiac signs, Aries = 0.
type Sign int

const (
	Aries Sign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var signNames = [12]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

func (s Sign) String() string {
	if s < Aries || s > Pisces {
		return fmt.Sprintf("Sign(%d)", int(s))
	}
	return signNames[s]
}

// Abbrev returns the three letter form, e.g. "Sco".
func (s Sign) Abbrev() string {
	return s.String()[:3]
}

// ZodiacPosition is a formatting view of a longitude.
type ZodiacPosition struct {
	Sign   Sign
	Degree float64 // [0,30)
}
