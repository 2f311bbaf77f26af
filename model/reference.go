package model

// ReferenceDocument is the exported reference dataset: one record per Julian
// Day, keyed by the Julian Day rendered as a string.
type ReferenceDocument struct {
	Generator   string                `json:"generator"`
	Version     string                `json:"version"`
	GeneratedAt string                `json:"generated_at,omitempty"`
	Planets     []string              `json:"planets"`
	Dates       map[string]DateRecord `json:"dates"`
}

// DateRecord holds everything computed for one moment.
type DateRecord struct {
	Description       string                    `json:"description"`
	JD                float64                   `json:"jd"`
	Positions         map[string]PositionRecord `json:"positions"`
	Failures          map[string]string         `json:"failures,omitempty"`
	Houses            *HouseRecord              `json:"houses,omitempty"`
	HousesUnavailable string                    `json:"houses_unavailable,omitempty"`
}

// PositionRecord is the serialised form of a BodyPosition.
type PositionRecord struct {
	Longitude      float64 `json:"longitude"`
	Latitude       float64 `json:"latitude"`
	Distance       float64 `json:"distance"`
	LongitudeSpeed float64 `json:"longitude_speed"`
	LatitudeSpeed  float64 `json:"latitude_speed"`
	IsRetrograde   bool    `json:"is_retrograde"`
}

// Position converts the record back into a BodyPosition for body.
func (r PositionRecord) Position(body Body) BodyPosition {
	return BodyPosition{
		Body:           body,
		Longitude:      r.Longitude,
		Latitude:       r.Latitude,
		Distance:       r.Distance,
		LongitudeSpeed: r.LongitudeSpeed,
		LatitudeSpeed:  r.LatitudeSpeed,
	}
}

// HouseRecord is the serialised house system plus the inputs that produced it.
type HouseRecord struct {
	Ascendant    float64     `json:"ascendant"`
	Midheaven    float64     `json:"midheaven"`
	ARMC         float64     `json:"armc"`
	Vertex       float64     `json:"vertex"`
	Cusps        [12]float64 `json:"cusps"`
	SiderealTime float64     `json:"sidereal_time"`
	Obliquity    float64     `json:"obliquity"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
}
