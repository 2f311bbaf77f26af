package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/ephemref/model"
	"github.com/signalsfoundry/ephemref/timectrl"
)

// FormatVersion is written to every exported document.
const FormatVersion = "1"

// DefaultGenerator names the producer in exported documents.
const DefaultGenerator = "ephemref"

// exportDecimals is the fixed precision of every exported number except the
// Julian Day itself.
const exportDecimals = 6

// ExportOptions control document metadata. A nil Clock omits generated_at,
// which keeps repeated exports byte-identical.
type ExportOptions struct {
	Generator string
	Clock     timectrl.Clock
}

// Export writes ds as indented JSON.
func Export(w io.Writer, ds *Dataset, opts ExportOptions) error {
	doc, err := ToDocument(ds, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode reference document: %w", err)
	}
	return nil
}

// ToDocument converts ds into its serialisable form, rounding every value to
// six decimals.
func ToDocument(ds *Dataset, opts ExportOptions) (*model.ReferenceDocument, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil dataset")
	}
	gen := opts.Generator
	if gen == "" {
		gen = DefaultGenerator
	}

	doc := &model.ReferenceDocument{
		Generator: gen,
		Version:   FormatVersion,
		Planets:   make([]string, 0, len(ds.Bodies)),
		Dates:     make(map[string]model.DateRecord, len(ds.Records)),
	}
	if opts.Clock != nil {
		doc.GeneratedAt = opts.Clock.Now().UTC().Format(time.RFC3339)
	}
	for _, b := range ds.Bodies {
		doc.Planets = append(doc.Planets, b.String())
	}

	for _, r := range ds.Records {
		key := JulianDayKey(r.JulianDay())
		if _, dup := doc.Dates[key]; dup {
			return nil, fmt.Errorf("%w: key %s", ErrDuplicateMoment, key)
		}

		rec := model.DateRecord{
			Description: r.Description,
			JD:          r.JulianDay(),
			Positions:   make(map[string]model.PositionRecord, len(r.Positions)),
		}
		for body, p := range r.Positions {
			rec.Positions[body.String()] = model.PositionRecord{
				Longitude:      roundAngle(p.Longitude),
				Latitude:       round(p.Latitude),
				Distance:       round(p.Distance),
				LongitudeSpeed: round(p.LongitudeSpeed),
				LatitudeSpeed:  round(p.LatitudeSpeed),
				IsRetrograde:   p.Retrograde(),
			}
		}
		if len(r.Failures) > 0 {
			rec.Failures = make(map[string]string, len(r.Failures))
			for body, err := range r.Failures {
				rec.Failures[body.String()] = err.Error()
			}
		}
		switch {
		case r.Houses != nil:
			h := r.Houses
			hr := &model.HouseRecord{
				Ascendant:    roundAngle(h.Ascendant),
				Midheaven:    roundAngle(h.Midheaven),
				ARMC:         roundAngle(h.ARMC),
				Vertex:       roundAngle(h.Vertex),
				SiderealTime: roundAngle(h.SiderealTime),
				Obliquity:    round(h.Obliquity),
				Latitude:     round(h.Location.Latitude),
				Longitude:    round(h.Location.Longitude),
			}
			for i, c := range h.Cusps {
				hr.Cusps[i] = roundAngle(c)
			}
			rec.Houses = hr
		case r.HousesErr != nil:
			rec.HousesUnavailable = r.HousesErr.Error()
		}
		doc.Dates[key] = rec
	}
	return doc, nil
}

// Load parses an exported reference document.
func Load(r io.Reader) (*model.ReferenceDocument, error) {
	var doc model.ReferenceDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode reference document: %w", err)
	}
	if doc.Dates == nil {
		return nil, fmt.Errorf("reference document has no dates")
	}
	for key, rec := range doc.Dates {
		if JulianDayKey(rec.JD) != key {
			return nil, fmt.Errorf("date key %q does not match jd %v", key, rec.JD)
		}
	}
	return &doc, nil
}

// JulianDayKey renders a Julian Day with the shortest exact representation,
// always including a decimal point: 2451545 becomes "2451545.0".
func JulianDayKey(jd float64) string {
	s := strconv.FormatFloat(jd, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round(x float64) float64 {
	p := math.Pow10(exportDecimals)
	r := math.Round(x*p) / p
	if r == 0 {
		return 0 // no negative zero in the output
	}
	return r
}

// roundAngle rounds an ecliptic or equatorial angle and keeps it in
// [0, 360): values just below 360 that round up wrap to 0.
func roundAngle(x float64) float64 {
	r := round(x)
	if r >= 360 {
		r -= 360
	}
	return round(r)
}
