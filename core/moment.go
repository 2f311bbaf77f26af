package core

import (
	"fmt"
	"math"
	"time"
)

// maxUTCOffset bounds civil and local-mean-time offsets, in hours.
const maxUTCOffset = 14.0

// Moment is an instant expressed as a civil date and its Julian Days.
// Construct it with NewMoment, NewMomentUT, MomentFromJulianDay or
// MomentFromTime; the zero value is not a valid Moment.
type Moment struct {
	year, month, day int
	hour             float64
	utcOffset        float64

	jdUT   float64
	deltaT float64
	jdTT   float64
	valid  bool
}

// NewMoment builds a Moment from a local civil date and fractional hour with
// the local clock running utcOffset hours ahead of UT (east positive). Local
// mean time at longitude L is expressed as utcOffset = L/15.
func NewMoment(year, month, day int, hour, utcOffset float64) (Moment, error) {
	if err := ValidateDate(year, month, day, hour); err != nil {
		return Moment{}, err
	}
	if math.IsNaN(utcOffset) || math.Abs(utcOffset) > maxUTCOffset {
		return Moment{}, fmt.Errorf("%w: utc offset %v outside [-%v, %v] hours", ErrInvalidMoment, utcOffset, maxUTCOffset, maxUTCOffset)
	}

	jdUT := julianDay(year, month, day, hour) - utcOffset/24
	m := Moment{
		year:      year,
		month:     month,
		day:       day,
		hour:      hour,
		utcOffset: utcOffset,
		jdUT:      jdUT,
		deltaT:    DeltaT(jdUT),
		valid:     true,
	}
	m.jdTT = jdUT + m.deltaT/86400
	return m, nil
}

// NewMomentUT builds a Moment from a date and fractional hour in UT.
func NewMomentUT(year, month, day int, hour float64) (Moment, error) {
	return NewMoment(year, month, day, hour, 0)
}

// MomentFromJulianDay builds a UT Moment from a Julian Day (UT).
func MomentFromJulianDay(jdUT float64) (Moment, error) {
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		return Moment{}, fmt.Errorf("%w: julian day %v", ErrInvalidMoment, jdUT)
	}
	y, mo, d, h := CalendarDate(jdUT)
	if err := ValidateDate(y, mo, d, h); err != nil {
		return Moment{}, err
	}
	m := Moment{
		year:   y,
		month:  mo,
		day:    d,
		hour:   h,
		jdUT:   jdUT,
		deltaT: DeltaT(jdUT),
		valid:  true,
	}
	m.jdTT = jdUT + m.deltaT/86400
	return m, nil
}

// MomentFromTime builds a UT Moment from a time.Time, which is converted to UTC.
func MomentFromTime(t time.Time) (Moment, error) {
	t = t.UTC()
	hour := float64(t.Hour()) +
		float64(t.Minute())/60 +
		(float64(t.Second())+float64(t.Nanosecond())/1e9)/3600
	return NewMomentUT(t.Year(), int(t.Month()), t.Day(), hour)
}

// Valid reports whether the Moment was produced by a constructor.
func (m Moment) Valid() bool { return m.valid }

// Date returns the civil (local) calendar date.
func (m Moment) Date() (year, month, day int) { return m.year, m.month, m.day }

// Hour returns the civil (local) fractional hour.
func (m Moment) Hour() float64 { return m.hour }

// UTCOffset returns the hours the civil clock runs ahead of UT.
func (m Moment) UTCOffset() float64 { return m.utcOffset }

// JulianDayUT returns the Julian Day in Universal Time.
func (m Moment) JulianDayUT() float64 { return m.jdUT }

// JulianDayTT returns the Julian Day in Terrestrial Time.
func (m Moment) JulianDayTT() float64 { return m.jdTT }

// DeltaT returns TT - UT in seconds.
func (m Moment) DeltaT() float64 { return m.deltaT }

// String renders the civil date, time and offset, e.g. "1879-03-14 11:30:00 +00:40".
func (m Moment) String() string {
	if !m.valid {
		return "invalid moment"
	}
	return fmt.Sprintf("%04d-%02d-%02d %s %s", m.year, m.month, m.day, formatClock(m.hour), formatOffset(m.utcOffset))
}

func formatClock(hour float64) string {
	secs := int(math.Round(hour * 3600))
	if secs >= 86400 {
		secs = 86399
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

func formatOffset(offset float64) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	mins := int(math.Round(offset * 60))
	return fmt.Sprintf("%s%02d:%02d", sign, mins/60, mins%60)
}
