package core

import (
	"fmt"
	"math"
)

const (
	minYear = -4712
	maxYear = 9999
)

// ValidateDate checks a proleptic Gregorian calendar date and fractional hour.
func ValidateDate(year, month, day int, hour float64) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: year %d outside [%d, %d]", ErrInvalidMoment, year, minYear, maxYear)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d outside [1, 12]", ErrInvalidMoment, month)
	}
	if dim := DaysInMonth(year, month); day < 1 || day > dim {
		return fmt.Errorf("%w: day %d outside [1, %d] for %04d-%02d", ErrInvalidMoment, day, dim, year, month)
	}
	if math.IsNaN(hour) || hour < 0 || hour >= 24 {
		return fmt.Errorf("%w: hour %v outside [0, 24)", ErrInvalidMoment, hour)
	}
	return nil
}

// IsLeapYear applies the Gregorian rule to every year, including those before 1582.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of a month in the proleptic Gregorian calendar.
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// JulianDay converts a proleptic Gregorian date and fractional hour (UT) to a
// Julian Day number. There is no switch to the Julian calendar in 1582.
func JulianDay(year, month, day int, hour float64) (float64, error) {
	if err := ValidateDate(year, month, day, hour); err != nil {
		return 0, err
	}
	return julianDay(year, month, day, hour), nil
}

func julianDay(year, month, day int, hour float64) float64 {
	y, m := float64(year), float64(month)
	if month <= 2 {
		y--
		m += 12
	}
	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)
	d := float64(day) + hour/24
	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
}

// CalendarDate is the inverse of JulianDay.
func CalendarDate(jd float64) (year, month, day int, hour float64) {
	z := math.Floor(jd + 0.5)
	f := jd + 0.5 - z

	alpha := math.Floor((z - 1867216.25) / 36524.25)
	a := z + 1 + alpha - math.Floor(alpha/4)
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	day = int(b - d - math.Floor(30.6001*e))
	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}

	hour = f * 24
	if hour >= 24 {
		hour = math.Nextafter(24, 0)
	}
	return year, month, day, hour
}
