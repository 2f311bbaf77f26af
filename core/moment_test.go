package core

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMomentAppliesLocalMeanTime(t *testing.T) {
	// 11:30 local mean time at 10°E runs 40 minutes ahead of UT.
	m, err := NewMoment(1879, 3, 14, 11.5, 10.0/15)
	require.NoError(t, err)

	assert.True(t, m.Valid())
	assert.InDelta(t, 2407422.951389, m.JulianDayUT(), 5e-7)
	assert.Equal(t, "1879-03-14 11:30:00 +00:40", m.String())

	y, mo, d := m.Date()
	assert.Equal(t, []int{1879, 3, 14}, []int{y, mo, d})
	assert.Equal(t, 11.5, m.Hour())
}

func TestMomentTerrestrialTime(t *testing.T) {
	for _, jd := range []float64{2305447.5, 2407422.951389, 2451545.0, 2488069.5} {
		m, err := MomentFromJulianDay(jd)
		require.NoError(t, err)
		assert.InDelta(t, m.JulianDayUT()+m.DeltaT()/86400, m.JulianDayTT(), 1e-9)
		assert.Equal(t, DeltaT(jd), m.DeltaT())
	}
}

func TestNewMomentRejectsInvalidInput(t *testing.T) {
	testCases := []struct {
		name   string
		month  int
		day    int
		hour   float64
		offset float64
	}{
		{"offset too far east", 1, 1, 0, 14.5},
		{"offset too far west", 1, 1, 0, -15},
		{"nan offset", 1, 1, 0, math.NaN()},
		{"bad day", 2, 30, 0, 0},
		{"bad month", 13, 1, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMoment(2020, tc.month, tc.day, tc.hour, tc.offset)
			if !errors.Is(err, ErrInvalidMoment) {
				t.Fatalf("err = %v, want ErrInvalidMoment", err)
			}
			assert.False(t, m.Valid())
		})
	}
}

func TestMomentFromJulianDayRejectsNonFinite(t *testing.T) {
	for _, jd := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MomentFromJulianDay(jd)
		assert.ErrorIs(t, err, ErrInvalidMoment)
	}
}

func TestMomentFromTimeUsesUTC(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	local := time.Date(2000, 1, 1, 13, 0, 0, 0, zone)

	m, err := MomentFromTime(local)
	require.NoError(t, err)
	assert.InDelta(t, J2000, m.JulianDayUT(), 1e-9)
	assert.Equal(t, 0.0, m.UTCOffset())
	assert.Equal(t, "2000-01-01 12:00:00 +00:00", m.String())
}

func TestZeroMomentIsInvalid(t *testing.T) {
	var m Moment
	assert.False(t, m.Valid())
	assert.Equal(t, "invalid moment", m.String())
}
