package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/dataset"
	"github.com/signalsfoundry/ephemref/model"
)

const sampleYAML = `
bodies: [Sun, Moon, Mercury, Mean Node]
workers: 2
moments:
  - description: J2000.0
    jd: 2451545.0
  - description: Einstein
    date: "1879-03-14"
    time: "11:30"
    utc_offset: "+00:40"
    location: {latitude: 48.4, longitude: 10.0}
  - description: Impossible
    date: "2021-02-30"
sweep:
  description: daily
  start: 2000-01-01T00:00:00Z
  step: 24h
  count: 3
  location: {latitude: -33.9, longitude: 18.4}
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, dataset.DefaultGenerator, c.Generator)
	assert.Equal(t, 2, c.Workers)

	bodies, err := c.BodyList()
	require.NoError(t, err)
	assert.Equal(t, []model.Body{model.Sun, model.Moon, model.Mercury, model.MeanNode}, bodies)
}

func TestEntries(t *testing.T) {
	c, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 6)

	assert.Equal(t, "J2000.0", entries[0].Description)
	require.NoError(t, entries[0].Err)
	assert.Equal(t, core.J2000, entries[0].Moment.JulianDayUT())
	assert.Nil(t, entries[0].Location)

	require.NoError(t, entries[1].Err)
	assert.InDelta(t, 2407422.951389, entries[1].Moment.JulianDayUT(), 5e-7)
	require.NotNil(t, entries[1].Location)
	assert.Equal(t, 48.4, entries[1].Location.Latitude)

	// The impossible date stays in the list so the build reports it.
	assert.Equal(t, "Impossible", entries[2].Description)
	assert.ErrorIs(t, entries[2].Err, core.ErrInvalidMoment)

	for i, e := range entries[3:] {
		require.NoError(t, e.Err)
		assert.InDelta(t, core.J2000-0.5+float64(i), e.Moment.JulianDayUT(), 1e-9)
		assert.Contains(t, e.Description, "daily #")
		require.NotNil(t, e.Location)
		assert.Equal(t, -33.9, e.Location.Latitude)
	}
	assert.Equal(t, "daily #1 2000-01-01T00:00:00Z", entries[3].Description)
}

func TestDefaultBodiesArePlanets(t *testing.T) {
	c, err := Parse([]byte("moments: [{description: x, jd: 2451545}]"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	bodies, err := c.BodyList()
	require.NoError(t, err)
	assert.Equal(t, model.Planets, bodies)
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"empty", "generator: x"},
		{"unknown body", "bodies: [Vulcan]\nmoments: [{jd: 2451545}]"},
		{"negative workers", "workers: -1\nmoments: [{jd: 2451545}]"},
		{"jd and date", `moments: [{jd: 2451545, date: "2000-01-01"}]`},
		{"neither jd nor date", "moments: [{description: nothing}]"},
		{"time with jd", `moments: [{jd: 2451545, time: "12:00"}]`},
		{"bad location", "moments: [{jd: 2451545, location: {latitude: 91, longitude: 0}}]"},
		{"sweep without start", "sweep: {count: 2, step: 1h}"},
		{"sweep bad step", "sweep: {start: 2000-01-01T00:00:00Z, count: 2, step: soon}"},
		{"sweep zero step", "sweep: {start: 2000-01-01T00:00:00Z, count: 2}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Parse([]byte(tc.yaml))
			require.NoError(t, err)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "err = %v", err)

	_, err = Load(writeConfig(t, "moments: [unterminated"))
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, err := ParseClock("11:30")
	require.NoError(t, err)
	assert.Equal(t, 11.5, h)

	h, err = ParseClock("23:59:30.5")
	require.NoError(t, err)
	assert.InDelta(t, 23+59.0/60+30.5/3600, h, 1e-12)

	for _, s := range []string{"24:00", "12", "12:60", "a:b", "1:2:3:4", "12:00:60"} {
		_, err := ParseClock(s)
		assert.ErrorIs(t, err, core.ErrInvalidMoment, s)
	}
}

func TestParseUTCOffset(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
	}{
		{"+00:40", 40.0 / 60},
		{"-05:30", -5.5},
		{"09:00", 9},
		{"Z", 0},
		{"", 0},
		{"-3.5", -3.5},
	}
	for _, tc := range testCases {
		got, err := ParseUTCOffset(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-12, tc.in)
	}

	for _, s := range []string{"+5:75", "east", "+:30"} {
		_, err := ParseUTCOffset(s)
		assert.ErrorIs(t, err, core.ErrInvalidMoment, s)
	}
}

func TestParseDate(t *testing.T) {
	y, m, d, err := ParseDate("-0044-03-15")
	require.NoError(t, err)
	assert.Equal(t, []int{-44, 3, 15}, []int{y, m, d})

	_, _, _, err = ParseDate("March 14")
	assert.ErrorIs(t, err, core.ErrInvalidMoment)
}
