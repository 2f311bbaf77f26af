package core

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testObliquity = 23.4392911

func TestAnglesAtEquator(t *testing.T) {
	// With ARMC 0 at the equator the MC is the vernal point and the
	// ascendant is the summer solstice point.
	assert.InDelta(t, 0, Midheaven(0, testObliquity), 1e-12)
	assert.InDelta(t, 90, Ascendant(0, 0, testObliquity), 1e-12)

	// ARMC 90 culminates the solstice point.
	assert.InDelta(t, 90, Midheaven(90, testObliquity), 1e-12)
}

func TestPlacidusAtEquatorIsEqualRightAscension(t *testing.T) {
	// At the equator every semi-arc is 90°, so cusps sit at ARMC + 30°·k of
	// right ascension.
	armc := 47.0
	res, err := Placidus(armc, 0, testObliquity)
	require.NoError(t, err)

	for house := 1; house <= 12; house++ {
		ra := armc + 90 + float64(house-1)*30
		want := Normalize(atan2d(sind(ra), cosd(ra)*cosd(testObliquity)))
		assert.InDelta(t, 0, AngleDiff(res.Cusp(house), want), 1e-7, "house %d", house)
	}
}

func TestPlacidusInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		lst := rng.Float64() * 360
		lat := rng.Float64()*120 - 60

		res, err := Placidus(lst, lat, testObliquity)
		require.NoError(t, err, "lst %v lat %v", lst, lat)

		if res.Cusp(1) != res.Ascendant {
			t.Fatalf("cusp 1 %v != ascendant %v", res.Cusp(1), res.Ascendant)
		}
		if res.Cusp(10) != res.Midheaven {
			t.Fatalf("cusp 10 %v != midheaven %v", res.Cusp(10), res.Midheaven)
		}

		for h := 1; h <= 12; h++ {
			c := res.Cusp(h)
			if c < 0 || c >= 360 {
				t.Fatalf("cusp %d = %v outside [0,360)", h, c)
			}
			next := res.Cusp(h%12 + 1)
			if step := Normalize(next - c); step <= 0 || step >= 180 {
				t.Fatalf("lst %v lat %v: cusp %d -> %d steps %v, want increasing order", lst, lat, h, h%12+1, step)
			}
			opposite := res.Cusp((h+5)%12 + 1)
			assert.InDelta(t, 180, Normalize(opposite-c), 1e-9)
		}

		for _, a := range []float64{res.Ascendant, res.Midheaven, res.ARMC, res.Vertex} {
			if a < 0 || a >= 360 {
				t.Fatalf("angle %v outside [0,360)", a)
			}
		}
	}
}

func TestPlacidusHemisphereSymmetry(t *testing.T) {
	north, err := Placidus(123.4, 48.4, testObliquity)
	require.NoError(t, err)
	south, err := Placidus(303.4, -48.4, testObliquity)
	require.NoError(t, err)

	for h := 1; h <= 12; h++ {
		assert.InDelta(t, 180, Normalize(south.Cusp(h)-north.Cusp(h)), 1e-6, "house %d", h)
	}
}

func TestPlacidusPolarLatitudeIsUndefined(t *testing.T) {
	for _, lat := range []float64{70, -70, 66.6, 89.9} {
		_, err := Placidus(200, lat, testObliquity)
		if !errors.Is(err, ErrUndefinedHouseSystem) {
			t.Fatalf("latitude %v: err = %v, want ErrUndefinedHouseSystem", lat, err)
		}
	}
}

func TestSolveCuspReportsNonConvergence(t *testing.T) {
	_, err := solveCusp(10, 45, testObliquity, placidusCusps[0], 5)
	if !errors.Is(err, ErrNonConvergence) {
		t.Fatalf("err = %v, want ErrNonConvergence", err)
	}
}

func TestVertexLiesInTheWest(t *testing.T) {
	// At mid northern latitudes the vertex falls on the half of the
	// ecliptic that runs from the IC through the descendant to the MC.
	res, err := Placidus(75, 40, testObliquity)
	require.NoError(t, err)

	fromMC := Normalize(res.Vertex - res.Midheaven)
	if fromMC <= 180 {
		t.Fatalf("vertex %v is east of the MC %v", res.Vertex, res.Midheaven)
	}
}

func TestZodiac(t *testing.T) {
	testCases := []struct {
		lon    float64
		sign   int
		degree float64
	}{
		{0, 0, 0},
		{29.999, 0, 29.999},
		{30, 1, 0},
		{223.32, 7, 13.32},
		{359.5, 11, 29.5},
		{-10, 11, 20},
		{725, 0, 5},
	}

	for _, tc := range testCases {
		z := Zodiac(tc.lon)
		assert.Equal(t, tc.sign, int(z.Sign), "longitude %v", tc.lon)
		assert.InDelta(t, tc.degree, z.Degree, 1e-9, "longitude %v", tc.lon)
	}
}

func TestZodiacReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		lon := rng.Float64()*4000 - 2000
		z := Zodiac(lon)
		if z.Degree < 0 || z.Degree >= 30 {
			t.Fatalf("degree %v outside [0,30) for %v", z.Degree, lon)
		}
		if z.Sign < 0 || z.Sign > 11 {
			t.Fatalf("sign %d outside [0,11] for %v", z.Sign, lon)
		}
		assert.InDelta(t, Normalize(lon), float64(z.Sign)*30+z.Degree, 1e-9)
	}
}

func TestFormatDegMin(t *testing.T) {
	assert.Equal(t, "13°19.2' Scorpio", FormatDegMin(223.32))
	assert.Equal(t, "0°0.0' Aries", FormatDegMin(360))
}
