package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrecessEcliptic(t *testing.T) {
	// Meeus example 21.c: Pollux from J2000.0 to -214 June 30.
	lon, lat := PrecessEcliptic(149.48194, 1.76549, 1643074.5)
	assert.InDelta(t, 118.704, lon, 0.001)
	assert.InDelta(t, 1.615, lat, 0.001)

	lon, lat = PrecessEcliptic(10, -3, J2000)
	assert.InDelta(t, 10, lon, 1e-9)
	assert.InDelta(t, -3, lat, 1e-9)
}
