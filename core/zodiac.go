package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/ephemref/model"
)

// Zodiac maps any longitude onto a tropical sign and the degree within it.
func Zodiac(longitude float64) model.ZodiacPosition {
	l := Normalize(longitude)
	sign := int(math.Floor(l/30)) % 12
	deg := l - float64(sign)*30
	if deg < 0 {
		deg = 0
	}
	return model.ZodiacPosition{Sign: model.Sign(sign), Degree: deg}
}

// FormatDegMin renders a longitude as degrees and decimal minutes within its
// sign, e.g. "13°19.2' Scorpio".
func FormatDegMin(longitude float64) string {
	z := Zodiac(longitude)
	deg := math.Floor(z.Degree)
	mins := (z.Degree - deg) * 60
	return fmt.Sprintf("%d°%.1f' %s", int(deg), mins, z.Sign)
}
