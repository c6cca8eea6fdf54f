package lights

import (
	"math"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
)

// RgbToHsb converts c to 16-bit hue, saturation and brightness.
func RgbToHsb(c colors.Color) (uint16, uint16, uint16) {
	red := float64(c.R) / 255.0
	green := float64(c.G) / 255.0
	blue := float64(c.B) / 255.0

	max := math.Max(red, math.Max(green, blue))
	min := math.Min(red, math.Min(green, blue))
	delta := max - min

	var h, s, v float64
	v = max

	if delta != 0 {
		s = delta / max

		deltaR := (((max - red) / 6) + (delta / 2)) / delta
		deltaG := (((max - green) / 6) + (delta / 2)) / delta
		deltaB := (((max - blue) / 6) + (delta / 2)) / delta

		switch max {
		case red:
			h = deltaB - deltaG
		case green:
			h = (1.0 / 3.0) + deltaR - deltaB
		default:
			h = (2.0 / 3.0) + deltaG - deltaR
		}

		if h < 0 {
			h += 1
		}
		if h > 1 {
			h -= 1
		}
	}

	hue := uint16(math.Round(h * 0xFFFF))
	saturation := uint16(math.Round(s * 0xFFFF))
	brightness := uint16(math.Round(v * 0xFFFF))

	return hue, saturation, brightness
}
