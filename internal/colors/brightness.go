package colors

import (
	"fmt"
	"math"
)

// Range is the inclusive brightness range a device accepts.
type Range struct {
	Min int
	Max int
}

// HueRange is the bri range of the Hue v1 API.
var HueRange = Range{Min: 1, Max: 254}

// MapBrightness maps the luminance of c into r, bounded by the min/max
// percentages of r.Max.
func MapBrightness(c Color, minPct, maxPct float64, r Range) int {
	return BrightnessFromLuminance(RelativeLuminance(c), minPct, maxPct, r)
}

func BrightnessFromLuminance(luminance, minPct, maxPct float64, r Range) int {
	lo := max(r.Min, int(math.Round(minPct/100*float64(r.Max))))
	hi := min(r.Max, int(math.Round(maxPct/100*float64(r.Max))))

	luminance = math.Min(1, math.Max(0, luminance))
	v := max(lo, int(math.Round(luminance*float64(hi))))

	// misordered bounds can push lo above r.Max
	return min(r.Max, max(r.Min, v))
}

func ValidateBrightnessBounds(minPct, maxPct float64) error {
	if minPct < 0 || minPct > 100 {
		return fmt.Errorf("minimum brightness %v%% is outside [0, 100]", minPct)
	}
	if maxPct < 0 || maxPct > 100 {
		return fmt.Errorf("maximum brightness %v%% is outside [0, 100]", maxPct)
	}
	if minPct > maxPct {
		return fmt.Errorf("minimum brightness %v%% is greater than maximum %v%%", minPct, maxPct)
	}
	return nil
}
