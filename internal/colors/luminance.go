package colors

// https://en.wikipedia.org/wiki/Relative_luminance
const (
	redWeight   = 0.2126
	greenWeight = 0.7152
	blueWeight  = 0.0722
)

// luma is the luminance scaled by 10000 as an exact integer, used for
// ranking pixels so equal luminance compares equal.
func luma(c Color) uint32 {
	return 2126*uint32(c.R) + 7152*uint32(c.G) + 722*uint32(c.B)
}

var maxLuminance = absoluteLuminance(Color{R: 255, G: 255, B: 255})

func absoluteLuminance(c Color) float64 {
	return float64(c.R)*redWeight + float64(c.G)*greenWeight + float64(c.B)*blueWeight
}

// RelativeLuminance returns the perceptual brightness of c in [0, 1].
func RelativeLuminance(c Color) float64 {
	return absoluteLuminance(c) / maxLuminance
}

// RelativeBrightness scores a whole frame in [0, 1]. With ignoreBlack, fully
// black pixels count as half brightness so black bars don't darken the frame.
func RelativeBrightness(pixels Pixels, ignoreBlack bool) float64 {
	if len(pixels) == 0 {
		return 0
	}

	var total float64
	for _, p := range pixels {
		l := absoluteLuminance(p)
		if ignoreBlack && l == 0 {
			l = maxLuminance / 2
		}
		total += l
	}
	return total / (maxLuminance * float64(len(pixels)))
}
