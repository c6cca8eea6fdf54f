package colors

import (
	"math"
	"slices"
)

// SquaredAverage is the root mean square of each channel. It leans towards
// bright areas more than Average does.
func SquaredAverage(pixels Pixels) (Color, error) {
	if len(pixels) == 0 {
		return Color{}, ErrEmptyInput
	}

	var sumR, sumG, sumB uint64
	for _, p := range pixels {
		sumR += uint64(p.R) * uint64(p.R)
		sumG += uint64(p.G) * uint64(p.G)
		sumB += uint64(p.B) * uint64(p.B)
	}
	total := float64(len(pixels))
	return Color{
		R: roundChannel(math.Sqrt(float64(sumR) / total)),
		G: roundChannel(math.Sqrt(float64(sumG) / total)),
		B: roundChannel(math.Sqrt(float64(sumB) / total)),
	}, nil
}

// Median takes the median of each channel independently.
func Median(pixels Pixels) (Color, error) {
	if len(pixels) == 0 {
		return Color{}, ErrEmptyInput
	}

	reds := make([]uint8, len(pixels))
	greens := make([]uint8, len(pixels))
	blues := make([]uint8, len(pixels))
	for i, p := range pixels {
		reds[i], greens[i], blues[i] = p.R, p.G, p.B
	}

	median := func(values []uint8) uint8 {
		slices.Sort(values)
		n := len(values)
		if n%2 == 0 {
			return roundChannel((float64(values[n/2-1]) + float64(values[n/2])) / 2)
		}
		return values[n/2]
	}
	return Color{R: median(reds), G: median(greens), B: median(blues)}, nil
}

// Mode returns the most frequent color. Ties go to the color that reached
// the top count first.
func Mode(pixels Pixels) (Color, error) {
	if len(pixels) == 0 {
		return Color{}, ErrEmptyInput
	}

	counts := make(map[Color]int)
	var mode Color
	best := 0
	for _, p := range pixels {
		counts[p]++
		if n := counts[p]; n > best {
			best = n
			mode = p
		}
	}
	return mode, nil
}
