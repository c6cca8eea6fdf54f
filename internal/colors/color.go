package colors

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrEmptyInput        = errors.New("no pixels to sample")
	ErrInvalidPercentage = errors.New("percentage must be in (0, 100]")
)

// Color is a single 8-bit RGB value.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Pixels holds the RGB data of one captured frame.
type Pixels []Color

func (c Color) String() string {
	return c.colorful().Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Average returns the component-wise mean of all pixels.
func Average(pixels Pixels) (Color, error) {
	if len(pixels) == 0 {
		return Color{}, ErrEmptyInput
	}
	return mean(pixels), nil
}

// BrightestAverage returns the mean of the given percentage of pixels with
// the highest relative luminance. At least one pixel is always selected.
func BrightestAverage(pixels Pixels, percentage float64) (Color, error) {
	if err := ValidatePercentage(percentage); err != nil {
		return Color{}, err
	}
	if len(pixels) == 0 {
		return Color{}, ErrEmptyInput
	}

	type ranked struct {
		color Color
		luma  uint32
	}
	sorted := make([]ranked, len(pixels))
	for i, p := range pixels {
		sorted[i] = ranked{color: p, luma: luma(p)}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].luma < sorted[j].luma
	})

	n := selectionSize(len(pixels), percentage)
	brightest := make(Pixels, 0, n)
	for _, r := range sorted[len(sorted)-n:] {
		brightest = append(brightest, r.color)
	}
	return mean(brightest), nil
}

func ValidatePercentage(percentage float64) error {
	if math.IsNaN(percentage) || percentage <= 0 || percentage > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidPercentage, percentage)
	}
	return nil
}

func selectionSize(count int, percentage float64) int {
	n := int(math.Ceil(percentage / 100 * float64(count)))
	if n < 1 {
		n = 1
	}
	if n > count {
		n = count
	}
	return n
}

func mean(pixels Pixels) Color {
	var sumR, sumG, sumB uint64
	for _, p := range pixels {
		sumR += uint64(p.R)
		sumG += uint64(p.G)
		sumB += uint64(p.B)
	}
	total := float64(len(pixels))
	return Color{
		R: roundChannel(float64(sumR) / total),
		G: roundChannel(float64(sumG) / total),
		B: roundChannel(float64(sumB) / total),
	}
}

func roundChannel(v float64) uint8 {
	return uint8(math.Min(255, math.Max(0, math.Round(v))))
}
