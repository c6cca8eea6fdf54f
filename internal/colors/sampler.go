package colors

import (
	"fmt"
	"strings"
)

const (
	ModeAverage        = "average"
	ModeLuminance      = "luminance"
	ModeSquaredAverage = "squared-average"
	ModeMedian         = "median"
	ModeMode           = "mode"
)

// Sampler reduces a frame to one representative color.
type Sampler interface {
	Sample(pixels Pixels) (Color, error)
}

type AverageSampler struct{}

func (AverageSampler) Sample(pixels Pixels) (Color, error) {
	return Average(pixels)
}

// SamplerFunc adapts a plain reduction to Sampler.
type SamplerFunc func(pixels Pixels) (Color, error)

func (f SamplerFunc) Sample(pixels Pixels) (Color, error) {
	return f(pixels)
}

// BrightestSampler averages the brightest Percentage of a frame.
type BrightestSampler struct {
	Percentage float64
}

func (s BrightestSampler) Sample(pixels Pixels) (Color, error) {
	return BrightestAverage(pixels, s.Percentage)
}

// NewSampler picks the sampling strategy for a mode name. percentage is only
// used (and validated) by the luminance mode.
func NewSampler(mode string, percentage float64) (Sampler, error) {
	switch strings.ToLower(mode) {
	case ModeAverage:
		return AverageSampler{}, nil
	case ModeLuminance, "brightest":
		if err := ValidatePercentage(percentage); err != nil {
			return nil, err
		}
		return BrightestSampler{Percentage: percentage}, nil
	case ModeSquaredAverage:
		return SamplerFunc(SquaredAverage), nil
	case ModeMedian:
		return SamplerFunc(Median), nil
	case ModeMode:
		return SamplerFunc(Mode), nil
	default:
		return nil, fmt.Errorf("unknown sampling mode: %q", mode)
	}
}
