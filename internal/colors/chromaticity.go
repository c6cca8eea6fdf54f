package colors

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Channels are floored to this before conversion; the xy projection divides
// by X+Y+Z which is zero for pure black.
const channelEpsilon = 1e-3

// Chromaticity is a CIE 1931 xy coordinate as used by Hue lights.
type Chromaticity struct {
	X float64
	Y float64
}

func (c Chromaticity) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", c.X, c.Y)
}

// Gamut is the triangle of xy coordinates a lamp can reproduce.
type Gamut struct {
	Red   Chromaticity
	Green Chromaticity
	Blue  Chromaticity
}

var (
	GamutA = Gamut{
		Red:   Chromaticity{X: 0.704, Y: 0.296},
		Green: Chromaticity{X: 0.2151, Y: 0.7106},
		Blue:  Chromaticity{X: 0.138, Y: 0.08},
	}
	GamutB = Gamut{
		Red:   Chromaticity{X: 0.675, Y: 0.322},
		Green: Chromaticity{X: 0.4091, Y: 0.518},
		Blue:  Chromaticity{X: 0.167, Y: 0.04},
	}
	GamutC = Gamut{
		Red:   Chromaticity{X: 0.692, Y: 0.308},
		Green: Chromaticity{X: 0.17, Y: 0.7},
		Blue:  Chromaticity{X: 0.153, Y: 0.048},
	}
)

func ParseGamut(name string) (Gamut, error) {
	switch strings.ToUpper(name) {
	case "A":
		return GamutA, nil
	case "", "B":
		return GamutB, nil
	case "C":
		return GamutC, nil
	default:
		return Gamut{}, fmt.Errorf("unknown gamut: %q", name)
	}
}

// ToChromaticity converts c to an xy coordinate inside gamut.
func ToChromaticity(c Color, gamut Gamut) Chromaticity {
	r, g, b := clampedChannels(c)
	return gamut.closest(xyFromRGB(r, g, b))
}

func clampedChannels(c Color) (r, g, b float64) {
	return math.Max(float64(c.R), channelEpsilon),
		math.Max(float64(c.G), channelEpsilon),
		math.Max(float64(c.B), channelEpsilon)
}

// xyFromRGB takes channels on the 0..255 scale.
func xyFromRGB(r, g, b float64) Chromaticity {
	lr, lg, lb := colorful.Color{R: r / 255.0, G: g / 255.0, B: b / 255.0}.LinearRgb()

	// Wide gamut RGB D65
	x := lr*0.664511 + lg*0.154324 + lb*0.162028
	y := lr*0.283881 + lg*0.668433 + lb*0.047685
	z := lr*0.000088 + lg*0.072310 + lb*0.986039

	sum := x + y + z
	return Chromaticity{X: x / sum, Y: y / sum}
}

func (g Gamut) contains(p Chromaticity) bool {
	v1 := Chromaticity{X: g.Green.X - g.Red.X, Y: g.Green.Y - g.Red.Y}
	v2 := Chromaticity{X: g.Blue.X - g.Red.X, Y: g.Blue.Y - g.Red.Y}
	q := Chromaticity{X: p.X - g.Red.X, Y: p.Y - g.Red.Y}

	d := cross(v1, v2)
	s := cross(q, v2) / d
	t := cross(v1, q) / d
	return s >= 0 && t >= 0 && s+t <= 1
}

// closest returns p itself when reachable, otherwise the nearest point on
// the gamut's edges.
func (g Gamut) closest(p Chromaticity) Chromaticity {
	if g.contains(p) {
		return p
	}

	candidates := []Chromaticity{
		closestOnSegment(g.Red, g.Green, p),
		closestOnSegment(g.Blue, g.Red, p),
		closestOnSegment(g.Green, g.Blue, p),
	}
	best := candidates[0]
	bestDist := distance(best, p)
	for _, c := range candidates[1:] {
		if d := distance(c, p); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func closestOnSegment(a, b, p Chromaticity) Chromaticity {
	ap := Chromaticity{X: p.X - a.X, Y: p.Y - a.Y}
	ab := Chromaticity{X: b.X - a.X, Y: b.Y - a.Y}
	t := (ap.X*ab.X + ap.Y*ab.Y) / (ab.X*ab.X + ab.Y*ab.Y)
	t = math.Min(1, math.Max(0, t))
	return Chromaticity{X: a.X + ab.X*t, Y: a.Y + ab.Y*t}
}

func cross(a, b Chromaticity) float64 {
	return a.X*b.Y - a.Y*b.X
}

func distance(a, b Chromaticity) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
