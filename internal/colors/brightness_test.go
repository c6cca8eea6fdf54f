package colors

import (
	"testing"
)

func TestBrightnessFromLuminance_Scenario(t *testing.T) {
	got := BrightnessFromLuminance(0.5, 0, 100, HueRange)
	if got != 127 {
		t.Errorf("expected 127, got %d", got)
	}
}

func TestMapBrightness(t *testing.T) {
	tests := []struct {
		name     string
		color    Color
		minPct   float64
		maxPct   float64
		expected int
	}{
		{name: "white_full_range", color: Color{255, 255, 255}, minPct: 0, maxPct: 100, expected: 254},
		{name: "black_floors_at_device_min", color: Color{0, 0, 0}, minPct: 0, maxPct: 100, expected: 1},
		{name: "black_floors_at_min_pct", color: Color{0, 0, 0}, minPct: 20, maxPct: 100, expected: 51},
		{name: "white_capped_at_max_pct", color: Color{255, 255, 255}, minPct: 0, maxPct: 50, expected: 127},
		{name: "min_wins_over_dim_color", color: Color{10, 10, 10}, minPct: 40, maxPct: 80, expected: 102},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapBrightness(tt.color, tt.minPct, tt.maxPct, HueRange)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestBrightnessFromLuminance_StaysInRange(t *testing.T) {
	ranges := []Range{HueRange, {Min: 0, Max: 0xFFFF}, {Min: 5, Max: 10}}
	for _, r := range ranges {
		for minPct := 0.0; minPct <= 100; minPct += 10 {
			for maxPct := minPct; maxPct <= 100; maxPct += 10 {
				for lum := 0.0; lum <= 1.0; lum += 0.05 {
					got := BrightnessFromLuminance(lum, minPct, maxPct, r)
					if got < r.Min || got > r.Max {
						t.Fatalf("range %+v min %v max %v lum %v: got %d", r, minPct, maxPct, lum, got)
					}
				}
			}
		}
	}
}

func TestBrightnessFromLuminance_MisorderedBoundsStayInRange(t *testing.T) {
	for lum := 0.0; lum <= 1.0; lum += 0.25 {
		got := BrightnessFromLuminance(lum, 90, 10, HueRange)
		if got < HueRange.Min || got > HueRange.Max {
			t.Errorf("lum %v: got %d outside %+v", lum, got, HueRange)
		}
	}
}

func TestValidateBrightnessBounds(t *testing.T) {
	tests := []struct {
		minPct, maxPct float64
		ok             bool
	}{
		{0, 100, true},
		{30, 30, true},
		{60, 40, false},
		{-1, 50, false},
		{0, 101, false},
	}
	for _, tt := range tests {
		err := ValidateBrightnessBounds(tt.minPct, tt.maxPct)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateBrightnessBounds(%v, %v) = %v, want ok=%v", tt.minPct, tt.maxPct, err, tt.ok)
		}
	}
}
