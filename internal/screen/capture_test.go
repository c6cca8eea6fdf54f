package screen

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
)

func solidRGBA(rect image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(rect)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

type fakeScreen struct {
	displays []image.Rectangle
	fill     color.RGBA
	err      error
	captured []image.Rectangle
}

func (f *fakeScreen) backend() backend {
	return backend{
		numDisplays:   func() int { return len(f.displays) },
		displayBounds: func(i int) image.Rectangle { return f.displays[i] },
		captureRect: func(r image.Rectangle) (*image.RGBA, error) {
			f.captured = append(f.captured, r)
			if f.err != nil {
				return nil, f.err
			}
			return solidRGBA(image.Rect(0, 0, r.Dx(), r.Dy()), f.fill), nil
		},
	}
}

func newTestCapturer(opts Options, f *fakeScreen) *ScreenCapturer {
	return &ScreenCapturer{opts: opts, backend: f.backend()}
}

func TestCapture_PrimaryDisplay(t *testing.T) {
	f := &fakeScreen{
		displays: []image.Rectangle{image.Rect(0, 0, 4, 3)},
		fill:     color.RGBA{R: 200, G: 100, B: 50, A: 255},
	}
	pixels, err := newTestCapturer(Options{}, f).Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(pixels) != 12 {
		t.Fatalf("expected 12 pixels, got %d", len(pixels))
	}
	for _, p := range pixels {
		if p != (colors.Color{R: 200, G: 100, B: 50}) {
			t.Fatalf("unexpected pixel %+v", p)
		}
	}
}

func TestCapture_SelectsDisplayAndRegion(t *testing.T) {
	f := &fakeScreen{
		displays: []image.Rectangle{image.Rect(0, 0, 100, 100), image.Rect(100, 0, 300, 100)},
	}
	opts := Options{Display: 2, Region: image.Rect(10, 20, 60, 40)}
	if _, err := newTestCapturer(opts, f).Capture(context.Background()); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	want := image.Rect(110, 20, 160, 40)
	if len(f.captured) != 1 || f.captured[0] != want {
		t.Errorf("expected capture of %v, got %v", want, f.captured)
	}
}

func TestCapture_RegionClippedToDisplay(t *testing.T) {
	f := &fakeScreen{displays: []image.Rectangle{image.Rect(0, 0, 100, 100)}}
	opts := Options{Region: image.Rect(90, 90, 200, 200)}
	if _, err := newTestCapturer(opts, f).Capture(context.Background()); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if want := image.Rect(90, 90, 100, 100); f.captured[0] != want {
		t.Errorf("expected capture of %v, got %v", want, f.captured[0])
	}
}

func TestCapture_RegionOutsideDisplay(t *testing.T) {
	f := &fakeScreen{displays: []image.Rectangle{image.Rect(0, 0, 100, 100)}}
	opts := Options{Region: image.Rect(200, 200, 300, 300)}
	if _, err := newTestCapturer(opts, f).Capture(context.Background()); err == nil {
		t.Fatal("expected error for region outside display")
	}
}

func TestCapture_NoDisplays(t *testing.T) {
	_, err := newTestCapturer(Options{}, &fakeScreen{}).Capture(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestCapture_DisplayOutOfRange(t *testing.T) {
	f := &fakeScreen{displays: []image.Rectangle{image.Rect(0, 0, 10, 10)}}
	_, err := newTestCapturer(Options{Display: 3}, f).Capture(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestCapture_BackendFailure(t *testing.T) {
	f := &fakeScreen{
		displays: []image.Rectangle{image.Rect(0, 0, 10, 10)},
		err:      errors.New("XGetImage failed"),
	}
	_, err := newTestCapturer(Options{}, f).Capture(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestCapture_Downscale(t *testing.T) {
	f := &fakeScreen{
		displays: []image.Rectangle{image.Rect(0, 0, 1920, 1080)},
		fill:     color.RGBA{R: 10, G: 20, B: 30, A: 255},
	}
	pixels, err := newTestCapturer(Options{DownscaleWidth: 64}, f).Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(pixels) != 64*36 {
		t.Fatalf("expected %d pixels, got %d", 64*36, len(pixels))
	}
	avg, _ := colors.Average(pixels)
	if avg != (colors.Color{R: 10, G: 20, B: 30}) {
		t.Errorf("expected uniform color to survive downscale, got %+v", avg)
	}
}

func TestCapture_CancelledContext(t *testing.T) {
	f := &fakeScreen{displays: []image.Rectangle{image.Rect(0, 0, 10, 10)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestCapturer(Options{}, f).Capture(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.captured) != 0 {
		t.Error("expected no capture after cancellation")
	}
}

func TestPixelsFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(rgba.Pix, []uint8{1, 2, 3, 255, 4, 5, 6, 255})

	nrgba := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(nrgba.Pix, []uint8{1, 2, 3, 255, 4, 5, 6, 255})

	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.Pix[0], gray.Pix[1] = 7, 8

	tests := []struct {
		name string
		img  image.Image
		want colors.Pixels
	}{
		{name: "rgba", img: rgba, want: colors.Pixels{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}},
		{name: "nrgba", img: nrgba, want: colors.Pixels{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}}},
		{name: "gray", img: gray, want: colors.Pixels{{R: 7, G: 7, B: 7}, {R: 8, G: 8, B: 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelsFromImage(tt.img)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d pixels, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pixel %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestPixelsFromImage_SubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 9, G: 9, B: 9, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 3, 3))
	got := PixelsFromImage(sub)
	if len(got) != 1 || got[0] != (colors.Color{R: 9, G: 9, B: 9}) {
		t.Errorf("expected single pixel {9 9 9}, got %v", got)
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("10, 20, 300, 200")
	if err != nil {
		t.Fatalf("ParseRegion: %v", err)
	}
	if want := image.Rect(10, 20, 310, 220); r != want {
		t.Errorf("expected %v, got %v", want, r)
	}

	if r, err := ParseRegion(""); err != nil || !r.Empty() {
		t.Errorf("expected empty region, got %v (%v)", r, err)
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10", "-1,0,10,10"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("ParseRegion(%q): expected error", bad)
		}
	}
}
