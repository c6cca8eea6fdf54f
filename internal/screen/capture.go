package screen

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
)

var ErrProviderUnavailable = errors.New("no screen capture provider available")

// Capturer produces one frame of pixel data per call. The returned pixels are
// owned by the caller.
type Capturer interface {
	Capture(ctx context.Context) (colors.Pixels, error)
}

type Options struct {
	// Display is 1-based; 0 selects the primary display.
	Display int
	// Region is relative to the display's top left corner. The zero value
	// captures the whole display.
	Region image.Rectangle
	// DownscaleWidth shrinks frames wider than this before sampling. Zero
	// keeps full resolution.
	DownscaleWidth int
}

type backend struct {
	numDisplays   func() int
	displayBounds func(int) image.Rectangle
	captureRect   func(image.Rectangle) (*image.RGBA, error)
}

var screenshotBackend = backend{
	numDisplays:   screenshot.NumActiveDisplays,
	displayBounds: screenshot.GetDisplayBounds,
	captureRect:   screenshot.CaptureRect,
}

type ScreenCapturer struct {
	opts    Options
	backend backend
}

var _ Capturer = (*ScreenCapturer)(nil)

func New(opts Options) *ScreenCapturer {
	return &ScreenCapturer{opts: opts, backend: screenshotBackend}
}

func (s *ScreenCapturer) Capture(ctx context.Context) (colors.Pixels, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rect, err := s.captureBounds()
	if err != nil {
		return nil, err
	}

	img, err := s.backend.captureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("%w: capturing %v: %v", ErrProviderUnavailable, rect, err)
	}

	var frame image.Image = img
	if w := s.opts.DownscaleWidth; w > 0 && img.Bounds().Dx() > w {
		frame = imaging.Resize(img, w, 0, imaging.Box)
	}

	return PixelsFromImage(frame), nil
}

func (s *ScreenCapturer) captureBounds() (image.Rectangle, error) {
	n := s.backend.numDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: no active displays", ErrProviderUnavailable)
	}

	index := 0
	if s.opts.Display > 0 {
		index = s.opts.Display - 1
	}
	if index >= n {
		return image.Rectangle{}, fmt.Errorf("%w: display %d not found (%d active)", ErrProviderUnavailable, s.opts.Display, n)
	}

	bounds := s.backend.displayBounds(index)
	if s.opts.Region.Empty() {
		return bounds, nil
	}

	rect := s.opts.Region.Add(bounds.Min).Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %v lies outside display %v", s.opts.Region, bounds)
	}
	return rect, nil
}

// PixelsFromImage flattens img row by row, ignoring alpha.
func PixelsFromImage(img image.Image) colors.Pixels {
	bounds := img.Bounds()
	pixels := make(colors.Pixels, 0, bounds.Dx()*bounds.Dy())

	switch src := img.(type) {
	case *image.RGBA:
		pixels = appendPix(pixels, src.Pix, src.Stride, bounds.Dx(), bounds.Dy())
	case *image.NRGBA:
		pixels = appendPix(pixels, src.Pix, src.Stride, bounds.Dx(), bounds.Dy())
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				pixels = append(pixels, colors.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
			}
		}
	}
	return pixels
}

func appendPix(pixels colors.Pixels, pix []uint8, stride, width, height int) colors.Pixels {
	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+width*4]
		for off := 0; off < len(row); off += 4 {
			pixels = append(pixels, colors.Color{R: row[off], G: row[off+1], B: row[off+2]})
		}
	}
	return pixels
}
