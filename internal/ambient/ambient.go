package ambient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
	"github.com/scheerer/ambient-screen-colors/internal/lights"
	"github.com/scheerer/ambient-screen-colors/internal/logging"
	"github.com/scheerer/ambient-screen-colors/internal/screen"
)

const (
	DefaultInterval = 100 * time.Millisecond

	overrunWarningInterval = 10 * time.Second
)

var defaultLogger = logging.New("ambient")

type Config struct {
	// Lights are backend specific identifiers, updated in order.
	Lights   []string
	Interval time.Duration
	RunOnce  bool
	Sampler  colors.Sampler
	Gamut    colors.Gamut

	AdjustBrightness bool
	MinBrightness    float64
	MaxBrightness    float64
	// IgnoreBlack derives brightness from the whole frame with black pixels
	// counted at half brightness.
	IgnoreBlack bool
}

// Loop repeatedly captures the screen and pushes its color to the lights.
// A Loop is not safe for concurrent use.
type Loop struct {
	config   Config
	capturer screen.Capturer
	lights   lights.Controller
	logger   *zap.SugaredLogger

	previous    *colors.Color
	lastWarning time.Time
}

func New(config Config, capturer screen.Capturer, controller lights.Controller, logger *zap.SugaredLogger) *Loop {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Sampler == nil {
		config.Sampler = colors.AverageSampler{}
	}
	if config.Gamut == (colors.Gamut{}) {
		config.Gamut = colors.GamutB
	}
	if logger == nil {
		logger = defaultLogger
	}
	return &Loop{
		config:   config,
		capturer: capturer,
		lights:   controller,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, the first cycle completes in run-once
// mode, or the screen can no longer be captured. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		start := time.Now()
		if err := l.step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if l.config.RunOnce {
			return nil
		}

		l.checkOverrun(time.Since(start))

		timer := time.NewTimer(l.config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (l *Loop) step(ctx context.Context) error {
	captureStart := time.Now()
	pixels, err := l.capturer.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capturing screen: %w", err)
	}
	captureDuration := time.Since(captureStart)

	c, err := l.config.Sampler.Sample(pixels)
	if err != nil {
		l.logger.With(zap.Error(err), zap.Int("pixels", len(pixels))).Warn("Skipping frame")
		return nil
	}

	if l.Emit(ctx, c, pixels) {
		l.logger.With(
			zap.Stringer("color", c),
			zap.Stringer("captureDuration", captureDuration)).
			Debug("Updated lights")
	}
	return nil
}

// Emit sends c to every light unless it equals the last emitted color. pixels
// is the frame c was sampled from. It reports whether anything was sent.
func (l *Loop) Emit(ctx context.Context, c colors.Color, pixels colors.Pixels) bool {
	if l.previous != nil && *l.previous == c {
		return false
	}

	xy := colors.ToChromaticity(c, l.config.Gamut)
	state := lights.State{Color: c, XY: &xy}
	if l.config.AdjustBrightness {
		bri := l.brightness(c, pixels)
		state.Brightness = &bri
	}

	for _, id := range l.config.Lights {
		if ctx.Err() != nil {
			break
		}
		if err := l.lights.SetLightState(ctx, id, state); err != nil {
			l.logger.With(zap.String("light", id), zap.Error(err)).Error("Failed to update light")
		}
	}

	l.previous = &c
	return true
}

func (l *Loop) brightness(c colors.Color, pixels colors.Pixels) int {
	r := l.lights.BrightnessRange()
	if l.config.IgnoreBlack && len(pixels) > 0 {
		return colors.BrightnessFromLuminance(colors.RelativeBrightness(pixels, true), l.config.MinBrightness, l.config.MaxBrightness, r)
	}
	return colors.MapBrightness(c, l.config.MinBrightness, l.config.MaxBrightness, r)
}

func (l *Loop) checkOverrun(elapsed time.Duration) {
	if elapsed <= l.config.Interval || time.Since(l.lastWarning) < overrunWarningInterval {
		return
	}
	l.logger.With(
		zap.Stringer("cycleDuration", elapsed),
		zap.Stringer("interval", l.config.Interval)).
		Warn("Cannot keep up with the capture interval. Consider increasing --interval or setting --downscale-width.")
	l.lastWarning = time.Now()
}
