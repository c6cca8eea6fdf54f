package hue

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/amimof/huego"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
	"github.com/scheerer/ambient-screen-colors/internal/lights"
	"github.com/scheerer/ambient-screen-colors/internal/logging"
)

var logger = logging.New("hue")

const (
	// The bridge handles roughly ten light commands per second.
	defaultRateLimit = 10.0
	defaultTimeout   = 2 * time.Second
)

type Config struct {
	Address  string
	Username string
	// Transition is rounded to the bridge's 100ms steps; zero leaves the
	// bridge default.
	Transition time.Duration
	// RateLimit is the maximum number of light commands per second.
	RateLimit float64
	Timeout   time.Duration
}

type stateSetter interface {
	SetLightStateContext(ctx context.Context, id int, state huego.State) (*huego.Response, error)
}

// HueLights sends light states to a Hue bridge using the v1 API. Light
// identifiers are the bridge's numeric light ids.
type HueLights struct {
	config  Config
	bridge  stateSetter
	limiter *rate.Limiter
}

var _ lights.Controller = (*HueLights)(nil)

func New(config Config) *HueLights {
	return newHueLights(config, huego.New(config.Address, config.Username))
}

func newHueLights(config Config, bridge stateSetter) *HueLights {
	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	burst := max(1, int(config.RateLimit))

	return &HueLights{
		config:  config,
		bridge:  bridge,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), burst),
	}
}

func (h *HueLights) BrightnessRange() colors.Range {
	return colors.HueRange
}

func (h *HueLights) SetLightState(ctx context.Context, id string, state lights.State) error {
	lightID, err := strconv.Atoi(id)
	if err != nil {
		return &lights.CommunicationError{LightID: id, Err: fmt.Errorf("invalid light id: %w", err)}
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return &lights.CommunicationError{LightID: id, Err: err}
	}

	hueState := h.newHueState(state)
	logger.With(zap.Int("light", lightID),
		zap.Stringer("color", state.Color),
		zap.Any("state", hueState)).
		Debug("Setting Hue light state")

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if _, err := h.bridge.SetLightStateContext(ctx, lightID, hueState); err != nil {
		return &lights.CommunicationError{LightID: id, Err: err}
	}
	return nil
}

func (h *HueLights) newHueState(state lights.State) huego.State {
	s := huego.State{On: true}
	if state.XY != nil {
		s.Xy = []float32{float32(state.XY.X), float32(state.XY.Y)}
	}
	if state.Brightness != nil {
		r := colors.HueRange
		s.Bri = uint8(min(r.Max, max(r.Min, *state.Brightness)))
	}
	if h.config.Transition > 0 {
		steps := math.Round(float64(h.config.Transition) / float64(100*time.Millisecond))
		s.TransitionTime = uint16(min(steps, math.MaxUint16))
	}
	return s
}
