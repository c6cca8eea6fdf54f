package lifx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"go.uber.org/zap"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
	"github.com/scheerer/ambient-screen-colors/internal/lights"
	"github.com/scheerer/ambient-screen-colors/internal/logging"
)

var logger = logging.New("lifx")

const defaultKelvin = 3500

type Config struct {
	DiscoveryInterval time.Duration
	// Timeout bounds how long a label lookup waits for discovery.
	Timeout    time.Duration
	Transition time.Duration
}

type lightFinder interface {
	GetLightByLabel(label string) (common.Light, error)
}

// LifxLights addresses LIFX bulbs by their label.
type LifxLights struct {
	config Config
	client *golifx.Client
	finder lightFinder

	lightsMu sync.RWMutex
	lights   map[string]common.Light
}

var _ lights.Controller = (*LifxLights)(nil)

func New(config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, fmt.Errorf("creating LIFX client: %w", err)
	}
	if config.DiscoveryInterval > 0 {
		if err := client.SetDiscoveryInterval(config.DiscoveryInterval); err != nil {
			logger.With(zap.Error(err)).Warn("Failed to set LIFX discovery interval")
		}
	}
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}

	l := newLifxLights(config, client)
	l.client = client
	return l, nil
}

func newLifxLights(config Config, finder lightFinder) *LifxLights {
	return &LifxLights{
		config: config,
		finder: finder,
		lights: make(map[string]common.Light),
	}
}

func (l *LifxLights) BrightnessRange() colors.Range {
	return colors.Range{Min: 0, Max: 0xFFFF}
}

func (l *LifxLights) SetLightState(ctx context.Context, id string, state lights.State) error {
	light, err := l.lookup(ctx, id)
	if err != nil {
		return &lights.CommunicationError{LightID: id, Err: err}
	}

	lifxColor := newLifxColor(state)
	logger.With(zap.String("label", id),
		zap.Stringer("color", state.Color),
		zap.Any("lifxColor", lifxColor)).
		Debug("Setting LIFX light color")

	if err := light.SetColor(lifxColor, l.config.Transition); err != nil {
		// drop the cached handle so the next change looks it up again
		l.lightsMu.Lock()
		delete(l.lights, id)
		l.lightsMu.Unlock()
		return &lights.CommunicationError{LightID: id, Err: err}
	}
	return nil
}

func (l *LifxLights) lookup(ctx context.Context, label string) (common.Light, error) {
	l.lightsMu.RLock()
	light, found := l.lights[label]
	l.lightsMu.RUnlock()
	if found {
		return light, nil
	}

	type result struct {
		light common.Light
		err   error
	}
	completed := make(chan result, 1)
	go func() {
		light, err := l.finder.GetLightByLabel(label)
		completed <- result{light: light, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-completed:
		if r.err != nil {
			return nil, fmt.Errorf("finding LIFX light %q: %w", label, r.err)
		}
		logger.With(zap.String("label", label)).Info("Found LIFX light")
		l.lightsMu.Lock()
		l.lights[label] = r.light
		l.lightsMu.Unlock()
		return r.light, nil
	}
}

func (l *LifxLights) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

func newLifxColor(state lights.State) common.Color {
	hue, saturation, brightness := lights.RgbToHsb(state.Color)
	if state.Brightness != nil {
		brightness = uint16(min(0xFFFF, max(0, *state.Brightness)))
	}

	return common.Color{
		Hue:        hue,
		Saturation: saturation,
		Brightness: brightness,
		Kelvin:     defaultKelvin,
	}
}
