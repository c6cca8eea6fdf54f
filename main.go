package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/ambient-screen-colors/internal/ambient"
	"github.com/scheerer/ambient-screen-colors/internal/colors"
	"github.com/scheerer/ambient-screen-colors/internal/config"
	"github.com/scheerer/ambient-screen-colors/internal/credentials"
	"github.com/scheerer/ambient-screen-colors/internal/lights"
	"github.com/scheerer/ambient-screen-colors/internal/lights/hue"
	"github.com/scheerer/ambient-screen-colors/internal/lights/lifx"
	"github.com/scheerer/ambient-screen-colors/internal/logging"
	"github.com/scheerer/ambient-screen-colors/internal/screen"
)

const discoveryTimeout = 10 * time.Second

var logger = logging.New("main")

func main() {
	os.Exit(run())
}

func run() int {
	defer logger.Sync()

	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		logger.With(zap.Error(err)).Error("Invalid configuration")
		return 1
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		logger.With(zap.Error(err)).Error("Invalid configuration")
		return 1
	}

	// all of these were checked by config.Load
	sampler, _ := colors.NewSampler(cfg.Mode, cfg.LuminancePercentage)
	gamut, _ := colors.ParseGamut(cfg.Gamut)
	region, _ := screen.ParseRegion(cfg.Region)

	ctx, cancel := signalContext()
	defer cancel()

	controller, closeLights, err := newController(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		logger.With(zap.Error(err)).Error("Failed to set up lights")
		return 1
	}
	defer closeLights()

	capturer := screen.New(screen.Options{
		Display:        cfg.Screen,
		Region:         region,
		DownscaleWidth: cfg.DownscaleWidth,
	})

	loop := ambient.New(ambient.Config{
		Lights:           cfg.Lights,
		Interval:         cfg.Interval,
		RunOnce:          cfg.RunOnce,
		Sampler:          sampler,
		Gamut:            gamut,
		AdjustBrightness: cfg.AdjustBrightness,
		MinBrightness:    cfg.MinBrightness,
		MaxBrightness:    cfg.MaxBrightness,
		IgnoreBlack:      cfg.IgnoreBlack,
	}, capturer, controller, logging.New("ambient"))

	logger.With(
		zap.String("lightType", cfg.LightType),
		zap.Strings("lights", cfg.Lights),
		zap.String("mode", cfg.Mode),
		zap.Stringer("interval", cfg.Interval),
		zap.Int("screen", cfg.Screen),
		zap.Bool("adjustBrightness", cfg.AdjustBrightness)).
		Info("Starting ambient screen colors")
	if !cfg.RunOnce {
		logger.Info("Press Ctrl+C to stop")
	}

	if err := loop.Run(ctx); err != nil {
		logger.With(zap.Error(err)).Error("Stopped")
		return 1
	}
	logger.Info("Shutting down")
	return 0
}

func newController(ctx context.Context, cfg *config.Config) (lights.Controller, func(), error) {
	switch strings.ToLower(cfg.LightType) {
	case config.LightTypeLifx:
		l, err := lifx.New(lifx.Config{Transition: cfg.Transition})
		if err != nil {
			return nil, nil, err
		}
		return l, func() {
			if err := l.Close(); err != nil {
				logger.With(zap.Error(err)).Warn("Failed to close LIFX client")
			}
		}, nil
	default:
		l, err := newHueLights(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	}
}

func newHueLights(ctx context.Context, cfg *config.Config) (*hue.HueLights, error) {
	address := cfg.Bridge
	if strings.EqualFold(address, hue.DiscoverAddress) {
		logger.Info("Searching for a Hue bridge")
		discoverCtx, cancel := context.WithTimeout(ctx, discoveryTimeout)
		bridge, err := hue.DiscoverBridge(discoverCtx)
		cancel()
		if err != nil {
			return nil, err
		}
		address = bridge.Host()
	}

	store, err := credentials.NewStore(cfg.CredentialsDir)
	if err != nil {
		return nil, &credentials.CredentialError{Bridge: address, Err: err}
	}
	p := &pairing{
		store:      store,
		in:         os.Stdin,
		out:        os.Stderr,
		createUser: hue.CreateUser,
	}
	username, err := p.username(ctx, address, cfg.Username)
	if err != nil {
		return nil, err
	}

	return hue.New(hue.Config{
		Address:    address,
		Username:   username,
		Transition: cfg.Transition,
	}), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.With(zap.String("signal", sig.String())).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
