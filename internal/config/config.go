package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
	"github.com/scheerer/ambient-screen-colors/internal/logging"
	"github.com/scheerer/ambient-screen-colors/internal/screen"
)

const (
	LightTypeHue  = "hue"
	LightTypeLifx = "lifx"
)

// ConfigurationError reports an option that cannot be used.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid --%s: %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Config holds every option of the command. Environment variables provide
// the defaults and command line flags override them.
type Config struct {
	// Bridge is a Hue bridge address, or "discover" to find one with mDNS.
	Bridge string   `env:"AMBY_BRIDGE"`
	Lights []string `env:"AMBY_LIGHTS" envSeparator:","`

	Username       string `env:"AMBY_USERNAME"`
	CredentialsDir string `env:"AMBY_CREDENTIALS_DIR"`

	Screen         int           `env:"AMBY_SCREEN" envDefault:"0"`
	Region         string        `env:"AMBY_REGION"`
	DownscaleWidth int           `env:"AMBY_DOWNSCALE_WIDTH" envDefault:"0"`
	Interval       time.Duration `env:"AMBY_INTERVAL" envDefault:"100ms"`
	RunOnce        bool          `env:"AMBY_RUN_ONCE" envDefault:"false"`

	Mode                string  `env:"AMBY_MODE" envDefault:"average"`
	LuminancePercentage float64 `env:"AMBY_LUMINANCE_PERCENTAGE" envDefault:"10"`

	AdjustBrightness bool    `env:"AMBY_ADJUST_BRIGHTNESS" envDefault:"false"`
	MinBrightness    float64 `env:"AMBY_MIN_BRIGHTNESS" envDefault:"0"`
	MaxBrightness    float64 `env:"AMBY_MAX_BRIGHTNESS" envDefault:"100"`
	IgnoreBlack      bool    `env:"AMBY_IGNORE_BLACK" envDefault:"false"`

	Gamut      string        `env:"AMBY_GAMUT" envDefault:"B"`
	Transition time.Duration `env:"AMBY_TRANSITION" envDefault:"0s"`
	LightType  string        `env:"AMBY_LIGHT_TYPE" envDefault:"hue"`
	LogLevel   string        `env:"AMBY_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present), the environment and then args, and validates
// the result. args excludes the program name. A request for help returns
// flag.ErrHelp.
func Load(args []string, output io.Writer) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("parsing environment: %w", err)}
	}

	fs := cfg.flagSet(output)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, &ConfigurationError{Err: err}
	}
	cfg.applyPositional(positional)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) flagSet(output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("amby", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: amby [options] <bridge address|discover> <light id>...\n")
		fmt.Fprintf(fs.Output(), "       amby --light-type lifx [options] <light label>...\n\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&c.Username, "username", c.Username, "bridge username, skips the stored credentials")
	fs.StringVar(&c.Username, "u", c.Username, "shorthand for --username")
	fs.IntVar(&c.Screen, "screen", c.Screen, "display to sample, 1 based (0 is the primary display)")
	fs.IntVar(&c.Screen, "s", c.Screen, "shorthand for --screen")
	fs.Var((*secondsValue)(&c.Interval), "interval", "time between captures, in seconds or as a duration")
	fs.Var((*secondsValue)(&c.Interval), "i", "shorthand for --interval")
	fs.BoolVar(&c.RunOnce, "run-once", c.RunOnce, "capture and update the lights once, then exit")
	fs.BoolVar(&c.RunOnce, "o", c.RunOnce, "shorthand for --run-once")
	fs.StringVar(&c.Mode, "mode", c.Mode, "sampling mode: average, luminance, squared-average, median or mode")
	fs.StringVar(&c.Mode, "m", c.Mode, "shorthand for --mode")
	fs.Float64Var(&c.LuminancePercentage, "luminance-percentage", c.LuminancePercentage, "percentage of brightest pixels averaged in luminance mode")
	fs.Float64Var(&c.LuminancePercentage, "l", c.LuminancePercentage, "shorthand for --luminance-percentage")
	fs.BoolVar(&c.AdjustBrightness, "adjust-brightness", c.AdjustBrightness, "also set light brightness from the screen")
	fs.BoolVar(&c.AdjustBrightness, "b", c.AdjustBrightness, "shorthand for --adjust-brightness")
	fs.Float64Var(&c.MinBrightness, "min-brightness", c.MinBrightness, "lowest brightness in percent")
	fs.Float64Var(&c.MaxBrightness, "max-brightness", c.MaxBrightness, "highest brightness in percent")
	fs.BoolVar(&c.IgnoreBlack, "ignore-black", c.IgnoreBlack, "count black pixels as half brightness")
	fs.StringVar(&c.Region, "region", c.Region, "capture only x,y,width,height of the display")
	fs.IntVar(&c.DownscaleWidth, "downscale-width", c.DownscaleWidth, "shrink frames to this width before sampling (0 disables)")
	fs.StringVar(&c.Gamut, "gamut", c.Gamut, "Hue color gamut of the lights: A, B or C")
	fs.DurationVar(&c.Transition, "transition", c.Transition, "light transition time")
	fs.StringVar(&c.LightType, "light-type", c.LightType, "light backend: hue or lifx")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error, optionally per logger: warn,hue=debug")
	fs.StringVar(&c.CredentialsDir, "credentials-dir", c.CredentialsDir, "directory of credentials.yaml")
	return fs
}

// parseInterspersed allows flags after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		// Parse consumed a "--" terminator
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// applyPositional keeps the environment values when no arguments were given.
// LIFX has no bridge, so every argument names a light.
func (c *Config) applyPositional(args []string) {
	if len(args) == 0 {
		return
	}
	if strings.EqualFold(c.LightType, LightTypeLifx) {
		c.Lights = args
		return
	}
	c.Bridge = args[0]
	if len(args) > 1 {
		c.Lights = args[1:]
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LightType) {
	case LightTypeHue:
		if c.Bridge == "" {
			return &ConfigurationError{Err: errors.New("a bridge address (or \"discover\") is required")}
		}
	case LightTypeLifx:
	default:
		return &ConfigurationError{Option: "light-type", Err: fmt.Errorf("unknown light type %q", c.LightType)}
	}
	if len(c.Lights) == 0 {
		return &ConfigurationError{Err: errors.New("at least one light is required")}
	}
	for _, id := range c.Lights {
		if strings.TrimSpace(id) == "" {
			return &ConfigurationError{Err: errors.New("light identifiers must not be empty")}
		}
	}

	if c.Interval <= 0 {
		return &ConfigurationError{Option: "interval", Err: fmt.Errorf("%v is not positive", c.Interval)}
	}
	if c.Screen < 0 {
		return &ConfigurationError{Option: "screen", Err: fmt.Errorf("%d is negative", c.Screen)}
	}
	if c.DownscaleWidth < 0 {
		return &ConfigurationError{Option: "downscale-width", Err: fmt.Errorf("%d is negative", c.DownscaleWidth)}
	}
	if c.Transition < 0 {
		return &ConfigurationError{Option: "transition", Err: fmt.Errorf("%v is negative", c.Transition)}
	}
	if _, err := screen.ParseRegion(c.Region); err != nil {
		return &ConfigurationError{Option: "region", Err: err}
	}

	if _, err := colors.NewSampler(c.Mode, c.LuminancePercentage); err != nil {
		option := "mode"
		if errors.Is(err, colors.ErrInvalidPercentage) {
			option = "luminance-percentage"
		}
		return &ConfigurationError{Option: option, Err: err}
	}
	if err := colors.ValidateBrightnessBounds(c.MinBrightness, c.MaxBrightness); err != nil {
		option := "max-brightness"
		if c.MinBrightness < 0 || c.MinBrightness > 100 {
			option = "min-brightness"
		}
		return &ConfigurationError{Option: option, Err: err}
	}
	if _, err := colors.ParseGamut(c.Gamut); err != nil {
		return &ConfigurationError{Option: "gamut", Err: err}
	}
	if err := logging.CheckLevel(c.LogLevel); err != nil {
		return &ConfigurationError{Option: "log-level", Err: err}
	}
	return nil
}

// secondsValue accepts a Go duration ("250ms") or a number of seconds ("0.1").
type secondsValue time.Duration

func (v *secondsValue) String() string {
	return time.Duration(*v).String()
}

func (v *secondsValue) Set(s string) error {
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		*v = secondsValue(seconds * float64(time.Second))
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%q is neither seconds nor a duration", s)
	}
	*v = secondsValue(d)
	return nil
}
