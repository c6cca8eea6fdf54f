package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg = zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		// light failures must reach the error stream, so everything goes to stderr
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	leveler = &levelSetter{
		levelers:     make(map[string]zap.AtomicLevel),
		defaultLevel: zap.InfoLevel,
	}
)

type Leveler interface {
	SetLevel(name string, level zapcore.Level)
	GetLevel(name string) zapcore.Level
	SetAll(level zapcore.Level)
}

type levelSetter struct {
	levelers     map[string]zap.AtomicLevel
	defaultLevel zapcore.Level
	mu           sync.RWMutex
}

var _ Leveler = (*levelSetter)(nil)

func GetLeveler() Leveler {
	return leveler
}

func (lw *levelSetter) SetLevel(name string, level zapcore.Level) {
	_ = lw.setLevel(name, level)
}

func (lw *levelSetter) GetLevel(name string) zapcore.Level {
	lw.mu.RLock()
	defer lw.mu.RUnlock()

	if l, ok := lw.levelers[name]; ok {
		return l.Level()
	}

	return lw.defaultLevel
}

// SetAll changes the level of every existing logger and of loggers created
// afterwards.
func (lw *levelSetter) SetAll(level zapcore.Level) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.defaultLevel = level
	for _, l := range lw.levelers {
		l.SetLevel(level)
	}
}

func (lw *levelSetter) setLevel(name string, level zapcore.Level) zap.AtomicLevel {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, ok := lw.levelers[name]; !ok {
		lw.levelers[name] = zap.NewAtomicLevelAt(level)
	}

	lw.levelers[name].SetLevel(level)

	return lw.levelers[name]
}

func (lw *levelSetter) levelFor(name string) zap.AtomicLevel {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if l, ok := lw.levelers[name]; ok {
		return l
	}
	l := zap.NewAtomicLevelAt(lw.defaultLevel)
	lw.levelers[name] = l
	return l
}

// SetLevel applies a level spec such as "info" or "warn,hue=debug". A bare
// level applies to all loggers, name=level to the named logger only.
func SetLevel(spec string) error {
	all, named, err := parseLevels(spec)
	if err != nil {
		return err
	}
	if all != nil {
		leveler.SetAll(*all)
	}
	for name, level := range named {
		leveler.SetLevel(name, level)
	}
	return nil
}

// CheckLevel reports whether spec would be accepted by SetLevel.
func CheckLevel(spec string) error {
	_, _, err := parseLevels(spec)
	return err
}

func parseLevels(spec string) (*zapcore.Level, map[string]zapcore.Level, error) {
	var all *zapcore.Level
	named := make(map[string]zapcore.Level)

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, levelName, hasName := strings.Cut(part, "=")
		if !hasName {
			levelName = name
		}
		level, err := zapcore.ParseLevel(strings.TrimSpace(levelName))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", part, err)
		}
		if !hasName {
			all = &level
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, fmt.Errorf("invalid log level %q: missing logger name", part)
		}
		named[name] = level
	}
	return all, named, nil
}

func New(name string) *zap.SugaredLogger {
	c := cfg
	c.Level = leveler.levelFor(name)
	return zap.Must(c.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
}
