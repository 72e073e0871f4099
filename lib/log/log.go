package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hive/hive"
)

type OutputEncoder string

const (
	ConsoleOutputEncoder OutputEncoder = "console"
	JSONOutputEncoder    OutputEncoder = "json"
)

type Options struct {
	encoder OutputEncoder
	level   zapcore.Level
	name    string
}

func DefaultOptions() *Options {
	return &Options{encoder: JSONOutputEncoder, level: zapcore.InfoLevel, name: "hive"}
}

func (o *Options) WithOutputEncoder(encoder OutputEncoder) *Options {
	o.encoder = encoder
	return o
}

// WithLevel parses level, an unknown level keeps the current one.
func (o *Options) WithLevel(level string) *Options {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err == nil {
		o.level = l
	}
	return o
}

func (o *Options) WithName(name string) *Options {
	o.name = name
	return o
}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root  = zap.NewNop().Sugar()
)

// Setup replaces the process logger.
func Setup(options *Options) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	switch options.encoder {
	case ConsoleOutputEncoder:
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}
	level.SetLevel(options.level)
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)

	mu.Lock()
	defer mu.Unlock()
	root = zap.New(core, zap.AddCaller()).Named(options.name).Sugar()
}

// SetLevel changes the level of every logger handed out so far.
func SetLevel(l string) {
	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(l)); err == nil {
		level.SetLevel(parsed)
	}
}

func Named(name string) hive.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.Named(name)
}

// Ctx returns a logger named after the component context.
func Ctx(ctx hive.Context) hive.Logger {
	if ctx.Name() == "" {
		return Named("runtime")
	}
	return Named(ctx.Name())
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
