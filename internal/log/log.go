package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the process-wide logger.
type Config struct {
	Level    string `conf:"level" yaml:"level" json:"level"`
	Encoding string `conf:"encoding" yaml:"encoding" json:"encoding"`
}

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger("console")
)

func newLogger(encoding string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)

	return zap.New(core, zap.AddCallerSkip(1))
}

// Setup reconfigures the global logger. Safe to call more than once;
// intended for process startup.
func Setup(cfg Config) {
	if cfg.Level != "" {
		if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level.SetLevel(lvl)
		}
	}

	mu.Lock()
	logger = newLogger(cfg.Encoding)
	mu.Unlock()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return logger
}

// DebugEnabled reports whether debug logging is active. Use to guard
// expensive field construction.
func DebugEnabled(_ context.Context) bool {
	return level.Enabled(zapcore.DebugLevel)
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	current().Debug(msg, withHooks(ctx, msg, fields)...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	current().Info(msg, withHooks(ctx, msg, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	current().Warn(msg, withHooks(ctx, msg, fields)...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	current().Error(msg, withHooks(ctx, msg, fields)...)
}
