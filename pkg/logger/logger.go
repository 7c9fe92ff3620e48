// Package logger provides structured logging for hconf
package logger

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/hconf/pkg/errors"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

type contextKey string

// Context keys picked up by WithContext.
const (
	RunIDKey         contextKey = "run_id"
	ProfileKey       contextKey = "profile"
	ConfigurationKey contextKey = "configuration"
)

var contextKeys = []contextKey{RunIDKey, ProfileKey, ConfigurationKey}

// Config selects level, encoding and destinations of the logger.
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

// DefaultConfig is what the CLI uses when nothing else is configured.
func DefaultConfig() Config {
	return Config{Level: "info", Encoding: "console", OutputPaths: []string{"stderr"}}
}

// New builds a zap logger. Empty fields fall back to DefaultConfig.
func New(cfg Config) (*zap.Logger, error) {
	def := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = def.Level
	}
	if cfg.Encoding == "" {
		cfg.Encoding = def.Encoding
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = def.OutputPaths
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = level
	zc.Encoding = cfg.Encoding
	zc.OutputPaths = cfg.OutputPaths
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.MessageKey = "message"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// Init replaces the global logger with one built from cfg.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	prev := global
	global = l
	mu.Unlock()
	if prev != nil {
		_ = prev.Sync()
	}
	return nil
}

// Get returns the global logger, creating a default one on first use.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		return global
	}
	if l, err := New(DefaultConfig()); err == nil {
		global = l
	} else {
		global = zap.NewNop()
	}
	return global
}

// With returns a child of the global logger.
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithContext adds the run, profile and configuration found in ctx.
func WithContext(ctx context.Context) *zap.Logger {
	var fields []zap.Field
	for _, k := range contextKeys {
		if v, ok := ctx.Value(k).(string); ok {
			fields = append(fields, zap.String(string(k), v))
		}
	}
	return With(fields...)
}

// ErrorFields renders err as zap fields, expanding the details of structured errors.
func ErrorFields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	fields := []zap.Field{zap.Error(err), zap.String("error_type", string(errors.TypeOf(err)))}
	var e *errors.Error
	if stderrors.As(err, &e) {
		for _, k := range e.DetailKeys() {
			fields = append(fields, zap.Any(k, e.Details[k]))
		}
	}
	return fields
}

// Sync flushes the global logger, if one was created.
func Sync() error {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Sync()
}
