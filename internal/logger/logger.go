package logger

import (
	"fmt"
	"os"

	"storefront-be/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

func productionConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	return cfg
}

func developmentConfig() zap.Config {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}

// Init replaces the global logger with one built from the app settings:
// JSON in production, colored console otherwise. Every entry carries the
// environment name.
func Init(app config.App) error {
	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", app.LogLevel, err)
	}

	cfg := developmentConfig()
	if app.Env == "production" {
		cfg = productionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.InitialFields = map[string]any{"env": app.Env}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = l
	return nil
}

// Set replaces the global logger. Tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	log = l
}

// L returns the global logger, building a default one from APP_ENV on first
// use.
func L() *zap.Logger {
	if log == nil {
		if err := Init(config.App{Env: os.Getenv("APP_ENV")}); err != nil {
			log = zap.NewNop()
		}
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
