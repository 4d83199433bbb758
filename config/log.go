package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build returns a zap logger for the configured level. Development switches to
// the console encoder with stack traces on warnings.
func (c LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
