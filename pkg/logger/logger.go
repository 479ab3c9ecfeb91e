// Package logger builds the zap logger used throughout the core for
// structured, leveled logging keyed by service name.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap configuration tagged with service, and
// returns its SugaredLogger for the looser call-site ergonomics the rest
// of the core uses.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
	}
	return log.Sugar().With("service", service)
}
