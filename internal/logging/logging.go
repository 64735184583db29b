// Package logging builds the process zap logger and adapts it to the store's
// key/value logging interface.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stockcore/internal/config"
)

// New builds a zap logger from cfg. Format is json or console.
func New(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		zcfg = zap.NewProductionConfig()
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %s", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// StoreLogger satisfies core.Logger on top of a sugared zap logger.
type StoreLogger struct {
	s *zap.SugaredLogger
}

// NewStoreLogger wraps l, naming it "store".
func NewStoreLogger(l *zap.Logger) StoreLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return StoreLogger{s: l.Named("store").Sugar()}
}

func (l StoreLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l StoreLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l StoreLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l StoreLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
