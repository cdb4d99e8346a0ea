// Package logging wraps zap with the small surface the generator needs.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeQuiet = "quiet"
	ModeDev   = "dev"
	ModeProd  = "prod"
)

// Logger is a sugared zap logger.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger writing to w. Quiet mode discards everything so
// go generate output stays clean unless asked otherwise.
func New(mode string, w io.Writer) (*Logger, error) {
	var encoder zapcore.Encoder
	level := zapcore.DebugLevel
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeQuiet:
		return Nop(), nil
	case ModeDev, "development":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	case ModeProd, "production":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		level = zapcore.InfoLevel
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
	if w == nil {
		w = io.Discard
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, nil
}

// Nop returns a logger that drops every entry.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
