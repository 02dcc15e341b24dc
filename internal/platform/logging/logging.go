// Package logging provides the structured logger used across every
// component. It mirrors the teacher's mlog.Logger contract (Info/Error/Warn/
// Debug/Fatal plus WithFields) so call sites never depend on zap directly.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the common interface every service and adapter depends on.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Debug(args ...any)
	Debugf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	WithFields(fields ...any) Logger
	Sync() error
}

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a production or development zap logger depending on envName,
// honoring a LOG_LEVEL override the same way common/mzap.InitializeLogger does.
func New(envName, logLevel string) (Logger, error) {
	var cfg zap.Config

	if envName == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if logLevel != "" {
		var lvl zapcore.Level
		if err := lvl.Set(logLevel); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &zapLogger{s: l.Sugar()}, nil
}

// NewNop returns a logger that discards everything; used in tests.
func NewNop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

func (l *zapLogger) Info(args ...any)             { l.s.Info(args...) }
func (l *zapLogger) Infof(f string, args ...any)  { l.s.Infof(f, args...) }
func (l *zapLogger) Warn(args ...any)             { l.s.Warn(args...) }
func (l *zapLogger) Warnf(f string, args ...any)  { l.s.Warnf(f, args...) }
func (l *zapLogger) Error(args ...any)            { l.s.Error(args...) }
func (l *zapLogger) Errorf(f string, args ...any) { l.s.Errorf(f, args...) }
func (l *zapLogger) Debug(args ...any)            { l.s.Debug(args...) }
func (l *zapLogger) Debugf(f string, args ...any) { l.s.Debugf(f, args...) }
func (l *zapLogger) Fatal(args ...any)            { l.s.Fatal(args...) }
func (l *zapLogger) Fatalf(f string, args ...any) { l.s.Fatalf(f, args...) }

func (l *zapLogger) WithFields(fields ...any) Logger {
	return &zapLogger{s: l.s.With(fields...)}
}

func (l *zapLogger) Sync() error {
	err := l.s.Sync()
	// stdout/stderr sync on a terminal commonly errors with ENOTTY; ignore it
	// the same way most zap-based services do.
	if err != nil && os.Getenv("CI") == "" {
		return nil
	}

	return err
}
