package zap

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/altairlabs/lib-resilience/resilience/log"
)

// Config controls how the zap backend is built.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, error, fatal.
	Level string

	// Development enables human-friendly console output instead of JSON.
	Development bool

	// InitialFields are attached to every entry emitted by the logger.
	InitialFields map[string]any
}

// Logger is the zap implementation of the log.Logger interface.
type Logger struct {
	Logger *zap.SugaredLogger
}

// Compile-time assertion: *Logger implements log.Logger.
var _ log.Logger = (*Logger)(nil)

// NewLogger builds a Logger from the given Config.
func NewLogger(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = cfg.InitialFields
	zapCfg.DisableStacktrace = true

	logger, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}

	return &Logger{Logger: logger.Sugar()}, nil
}

// InitializeLogger builds a Logger from the environment and terminates the
// process if the backend cannot be constructed.
//
// LOG_LEVEL sets the minimum level (default info) and ENV_NAME=development
// switches to console output.
func InitializeLogger() *Logger {
	cfg := Config{
		Level:       os.Getenv("LOG_LEVEL"),
		Development: os.Getenv("ENV_NAME") == "development",
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		fmt.Printf("can't initialize zap logger: %v", err)
		os.Exit(1)
	}

	return logger
}

func (l *Logger) must() *zap.SugaredLogger {
	if l == nil || l.Logger == nil {
		return zap.NewNop().Sugar()
	}

	return l.Logger
}

// Debug implements the Debug Logger interface function.
func (l *Logger) Debug(args ...any) { l.must().Debug(args...) }

// Debugf implements the Debugf Logger interface function.
func (l *Logger) Debugf(format string, args ...any) { l.must().Debugf(format, args...) }

// Info implements the Info Logger interface function.
func (l *Logger) Info(args ...any) { l.must().Info(args...) }

// Infof implements the Infof Logger interface function.
func (l *Logger) Infof(format string, args ...any) { l.must().Infof(format, args...) }

// Warn implements the Warn Logger interface function.
func (l *Logger) Warn(args ...any) { l.must().Warn(args...) }

// Warnf implements the Warnf Logger interface function.
func (l *Logger) Warnf(format string, args ...any) { l.must().Warnf(format, args...) }

// Error implements the Error Logger interface function.
func (l *Logger) Error(args ...any) { l.must().Error(args...) }

// Errorf implements the Errorf Logger interface function.
func (l *Logger) Errorf(format string, args ...any) { l.must().Errorf(format, args...) }

// Fatal implements the Fatal Logger interface function.
func (l *Logger) Fatal(args ...any) { l.must().Fatal(args...) }

// Fatalf implements the Fatalf Logger interface function.
func (l *Logger) Fatalf(format string, args ...any) { l.must().Fatalf(format, args...) }

// WithFields returns a child logger with loosely-typed key/value pairs
// attached to every subsequent entry.
//
//nolint:ireturn
func (l *Logger) WithFields(fields ...any) log.Logger {
	return &Logger{Logger: l.must().With(fields...)}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.must().Sync()
}
