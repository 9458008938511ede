// Package logging builds the zap loggers used by the CLI and the pipeline.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels accepted by New.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelOff   = "off"
)

// FileName is the name of the run log inside an output directory.
const FileName = "postoga.log"

// ParseLevel maps a level name to a zap level. ok is false for "off".
func ParseLevel(s string) (level zapcore.Level, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelDebug:
		return zapcore.DebugLevel, true, nil
	case "", LevelInfo:
		return zapcore.InfoLevel, true, nil
	case LevelWarn, "warning":
		return zapcore.WarnLevel, true, nil
	case LevelOff, "none":
		return zapcore.InfoLevel, false, nil
	}
	return zapcore.InfoLevel, false, fmt.Errorf("unknown log level %q (want %s, %s, %s or %s)", s, LevelDebug, LevelInfo, LevelWarn, LevelOff)
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "time"
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("Jan _2 15:04:05.000")
	enc.StacktraceKey = "" // to hide stacktrace info
	return enc
}

// New builds a console logger writing to stderr at the given level. "off"
// returns a no-op logger.
func New(level string) (*zap.Logger, error) {
	lvl, ok, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if !ok {
		return zap.NewNop(), nil
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig = encoderConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// WithFile returns a logger that writes everything base writes and also
// appends entries at level or above to path. Close the returned function
// when done with the file.
func WithFile(base *zap.Logger, level, path string) (*zap.Logger, func() error, error) {
	lvl, ok, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return base, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	enc := encoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), lvl)

	logger := zap.New(zapcore.NewTee(base.Core(), fileCore))
	closeFn := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}
