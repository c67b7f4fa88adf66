// Package logging builds the zap loggers used across the server
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the logging configuration
type Config struct {
	Debug       bool
	OutputPaths []string
}

// DefaultConfig returns a production configuration writing to stdout
func DefaultConfig() Config {
	return Config{OutputPaths: []string{"stdout"}}
}

// StdioConfig returns a configuration for the MCP stdio mode, where stdout
// carries the protocol and logs must go to stderr
func StdioConfig(debug bool) Config {
	return Config{Debug: debug, OutputPaths: []string{"stderr"}}
}

// EncoderConfig is the JSON layout shared by every logger
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New creates a logger. Debug enables debug level, callers and stack traces.
func New(config Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if config.Debug {
		level = zapcore.DebugLevel
	}

	outputs := config.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       config.Debug,
		DisableCaller:     !config.Debug,
		DisableStacktrace: !config.Debug,
		Encoding:          "json",
		EncoderConfig:     EncoderConfig(),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewWriter creates a logger writing JSON lines to w
func NewWriter(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(EncoderConfig()),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}
