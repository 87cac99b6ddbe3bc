package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Production emits JSON with an ISO8601
// "timestamp" key; anything else gets the colored development console. When
// sink is non-nil, JSON lines are teed into it as well.
func New(env, service string, sink io.Writer) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if sink == nil {
		l, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return l.With(zap.String("service", service)), nil
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.AddSync(os.Stdout), level)

	jsonConfig := config.EncoderConfig
	jsonConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	remote := zapcore.NewCore(zapcore.NewJSONEncoder(jsonConfig), zapcore.AddSync(sink), level)

	l := zap.New(zapcore.NewTee(console, remote), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return l.With(zap.String("service", service)), nil
}

// Must is New for main packages: it exits the process on failure.
func Must(env, service string, sink io.Writer) *zap.Logger {
	l, err := New(env, service, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zap.ReplaceGlobals(l)
	return l
}
