package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Info(msg string, keysAndValues ...any)
	Debug(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
}

type NOPLogger struct {
}

func (n NOPLogger) Info(msg string, keysAndValues ...any) {
}
func (n NOPLogger) Debug(msg string, keysAndValues ...any) {
}
func (n NOPLogger) Error(msg string, err error, keysAndValues ...any) {
}

// ZapLogger sends log lines to a zap logger.
type ZapLogger struct {
	log *zap.SugaredLogger
}

func NewZapLogger(l *zap.Logger) ZapLogger {
	return ZapLogger{log: l.Sugar()}
}

func (z ZapLogger) Info(msg string, keysAndValues ...any) {
	z.log.Infow(msg, keysAndValues...)
}
func (z ZapLogger) Debug(msg string, keysAndValues ...any) {
	z.log.Debugw(msg, keysAndValues...)
}
func (z ZapLogger) Error(msg string, err error, keysAndValues ...any) {
	z.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// BuildZap creates a console logger on stderr at the given level
// ("debug", "info", "warn" or "error"; anything else means info).
func BuildZap(level string) (*zap.Logger, error) {
	var logLevel zapcore.Level
	switch level {
	case "debug":
		logLevel = zap.DebugLevel
	case "warn":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zap.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(logLevel),
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return cfg.Build()
}
