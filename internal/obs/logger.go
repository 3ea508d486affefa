// Package obs wires the process-wide structured logger used by every
// agent node, tool dispatch, debate turn, and controller transition.
package obs

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

func init() {
	log = zap.NewNop()
}

// Init builds the global logger. level is one of debug/info/warn/error;
// logFile, if non-empty, additionally tees JSON-encoded entries to disk.
func Init(level string, logFile string) error {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), zapLevel),
	}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), zapLevel))
	}

	log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return nil
}

// L returns the process-wide logger. Safe to call before Init; logs are
// discarded until Init runs.
func L() *zap.Logger {
	return log
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	_ = log.Sync()
}

// With returns a child logger carrying the given structured fields,
// the idiom used throughout internal/agents and internal/tooling to
// attach ticker/node/duration context to a call site.
func With(fields ...zap.Field) *zap.Logger {
	return log.With(fields...)
}
