// Package logger wraps zap so the rest of the code can take a single
// injected logger type without caring how it is built.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap sugared logger.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a production logger. The TUI owns stdout, so log output
// goes to logPath when set, otherwise stderr.
func New(logPath string, debug bool) (*Logger, error) {
	config := zap.NewProductionConfig()

	out := "stderr"
	if logPath != "" {
		out = logPath
	}
	config.OutputPaths = []string{out}
	config.ErrorOutputPaths = []string{out}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l.SugaredLogger != nil {
		return l.SugaredLogger.Sync()
	}
	return nil
}
