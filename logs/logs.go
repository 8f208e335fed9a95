package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var verbose atomic.Bool

// Init builds the process logger. The terminal belongs to the UI, so records
// go to a JSON file; an empty path keeps the no-op logger. The returned
// function flushes and closes the sink.
func Init(path string, debug bool) (*zap.Logger, func() error, error) {
	verbose.Store(debug)
	if path == "" {
		logger := zap.NewNop()
		zap.ReplaceGlobals(logger)
		return logger, func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	logger := zap.New(core).With(zap.String("session", uuid.NewString()))
	zap.ReplaceGlobals(logger)
	return logger, func() error {
		_ = logger.Sync()
		return f.Close()
	}, nil
}

// LogV writes a debug record only when verbose logging is enabled.
func LogV(msg string, fields ...zap.Field) {
	if verbose.Load() {
		zap.L().Debug(msg, fields...)
	}
}
