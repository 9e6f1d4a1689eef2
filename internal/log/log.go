// Package log provides category-tagged logging for RaptorFlow.
//
// The TUI owns stdout, so logs go to a file (or are discarded entirely until
// Init is called). Every call site passes a Category first so log output can
// be grepped per subsystem.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category tags a log line with the subsystem it came from.
type Category string

const (
	// CatDB covers database lifecycle, migrations, and repositories.
	CatDB Category = "db"
	// CatWizard covers wizard controller transitions.
	CatWizard Category = "wizard"
	// CatBackend covers calls to the RaptorFlow backend service.
	CatBackend Category = "backend"
	// CatServer covers the local viewer API.
	CatServer Category = "server"
	// CatUI covers TUI lifecycle events.
	CatUI Category = "ui"
	// CatConfig covers configuration loading.
	CatConfig Category = "config"
)

var (
	mu     sync.RWMutex
	logger *zap.SugaredLogger = zap.NewNop().Sugar()
)

// Init configures file-backed logging at the given path. Levels below the
// given level are dropped. Until Init is called all logging is a no-op,
// which keeps tests and one-shot CLI commands silent.
func Init(path string, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", level, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	mu.Lock()
	logger = built.Sugar()
	mu.Unlock()
	return nil
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}

// Debug logs a debug-level message with key-value pairs.
func Debug(cat Category, msg string, keysAndValues ...any) {
	sugar().Debugw(msg, append([]any{"cat", string(cat)}, keysAndValues...)...)
}

// Info logs an info-level message with key-value pairs.
func Info(cat Category, msg string, keysAndValues ...any) {
	sugar().Infow(msg, append([]any{"cat", string(cat)}, keysAndValues...)...)
}

// Warn logs a warning with key-value pairs.
func Warn(cat Category, msg string, keysAndValues ...any) {
	sugar().Warnw(msg, append([]any{"cat", string(cat)}, keysAndValues...)...)
}

// Error logs an error-level message with key-value pairs.
func Error(cat Category, msg string, keysAndValues ...any) {
	sugar().Errorw(msg, append([]any{"cat", string(cat)}, keysAndValues...)...)
}

// ErrorErr logs an error-level message with the error attached, followed by
// any additional key-value pairs.
func ErrorErr(cat Category, msg string, err error, keysAndValues ...any) {
	sugar().Errorw(msg, append([]any{"cat", string(cat), "error", err}, keysAndValues...)...)
}

func sugar() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
