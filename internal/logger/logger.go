package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Config selects the level and where the per-run log file goes.
// An empty Dir disables the file sink.
type Config struct {
	Level  string
	Dir    string
	Prefix string
}

// New builds a logger writing to stdout and, when cfg.Dir is set, to a
// timestamped file created for this run. The returned func flushes and
// closes the file.
func New(cfg Config) (*Logger, func() error, error) {
	level := toZapLevel(cfg.Level)
	cores := []zapcore.Core{newConsoleCore(level)}

	var (
		file *os.File
		path string
	)
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir %q: %w", cfg.Dir, err)
		}
		path = filepath.Join(cfg.Dir, runFileName(cfg.Prefix, time.Now()))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", path, err)
		}
		file = f
		cores = append(cores, newFileCore(f, level))
	}

	l := &Logger{SugaredLogger: zap.New(zapcore.NewTee(cores...)).Sugar(), path: path}
	cleanup := func() error {
		_ = l.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return l, cleanup, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func runFileName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "pressbot"
	}
	return prefix + "-" + now.Format("20060102-150405") + ".log"
}
