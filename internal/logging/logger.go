// Package logging builds the application's zap logger. The TUI owns the terminal, so
// logs go to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Off disables logging when used as the output path.
const Off = "off"

// Config holds logging configuration.
type Config struct {
	Level string
	Path  string
}

// New returns a JSON file logger at the configured level. An empty or "off" path
// returns a no-op logger. Unknown levels fall back to info.
func New(cfg Config) (*zap.Logger, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, Off) {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir log dir: %w", err)
	}

	zc := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc.Level = level
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	zc.Sampling = nil

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", "machineconfig")), nil
}
