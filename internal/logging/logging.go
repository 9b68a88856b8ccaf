// Package logging builds the zap logger shared by the form, the inquiry
// client and the analytics reporter.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gearx-ai/signup/internal/config"
)

// New returns a logger for cfg. With a file configured, JSON lines are
// appended there. Otherwise console-encoded lines go to fallback; a nil
// fallback yields a no-op logger, which the TUI uses to keep the terminal clean.
func New(cfg config.Log, fallback io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	if cfg.File != "" {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
		logger, err := zc.Build()
		if err != nil {
			return nil, fmt.Errorf("logging: opening %s: %w", cfg.File, err)
		}
		return logger, nil
	}

	if fallback == nil {
		return zap.NewNop(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(fallback), level)
	return zap.New(core), nil
}
