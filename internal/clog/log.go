// Package clog wraps go.uber.org/zap for the CLI's structured output
// (build/watch/check progress, rebuild timing, driver stderr), grounded
// on the teacher pack's own CLI logger setup (theRebelliousNerd-codenerd's
// cmd/nerd/main.go: a production zap.Config gated to debug level by a
// --verbose flag).
package clog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console-output zap.Logger, switching to debug level when
// verbose is set. Unlike a server process, the CLI has no log file or
// sampling config to carry, so this is the one config knob exposed.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}
