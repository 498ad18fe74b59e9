package logger

import (
	"go.uber.org/zap"
)

type LoggerConfig struct {
	Debug bool
}

// NewLogger builds the process logger: human-readable debug output when
// Debug is set, JSON production output otherwise.
func NewLogger(cfg *LoggerConfig) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
