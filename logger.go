package relay

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig controls how NewLogger builds the process-wide zap.Logger.
// Mirrors the handful of knobs the teacher's own config exposes for its
// logger (level, whether to use the human-readable console encoder in
// development).
type LoggerConfig struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string `mapstructure:"level" json:"level" yaml:"level" toml:"level"`

	// Development selects the console encoder with stack traces on
	// warn+, instead of the JSON production encoder.
	Development bool `mapstructure:"development" json:"development" yaml:"development" toml:"development"`
}

// NewLogger builds a zap.Logger from cfg. A zero-value LoggerConfig yields
// a sensible production JSON logger at info level.
func NewLogger(cfg LoggerConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(orDefault(cfg.Level, "info"))); err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
