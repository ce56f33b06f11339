package reverb

import (
	"errors"
	"log/slog"
)

// Option mutates engine construction parameters.
type Option func(*engineConfig) error

type engineConfig struct {
	logger   *slog.Logger
	dryComb0 bool
}

// WithLogger routes per-stage debug records and advisory ring statuses to
// logger. Records are only built when logger has debug enabled, so a logger
// whose level is raised at runtime costs one Enabled call per stage.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *engineConfig) error {
		if logger == nil {
			return errors.New("reverb logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithDryComb0 feeds comb0 with the raw input instead of the all-pass chain
// output. The all-pass stages are still evaluated and traced but never reach
// the output, which is how the device firmware behaves.
func WithDryComb0() Option {
	return func(cfg *engineConfig) error {
		cfg.dryComb0 = true
		return nil
	}
}
