// Package config resolves the jcrev command settings from the environment.
//
// Values come from JCREV_* variables, optionally seeded from .env files.
// Variables already present in the process environment win over .env
// entries; command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cwbudde/algo-jcrev/dsp/core"
	"github.com/cwbudde/algo-jcrev/dsp/effects/reverb"
)

// Environment variable names.
const (
	EnvSampleRate = "JCREV_SAMPLE_RATE"
	EnvBlockSize  = "JCREV_BLOCK_SIZE"
	EnvDelay      = "JCREV_DELAY"
	EnvPreset     = "JCREV_PRESET"
	EnvDryComb0   = "JCREV_DRY_COMB0"
	EnvLogLevel   = "JCREV_LOG_LEVEL"
)

// Preset names accepted by ParsePreset.
const (
	PresetProduction = "production"
	PresetJCRev      = "jcrev"
)

// Config holds the resolved settings.
type Config struct {
	SampleRate float64
	BlockSize  int
	Delay      int
	Preset     string
	DryComb0   bool
	LogLevel   slog.Level
}

// Default returns the device configuration.
func Default() Config {
	return Config{
		SampleRate: core.DefaultSampleRate,
		BlockSize:  core.DefaultBlockSize,
		Delay:      reverb.DefaultDelay,
		Preset:     PresetProduction,
		LogLevel:   slog.LevelInfo,
	}
}

// Load reads the given .env files (".env" when none are named), then
// resolves the configuration from the process environment. Missing .env
// files are not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration through lookup, starting from
// Default.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookupTrim(lookup, EnvSampleRate); ok {
		sr, err := strconv.ParseFloat(v, 64)
		if err != nil || sr <= 0 {
			return Config{}, fmt.Errorf("config: %s must be a positive number: %q", EnvSampleRate, v)
		}
		cfg.SampleRate = sr
	}

	if v, ok := lookupTrim(lookup, EnvBlockSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n%2 != 0 {
			return Config{}, fmt.Errorf("config: %s must be an even integer >= 2: %q", EnvBlockSize, v)
		}
		cfg.BlockSize = n
	}

	if v, ok := lookupTrim(lookup, EnvDelay); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("config: %s must be > 0: %q", EnvDelay, v)
		}
		cfg.Delay = n
	}

	if v, ok := lookupTrim(lookup, EnvPreset); ok {
		if _, err := ParsePreset(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvPreset, err)
		}
		cfg.Preset = strings.ToLower(v)
	}

	if v, ok := lookupTrim(lookup, EnvDryComb0); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s must be a boolean: %q", EnvDryComb0, v)
		}
		cfg.DryComb0 = b
	}

	if v, ok := lookupTrim(lookup, EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}

	return cfg, nil
}

func lookupTrim(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ParsePreset returns the coefficient set called name (case-insensitive).
func ParsePreset(name string) (reverb.Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PresetProduction:
		return reverb.ProductionParams(), nil
	case PresetJCRev:
		return reverb.JCRevParams(), nil
	default:
		return reverb.Params{}, fmt.Errorf("unknown preset %q (want %s or %s)", name, PresetProduction, PresetJCRev)
	}
}

// Params returns the coefficients of the configured preset, validated
// against the configured delay line.
func (c Config) Params() (reverb.Params, error) {
	p, err := ParsePreset(c.Preset)
	if err != nil {
		return reverb.Params{}, err
	}
	if err := p.Validate(c.Delay + 1); err != nil {
		return reverb.Params{}, err
	}
	return p, nil
}

// ProcessorOptions returns the stream settings as core options.
func (c Config) ProcessorOptions() []core.ProcessorOption {
	return []core.ProcessorOption{
		core.WithSampleRate(c.SampleRate),
		core.WithBlockSize(c.BlockSize),
	}
}

// EngineOptions returns the reverb options implied by c.
func (c Config) EngineOptions(logger *slog.Logger) []reverb.Option {
	var opts []reverb.Option
	if logger != nil {
		opts = append(opts, reverb.WithLogger(logger))
	}
	if c.DryComb0 {
		opts = append(opts, reverb.WithDryComb0())
	}
	return opts
}

// NewEngine builds a reverb engine for c.
func (c Config) NewEngine(logger *slog.Logger) (*reverb.Engine, error) {
	return reverb.New(c.Delay, c.EngineOptions(logger)...)
}
