// Package config loads calcd settings from an optional TOML file and the
// process environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/history"
)

// Config is the full runtime configuration.
type Config struct {
	ServiceName string          `toml:"service_name"`
	Addr        string          `toml:"addr"`
	LogLevel    string          `toml:"log_level"`
	AngleMode   string          `toml:"angle_mode"`
	History     HistoryConfig   `toml:"history"`
	Telemetry   TelemetryConfig `toml:"telemetry"`
}

// HistoryConfig selects where past calculations are kept.
type HistoryConfig struct {
	Backend string `toml:"backend"` // "memory", "file" or "sqlite"
	Path    string `toml:"path"`
	Limit   int    `toml:"limit"`
}

// TelemetryConfig toggles the OTLP exporters.
type TelemetryConfig struct {
	Traces  bool `toml:"traces"`
	Metrics bool `toml:"metrics"`
	Logs    bool `toml:"logs"`
}

func Default() Config {
	return Config{
		ServiceName: "calcd",
		Addr:        ":8080",
		LogLevel:    "info",
		AngleMode:   calc.Degrees.String(),
		History: HistoryConfig{
			Backend: history.BackendMemory,
			Limit:   history.DefaultLimit,
		},
		Telemetry: TelemetryConfig{
			Traces:  true,
			Metrics: true,
		},
	}
}

// Load starts from Default, decodes path when it is non-empty, applies the
// environment and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment as seen through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	flag := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("OTEL_SERVICE_NAME", &c.ServiceName)
	str("CALC_ADDR", &c.Addr)
	str("CALC_LOG_LEVEL", &c.LogLevel)
	str("CALC_ANGLE_MODE", &c.AngleMode)
	str("CALC_HISTORY_BACKEND", &c.History.Backend)
	str("CALC_HISTORY_PATH", &c.History.Path)

	if v, ok := lookup("CALC_HISTORY_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CALC_HISTORY_LIMIT: %w", err)
		}
		c.History.Limit = n
	}

	return errors.Join(
		flag("CALC_TRACES", &c.Telemetry.Traces),
		flag("CALC_METRICS", &c.Telemetry.Metrics),
		flag("CALC_OTLP_LOGS", &c.Telemetry.Logs),
	)
}

func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := calc.ParseAngleMode(c.AngleMode); err != nil {
		errs = append(errs, fmt.Errorf("angle_mode: %w", err))
	}
	if c.History.Limit <= 0 {
		errs = append(errs, fmt.Errorf("history.limit must be positive, got %d", c.History.Limit))
	}

	switch strings.ToLower(c.History.Backend) {
	case history.BackendMemory:
	case history.BackendFile, history.BackendSQLite:
		if c.History.Path == "" {
			errs = append(errs, fmt.Errorf("history.path is required for the %s backend", c.History.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("history.backend: %w: %q", history.ErrUnknownBackend, c.History.Backend))
	}

	return errors.Join(errs...)
}

// Mode returns the parsed start-up angle mode. Call after Validate.
func (c Config) Mode() calc.AngleMode {
	mode, _ := calc.ParseAngleMode(c.AngleMode)
	return mode
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
