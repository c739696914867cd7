package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Hard bounds for the configured tag length; deployments pick a range
// inside these (tags in the field are 8-12 hex digits, but some readers
// emit padded values).
const (
	TagLengthFloor = 6
	TagLengthCeil  = 20
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// DB
	Env    string `env:"ENV" envDefault:"dev"` // "dev" | "prod"
	DBPath string `env:"DB_PATH" envDefault:"./data/wareneingang.db"`

	// Tag decoding
	InputTimeoutMs    int `env:"INPUT_TIMEOUT_MS" envDefault:"500"`
	MinScanIntervalMs int `env:"MIN_SCAN_INTERVAL_MS" envDefault:"1000"`
	MaxBufferLength   int `env:"MAX_BUFFER_LENGTH" envDefault:"64"`
	TagLengthMin      int `env:"TAG_LENGTH_MIN" envDefault:"8"`
	TagLengthMax      int `env:"TAG_LENGTH_MAX" envDefault:"12"`

	// Scan deduplication
	DuplicateWindowMinutes    int `env:"DUPLICATE_WINDOW_MINUTES" envDefault:"5"`
	CacheSweepIntervalMinutes int `env:"CACHE_SWEEP_INTERVAL_MINUTES" envDefault:"1"`
}

// FromEnv loads configuration from WARENEINGANG_-prefixed environment
// variables and normalizes the values.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "WARENEINGANG_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}

	if cfg.TagLengthMin < TagLengthFloor {
		cfg.TagLengthMin = TagLengthFloor
	}
	if cfg.TagLengthMax > TagLengthCeil {
		cfg.TagLengthMax = TagLengthCeil
	}
	if cfg.TagLengthMax < cfg.TagLengthMin {
		cfg.TagLengthMax = cfg.TagLengthMin
	}

	if cfg.InputTimeoutMs <= 0 {
		cfg.InputTimeoutMs = 500
	}
	if cfg.MinScanIntervalMs < 0 {
		cfg.MinScanIntervalMs = 0
	}
	if cfg.MaxBufferLength < cfg.TagLengthMax {
		cfg.MaxBufferLength = cfg.TagLengthMax
	}
	if cfg.DuplicateWindowMinutes <= 0 {
		cfg.DuplicateWindowMinutes = 5
	}
	if cfg.CacheSweepIntervalMinutes <= 0 {
		cfg.CacheSweepIntervalMinutes = 1
	}

	return cfg, nil
}

func (c Config) InputTimeout() time.Duration {
	return time.Duration(c.InputTimeoutMs) * time.Millisecond
}

func (c Config) MinScanInterval() time.Duration {
	return time.Duration(c.MinScanIntervalMs) * time.Millisecond
}

func (c Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowMinutes) * time.Minute
}

func (c Config) CacheSweepInterval() time.Duration {
	return time.Duration(c.CacheSweepIntervalMinutes) * time.Minute
}
