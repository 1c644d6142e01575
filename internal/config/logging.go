package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

var (
	ErrLogLevel    = errors.New("invalid_log_level")
	ErrLogSampling = errors.New("invalid_log_sampling")
	ErrLogFileSize = errors.New("invalid_log_file_size")
)

// LogConfig drives the process-wide zerolog logger. File output is capped
// at MaxMB and truncated when the cap is reached.
type LogConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty  bool   `env:"LOG_PRETTY" envDefault:"false"`
	Service string `env:"LOG_SERVICE" envDefault:"roulette-oracle"`

	// SampleEvery keeps one event in N. Zero and one keep everything.
	SampleEvery int `env:"LOG_SAMPLE_EVERY" envDefault:"0"`

	File  string `env:"LOG_FILE"`
	MaxMB int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c LogConfig) Validate() error {
	if _, ok := c.parseLevel(); !ok {
		return ErrLogLevel
	}
	if c.SampleEvery < 0 {
		return ErrLogSampling
	}
	if c.File != "" && c.MaxMB < 1 {
		return ErrLogFileSize
	}
	return nil
}

// ZeroLevel is the configured level, or info when it does not parse.
func (c LogConfig) ZeroLevel() zerolog.Level {
	if lvl, ok := c.parseLevel(); ok {
		return lvl
	}
	return zerolog.InfoLevel
}

// Sampler returns nil when every event should be kept.
func (c LogConfig) Sampler() zerolog.Sampler {
	if c.SampleEvery <= 1 {
		return nil
	}
	return &zerolog.BasicSampler{N: uint32(c.SampleEvery)}
}

func (c LogConfig) parseLevel() (zerolog.Level, bool) {
	v := strings.ToLower(strings.TrimSpace(c.Level))
	if v == "" {
		return zerolog.InfoLevel, true
	}
	lvl, err := zerolog.ParseLevel(v)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return lvl, true
}
