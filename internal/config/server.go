package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var (
	ErrUnknownStore   = errors.New("unknown_store_backend")
	ErrMissingStoreDS = errors.New("missing_store_datasource")
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	StoreBackend string        `env:"STORE_BACKEND" envDefault:"memory"`
	PostgresDSN  string        `env:"POSTGRES_DSN"`
	RedisURL     string        `env:"REDIS_URL"`
	SnapshotTTL  time.Duration `env:"SNAPSHOT_TTL" envDefault:"720h"`

	// SpinStream is the redis stream spin events are published to. Empty
	// disables publishing.
	SpinStream string `env:"SPIN_STREAM" envDefault:"roulette.spins"`

	CORSOrigins     []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	EventBufferSize int      `env:"EVENT_BUFFER_SIZE" envDefault:"200"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c ServerConfig) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
		return nil
	case StorePostgres:
		if c.PostgresDSN == "" {
			return ErrMissingStoreDS
		}
		return nil
	case StoreRedis:
		if c.RedisURL == "" {
			return ErrMissingStoreDS
		}
		return nil
	default:
		return ErrUnknownStore
	}
}
