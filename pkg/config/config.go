// Package config loads the feed-engine's configuration from environment
// variables (and an optional .env file), following the teacher's
// MustLoad/Load generic wrapper shape.
package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads cfg from the environment, panicking on parse failure.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load()
	env.Must(cfg, env.Parse(cfg))
}

// Load loads cfg from the environment, returning any parse error.
func Load[T any](cfg T) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return env.Parse(cfg)
}

// Config holds the feed-engine's top-level configuration.
type Config struct {
	Symbols     []string      `env:"SYMBOLS,required"`
	RingCapacity int          `env:"RING_CAPACITY" envDefault:"1024"`
	// Feed selects the wire decoder: "length-prefixed" (ITCH-shaped,
	// big-endian) or "typed-header" (IEX-shaped, little-endian).
	Feed string `env:"FEED" envDefault:"length-prefixed"`
	KafkaConfig `envPrefix:"KAFKA_"`
	RedisConfig `envPrefix:"REDIS_"`
	PostgresConfig `envPrefix:"POSTGRES_"`
}

// KafkaConfig holds the raw byte-feed source configuration.
type KafkaConfig struct {
	Topic   string   `env:"TOPIC,required"`
	GroupID string   `env:"GROUP_ID" envDefault:"feed-engine"`
	Brokers []string `env:"BROKERS,required"`
}

// RedisConfig holds the per-symbol snapshot store configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR,required"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"feed-engine:snapshot:"`
}

// PostgresConfig holds the tick/replay persistence store configuration.
type PostgresConfig struct {
	DSN       string `env:"DSN,required"`
	BatchSize int    `env:"BATCH_SIZE" envDefault:"256"`
}
