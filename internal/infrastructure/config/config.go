package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// FleetAPIURL is the base URL of the remote fleet API the console fronts,
	// e.g. http://localhost:9090/api. It is the console's one mandatory piece
	// of external configuration.
	FleetAPIURL string `env:"FLEET_API_URL, default=http://localhost:9090/api"`

	Session SessionConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// Secret signs the session cookie. Must be set outside development.
	Secret string `env:"SESSION_SECRET, default=dev-only-secret"`
	// TTL bounds both the cookie lifetime and the persisted token's expiry.
	TTL time.Duration `env:"SESSION_TTL, default=24h"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
