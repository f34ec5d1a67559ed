package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// InternalToken authenticates the external sweep scheduler against
	// POST /internal/sweep. Empty disables the endpoint.
	InternalToken string `env:"INTERNAL_TOKEN"`

	Session SessionConfig
	Hash    HashConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// TTL is the default duration of a session issued by login.
	TTL time.Duration `env:"SESSION_TTL, default=24h"`
	// SweepInterval is how often the internal sweeper runs. The external
	// sweep trigger is independent of it.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=5m"`
	// StoreBackend selects the session store: "redis" or "memory".
	StoreBackend string `env:"STORE_BACKEND, default=redis"`
}

type HashConfig struct {
	// MaxConcurrent caps simultaneous argon2 computations. 0 means NumCPU.
	MaxConcurrent int `env:"HASH_MAX_CONCURRENT, default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=session_service"`
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
