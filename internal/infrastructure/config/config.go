package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Environment is the typed deployment mode. It is decoded once at startup
// and threaded through constructors; nothing re-reads the process
// environment at call time.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
)

// IsProduction reports whether the deployment runs in production mode.
// Development-only authentication paths must be unreachable when true.
func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

type Config struct {
	Port     string      `env:"PORT,      default=8080"`
	Env      Environment `env:"ENV,       default=development"`
	LogLevel string      `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs and verifies locally issued tokens.
	JWTSecret string `env:"JWT_SECRET"`
	// ExternalJWTSecret verifies tokens issued by the external identity
	// provider. In development it falls back to JWTSecret when unset;
	// production never reuses the local secret.
	ExternalJWTSecret string `env:"EXTERNAL_JWT_SECRET"`
	// AllowUnverifiedTokens enables the signature-less decode fallback.
	// It is ignored in production regardless of its value.
	AllowUnverifiedTokens bool `env:"ALLOW_UNVERIFIED_TOKENS, default=false"`

	// RateLimitBackend selects the counter store: "memory" or "redis".
	RateLimitBackend string `env:"RATE_LIMIT_BACKEND, default=memory"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=promptforge"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}

	// Collapse the mode to the two values the rest of the system branches on.
	if strings.EqualFold(string(cfg.Env), string(EnvProduction)) {
		cfg.Env = EnvProduction
	} else {
		cfg.Env = EnvDevelopment
	}

	return &cfg
}
