package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config is resolved in three layers: defaults, then an optional TOML file
// named by CONFIG_FILE, then environment variables (a .env file is loaded
// into the environment first). Later layers win.
type Config struct {
	Port     string `toml:"port"      env:"PORT, overwrite, default=8080"`
	Env      string `toml:"env"       env:"ENV, overwrite, default=development"`
	LogLevel string `toml:"log_level" env:"LOG_LEVEL, overwrite, default=info"`

	Auth     AuthConfig     `toml:"auth"`
	Store    StoreConfig    `toml:"store"`
	Mongo    MongoConfig    `toml:"mongo"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AuthConfig struct {
	TokenTTL   time.Duration `toml:"token_ttl"   env:"TOKEN_TTL, overwrite, default=24h"`
	BcryptCost int           `toml:"bcrypt_cost" env:"BCRYPT_COST, overwrite, default=10"`
}

type StoreConfig struct {
	// Driver is one of sqlite, postgres, mysql or mongo.
	Driver       string `toml:"driver"         env:"STORE_DRIVER, overwrite, default=sqlite"`
	DSN          string `toml:"dsn"            env:"DATABASE_DSN, overwrite, default=checkins.db?_foreign_keys=on"`
	MaxOpenConns int    `toml:"max_open_conns" env:"DB_MAX_OPEN_CONNS, overwrite, default=25"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS, overwrite, default=10"`
	LogQueries   bool   `toml:"log_queries"    env:"DB_LOG_QUERIES, overwrite"`
}

type MongoConfig struct {
	URI      string `toml:"uri"      env:"MONGO_URI, overwrite, default=mongodb://localhost:27017"`
	Database string `toml:"database" env:"MONGO_DB, overwrite, default=checkins"`
}

// RedisConfig enables Idempotency-Key support when Addr is set.
type RedisConfig struct {
	Addr           string        `toml:"addr"            env:"REDIS_ADDR, overwrite"`
	Password       string        `toml:"password"        env:"REDIS_PASSWORD, overwrite"`
	DB             int           `toml:"db"              env:"REDIS_DB, overwrite, default=0"`
	Timeout        time.Duration `toml:"timeout"         env:"REDIS_TIMEOUT, overwrite, default=5s"`
	IdempotencyTTL time.Duration `toml:"idempotency_ttl" env:"IDEMPOTENCY_TTL, overwrite, default=24h"`
}

// RabbitMQConfig enables check-in event publishing when URL is set.
type RabbitMQConfig struct {
	URL     string `toml:"url"     env:"RABBITMQ_URL, overwrite"`
	Queue   string `toml:"queue"   env:"RABBITMQ_QUEUE, overwrite, default=checkin.events"`
	Workers int    `toml:"workers" env:"RABBITMQ_WORKERS, overwrite, default=4"`
}

// Load reads .env, the optional CONFIG_FILE and the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration against lookuper instead of the process
// environment.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config

	if path, ok := lookuper.Lookup("CONFIG_FILE"); ok && path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres", "mysql", "mongo":
	default:
		return fmt.Errorf("config: unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Port == "" {
		return errors.New("config: PORT is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}

// Development reports whether the service runs with developer defaults such
// as pretty console logs.
func (c *Config) Development() bool {
	return c.Env == "development"
}
