// Package config loads the sandbox server settings from SANDBOX_* variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const Prefix = "SANDBOX"

// Config embeds its sections so every variable is SANDBOX_<NAME> with no
// section infix.
type Config struct {
	ServerConfig
	DatabaseConfig
	JWTConfig
	AdminConfig
	LogConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"PORT" default:"3000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	RateLimit       float64       `envconfig:"RATE_LIMIT" default:"20"`
	RateBurst       int           `envconfig:"RATE_BURST" default:"40"`
	AllowOrigins    []string      `envconfig:"ALLOW_ORIGINS" default:"*"`
}

// DatabaseConfig selects the store. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

type JWTConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET" default:"medoc-sandbox-secret"`
	JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
}

// AdminConfig is the account seeded on startup so the client can log in.
type AdminConfig struct {
	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin"`
	BcryptCost    int    `envconfig:"BCRYPT_COST" default:"10"`

	// MinPasswordLen applies to every account, the seeded admin included.
	MinPasswordLen int `envconfig:"MIN_PASSWORD_LEN" default:"0"`
}

type LogConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s_PORT must be between 1 and 65535", Prefix))
	}
	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%s_JWT_SECRET is required", Prefix))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, fmt.Errorf("%s_JWT_EXPIRY must be positive", Prefix))
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		errs = append(errs, fmt.Errorf("%s_ADMIN_USERNAME and %s_ADMIN_PASSWORD are required", Prefix, Prefix))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
