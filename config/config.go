package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type SessionConfig struct {
	// Backend is "file" or "redis".
	Backend  string `mapstructure:"backend"`
	Dir      string `mapstructure:"dir"`
	Key      string `mapstructure:"key"`
	RedisURL string `mapstructure:"redis_url"`
	// Passphrase encrypts the session file when set.
	Passphrase string `mapstructure:"passphrase"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type NotificationConfig struct {
	// Channels enables delivery channels: "local", "redis", "email".
	Channels     []string   `mapstructure:"channels"`
	RedisURL     string     `mapstructure:"redis_url"`
	RedisChannel string     `mapstructure:"redis_channel"`
	SMTP         SMTPConfig `mapstructure:"smtp"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type Config struct {
	BaseURL        string             `mapstructure:"base_url"`
	RequestTimeout time.Duration      `mapstructure:"request_timeout"`
	DoctorCacheTTL time.Duration      `mapstructure:"doctor_cache_ttl"`
	Session        SessionConfig      `mapstructure:"session"`
	Notification   NotificationConfig `mapstructure:"notification"`
	Log            LogConfig          `mapstructure:"log"`
}

// LoadConfig reads .env, then medoc.yaml, then the environment. BASE_URL is the
// only required value.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

// LoadConfigFile is LoadConfig with an explicit config file path.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// a missing .env is the normal case outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("medoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "medoc"))
		}
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("MEDOC")
	v.AutomaticEnv()
	// a bare BASE_URL is what existing .env files carry
	_ = v.BindEnv("base_url", "MEDOC_BASE_URL", "BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Session.Dir == "" {
		cfg.Session.Dir = defaultSessionDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("doctor_cache_ttl", 5*time.Minute)
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.key", "user")
	v.SetDefault("notification.channels", []string{"local"})
	v.SetDefault("notification.redis_channel", "medoc:notifications")
	v.SetDefault("notification.smtp.port", 587)
	v.SetDefault("log.level", "warn")

	// AutomaticEnv only reaches keys viper already knows about
	for _, key := range []string{
		"session.dir", "session.redis_url", "session.passphrase",
		"notification.redis_url", "notification.smtp.host", "notification.smtp.username",
		"notification.smtp.password", "notification.smtp.from",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("log.json", false)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url is required (set BASE_URL)")
	}
	switch c.Session.Backend {
	case "file":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	for _, ch := range c.Notification.Channels {
		switch ch {
		case "local":
		case "redis":
			if c.Notification.RedisURL == "" {
				return fmt.Errorf("notification.redis_url is required for the redis channel")
			}
		case "email":
			if c.Notification.SMTP.Host == "" || c.Notification.SMTP.From == "" {
				return fmt.Errorf("notification.smtp.host and notification.smtp.from are required for the email channel")
			}
		default:
			return fmt.Errorf("unknown notification channel %q", ch)
		}
	}
	return nil
}

func defaultSessionDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "medoc")
	}
	return filepath.Join(dir, "medoc")
}
