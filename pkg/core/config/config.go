package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig selects where saved analyses live. Driver is "sqlite" or
// "postgres"; postgres uses PostgresURL, or DATABASE_URL when that is empty.
type StorageConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`

	PostgresURL    string        `mapstructure:"postgres_url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type AssistantConfig struct {
	ModelsFile string        `mapstructure:"models_file"`
	PromptsDir string        `mapstructure:"prompts_dir"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// Load reads defaults, then the optional YAML file at path, then environment
// overrides (FEASIBILITY_SERVER_PORT, FEASIBILITY_AUTH_JWT_SECRET, ...).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FEASIBILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			fmt.Printf("[CONFIG] %s not found, using defaults\n", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "data/feasibility.db")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("storage.max_conns", 4)
	v.SetDefault("storage.connect_timeout", "5s")

	v.SetDefault("assistant.models_file", "config/models.yaml")
	v.SetDefault("assistant.prompts_dir", "resources/prompts")
	v.SetDefault("assistant.cache_ttl", "1h")
	v.SetDefault("assistant.timeout", "90s")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "dev-feasibility")
	v.SetDefault("auth.token_ttl", "12h")
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" && os.Getenv("DATABASE_URL") == "" {
			return fmt.Errorf("storage.postgres_url or DATABASE_URL is required for the postgres driver")
		}
		if c.Storage.MaxConns < 0 {
			return fmt.Errorf("storage.max_conns must not be negative")
		}
	default:
		return fmt.Errorf("storage.driver must be one of: sqlite, postgres")
	}
	if c.Assistant.CacheTTL < 0 {
		return fmt.Errorf("assistant.cache_ttl must not be negative")
	}
	if c.Auth.Enabled && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters when auth is enabled")
	}
	return nil
}
