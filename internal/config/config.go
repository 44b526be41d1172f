// Package config loads service configuration from defaults, an optional YAML
// file and the environment, in that order of precedence.
//
// Environment variables are mapped by splitting on the first underscore:
//
//	SERVER_PORT       -> server.port
//	STORAGE_DATA_DIR  -> storage.data_dir
//	MESSAGING_BROKERS -> messaging.brokers (comma separated)
//
// PORT is honored as a fallback for server.port.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/egannguyen/go-food-delivery/internal/logging"
)

// Storage drivers.
const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// Messaging drivers.
const (
	MessagingNone      = "none"
	MessagingKafka     = "kafka"
	MessagingWatermill = "watermill"
	MessagingNATS      = "nats"
)

const defaults = `
server:
  host: 0.0.0.0
  port: 5050
  shutdown_timeout: 10s
storage:
  driver: json
  data_dir: data
  postgres_dsn: ""
  redis_addr: localhost:6379
  redis_password: ""
  redis_db: 0
  redis_prefix: fooddelivery
  seed_on_empty: true
messaging:
  driver: none
  brokers: [localhost:9092]
  nats_url: nats://localhost:4222
  client_id: fooddelivery
logging:
  level: info
  format: json
auth:
  login_rate: 5
  login_burst: 10
  bcrypt_cost: 10
`

// sections are the top-level keys environment variables may target.
var sections = map[string]bool{
	"server":    true,
	"storage":   true,
	"messaging": true,
	"logging":   true,
	"auth":      true,
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Messaging MessagingConfig `koanf:"messaging"`
	Logging   logging.Config  `koanf:"logging"`
	Auth      AuthConfig      `koanf:"auth"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig selects where the collections are persisted.
type StorageConfig struct {
	Driver        string `koanf:"driver"`
	DataDir       string `koanf:"data_dir"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisPrefix   string `koanf:"redis_prefix"`
	SeedOnEmpty   bool   `koanf:"seed_on_empty"`
}

// MessagingConfig selects where lifecycle events go.
type MessagingConfig struct {
	Driver   string   `koanf:"driver"`
	Brokers  []string `koanf:"brokers"`
	NATSURL  string   `koanf:"nats_url"`
	ClientID string   `koanf:"client_id"`
}

type AuthConfig struct {
	LoginRate  float64 `koanf:"login_rate"`
	LoginBurst int     `koanf:"login_burst"`
	BcryptCost int     `koanf:"bcrypt_cost"`
}

// Load reads configuration. configPath may be empty.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_PORT") == "" {
		if err := k.Set("server.port", port); err != nil {
			return nil, fmt.Errorf("failed to apply PORT: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps SECTION_FIELD_NAME to section.field_name. Variables outside the
// known sections are ignored.
func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// envValue maps the variable with envKey and splits list settings on commas.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if key == "messaging.brokers" {
		brokers := []string{}
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return key, brokers
	}
	return key, value
}

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	switch c.Storage.Driver {
	case StorageJSON:
		if c.Storage.DataDir == "" {
			return fmt.Errorf("storage.data_dir is required for the json driver")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Messaging.Driver {
	case MessagingNone:
	case MessagingKafka, MessagingWatermill:
		if len(c.Messaging.Brokers) == 0 {
			return fmt.Errorf("messaging.brokers is required for the %s driver", c.Messaging.Driver)
		}
	case MessagingNATS:
		if c.Messaging.NATSURL == "" {
			return fmt.Errorf("messaging.nats_url is required for the nats driver")
		}
	default:
		return fmt.Errorf("unknown messaging.driver %q", c.Messaging.Driver)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	if c.Auth.LoginRate <= 0 {
		return fmt.Errorf("auth.login_rate must be positive")
	}
	if c.Auth.LoginBurst < 1 {
		return fmt.Errorf("auth.login_burst must be at least 1")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	return nil
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
