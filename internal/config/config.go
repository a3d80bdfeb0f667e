// Package config loads nftctl configuration: defaults, then a YAML file,
// then a .env file, then NFT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/R3E-Network/nft_layer/internal/middleware"
	"github.com/R3E-Network/nft_layer/pkg/logger"
)

// DefaultPath is read when no config path is given and the file exists.
const DefaultPath = "config/nft.yaml"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the complete nftctl configuration.
type Config struct {
	Contract ContractConfig       `yaml:"contract"`
	Storage  StorageConfig        `yaml:"storage"`
	Logging  logger.LoggingConfig `yaml:"logging"`
	Server   ServerConfig         `yaml:"server"`
	Accounts AccountsConfig       `yaml:"accounts"`
}

// ContractConfig holds deployment parameters.
type ContractConfig struct {
	BaseURI           string `yaml:"base_uri" env:"NFT_BASE_URI"`
	RoyaltyPercentage uint64 `yaml:"royalty_percentage" env:"NFT_ROYALTY_PERCENTAGE"`
	Logic             string `yaml:"logic" env:"NFT_LOGIC_VERSION"`
}

type StorageConfig struct {
	Driver        string `yaml:"driver" env:"NFT_STORAGE_DRIVER"`
	DSN           string `yaml:"dsn" env:"NFT_POSTGRES_DSN"`
	AutoMigrate   bool   `yaml:"auto_migrate" env:"NFT_POSTGRES_AUTO_MIGRATE"`
	RedisAddr     string `yaml:"redis_addr" env:"NFT_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"NFT_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"NFT_REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"NFT_REDIS_PREFIX"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" env:"NFT_HTTP_HOST"`
	Port         int           `yaml:"port" env:"NFT_HTTP_PORT"`
	RateLimit    float64       `yaml:"rate_limit" env:"NFT_HTTP_RATE_LIMIT"`
	Burst        int           `yaml:"burst" env:"NFT_HTTP_BURST"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"NFT_HTTP_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NFT_HTTP_WRITE_TIMEOUT"`
	// AllowedOrigins is file-only; "*" allows every origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies lists IPs or CIDRs whose X-Forwarded-For is honoured
	// by the rate limiter. File-only.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AccountsConfig controls the deterministic development accounts.
type AccountsConfig struct {
	Seed  string `yaml:"seed" env:"NFT_ACCOUNTS_SEED"`
	Count int    `yaml:"count" env:"NFT_ACCOUNTS_COUNT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Contract: ContractConfig{
			BaseURI:           "ipfs://QmSampleCollection/",
			RoyaltyPercentage: 10,
		},
		Storage: StorageConfig{
			Driver:      DriverMemory,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "nft",
		},
		Logging: logger.LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePrefix: "nftctl",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			RateLimit:    20,
			Burst:        40,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Accounts: AccountsConfig{
			Seed:  "nft-layer-dev",
			Count: 10,
		},
	}
}

// Load builds the configuration. An empty path falls back to DefaultPath
// when that file exists. envFiles are loaded with godotenv; missing ones
// are skipped.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load env (%s): %w", f, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMemory
	}
	c.Contract.Logic = strings.TrimSpace(c.Contract.Logic)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Contract.RoyaltyPercentage > 100 {
		return fmt.Errorf("contract.royalty_percentage %d: must be between 0 and 100", c.Contract.RoyaltyPercentage)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver %q: unknown driver", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d: out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return errors.New("server.rate_limit and server.burst must not be negative")
	}
	if _, err := middleware.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}
	if strings.TrimSpace(c.Accounts.Seed) == "" {
		return errors.New("accounts.seed is required")
	}
	if c.Accounts.Count < 1 {
		return fmt.Errorf("accounts.count %d: must be at least 1", c.Accounts.Count)
	}
	return nil
}
