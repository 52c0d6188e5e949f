// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Wallets  WalletsConfig  `yaml:"wallets"`
	Auth     AuthConfig     `yaml:"auth"`
	App      AppConfig      `yaml:"app"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port int    `yaml:"port" default:"8080"`
}

// DatabaseConfig contains the place read-model database settings.
// Optional; an empty host disables the persisted read model.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"globe"`
	SSLMode  string `yaml:"ssl_mode" default:"disable"`
}

// Enabled reports whether a read-model database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// DSN returns a PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// LedgerConfig contains the ledger index and gateway endpoints
type LedgerConfig struct {
	GraphQLURL string `yaml:"graphql_url" validate:"required,url"`
	GatewayURL string `yaml:"gateway_url" validate:"required,url"`
	UploadURL  string `yaml:"upload_url" validate:"required,url"`
	PageSize   int    `yaml:"page_size" default:"100" validate:"gt=0,lte=100"`
}

// WalletsConfig contains the wallet bridge endpoints per chain.
// An empty URL means the chain's wallet is unavailable.
type WalletsConfig struct {
	EthereumBridgeURL string `yaml:"ethereum_bridge_url" validate:"omitempty,url"`
	SolanaBridgeURL   string `yaml:"solana_bridge_url" validate:"omitempty,url"`
	ArweaveBridgeURL  string `yaml:"arweave_bridge_url" validate:"omitempty,url"`
}

// AuthConfig contains session token settings
type AuthConfig struct {
	// ServerSeed must provide at least 32 bytes; it may also be supplied
	// via the GLOBE_SERVER_SEED environment variable.
	ServerSeed string        `yaml:"server_seed" validate:"omitempty,min=32"`
	TokenTTL   time.Duration `yaml:"token_ttl" default:"24h"`
}

// AppConfig contains record stamping and read policy settings
type AppConfig struct {
	// Name is the App-Name tag stamped on every record and used to
	// filter queries.
	Name string `yaml:"name" default:"eat-around-the-globe"`
	// DedupByAuthor keeps only one recommendation per place and author
	// when folding the globe.
	DedupByAuthor bool `yaml:"dedup_by_author"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info"`
	Format     string `yaml:"format" default:"json"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// Load reads, defaults and validates configuration from a YAML file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := defaults.Set(config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}
