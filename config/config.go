package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/EssncDev/Solana-SPL-Distributor/wallet"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once in main and
// passed into constructors; the engine never reads process environment itself.
type Config struct {
	// Endpoint is the Solana RPC URL. Empty means mainnet-beta.
	Endpoint string `yaml:"endpoint"`
	// KeypairFile points at a solana-keygen JSON byte-array file. When set it
	// takes precedence over the PK environment variable.
	KeypairFile string `yaml:"keypair_file"`
	// DistributionFile is the JSON allocation table (mint -> recipient shares).
	DistributionFile string `yaml:"distribution_file"`
	// CooldownSeconds is the mandatory pause before every resolution and
	// transfer RPC call, to stay under public endpoint rate limits.
	CooldownSeconds int `yaml:"cooldown_seconds"`
	Database        struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	// secretKey is the base58 secret from the PK environment variable.
	// Never read from the YAML file.
	secretKey string
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("PK"); v != "" {
		cfg.secretKey = v
	}
	if v := os.Getenv("KEYPAIR_FILE"); v != "" {
		cfg.KeypairFile = v
	}
	if v := os.Getenv("DISTRIBUTION_FILE"); v != "" {
		cfg.DistributionFile = v
	}
	if v := os.Getenv("COOLDOWN_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("COOLDOWN_SECONDS: %w", err)
		}
		cfg.CooldownSeconds = n
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.DistributionFile == "" {
		cfg.DistributionFile = "distribution.json"
	}
	if cfg.CooldownSeconds == 0 {
		cfg.CooldownSeconds = 10
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/distributor.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.KeypairFile == "" && c.secretKey == "" {
		return fmt.Errorf("no funder secret: set keypair_file or the PK environment variable")
	}
	if c.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown_seconds must not be negative")
	}
	if c.DistributionFile == "" {
		return fmt.Errorf("distribution_file is required")
	}
	return nil
}

// Secret resolves the configured funder secret into its tagged encoding.
// A keypair file wins over the PK environment variable.
func (c *Config) Secret() (wallet.Secret, error) {
	if c.KeypairFile != "" {
		return wallet.FromKeygenFile(c.KeypairFile)
	}
	if c.secretKey != "" {
		return wallet.Base58Text(c.secretKey), nil
	}
	return wallet.Secret{}, fmt.Errorf("no funder secret configured")
}
