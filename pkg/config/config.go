// Package config provides configuration loading and validation for the oracle server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFeedID is the Pyth ETH/USD feed.
	DefaultFeedID = "ff61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace"
	// DefaultHermesURL is the public Hermes endpoint.
	DefaultHermesURL = "https://hermes.pyth.network"
	// DefaultExpirySeconds is how long a signed context stays valid.
	DefaultExpirySeconds = 5
)

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	// Validate and sanitize path
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${ENV} references, and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns a config with every default applied and no signer set.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":3000"
	}
	if cfg.Server.WebSocket.Interval.ToDuration() == 0 {
		cfg.Server.WebSocket.Interval = Duration(time.Second)
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}

	// Signer defaults
	if cfg.Signer.HDPath == "" {
		cfg.Signer.HDPath = "m/44'/60'/0'/0/0"
	}

	// Pyth defaults
	if cfg.Pyth.URL == "" {
		cfg.Pyth.URL = DefaultHermesURL
	}
	if cfg.Pyth.FeedID == "" {
		cfg.Pyth.FeedID = DefaultFeedID
	}
	cfg.Pyth.FeedID = strings.TrimPrefix(strings.ToLower(cfg.Pyth.FeedID), "0x")
	if cfg.Pyth.Timeout.ToDuration() == 0 {
		cfg.Pyth.Timeout = Duration(10 * time.Second)
	}

	// Oracle defaults
	if cfg.Oracle.ExpirySeconds == 0 {
		cfg.Oracle.ExpirySeconds = DefaultExpirySeconds
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.File.Path != "" {
		if cfg.Logging.File.MaxSize == 0 {
			cfg.Logging.File.MaxSize = 100
		}
		if cfg.Logging.File.MaxBackups == 0 {
			cfg.Logging.File.MaxBackups = 5
		}
		if cfg.Logging.File.MaxAge == 0 {
			cfg.Logging.File.MaxAge = 30
		}
	}
}

// SignerKey resolves the configured key material. It returns the hex
// private key or the mnemonic; exactly one of them is non-empty on success.
func (c *Config) SignerKey() (privateKey, mnemonic string, err error) {
	privateKey = c.Signer.PrivateKey
	if c.Signer.PrivateKeyEnv != "" {
		privateKey = os.Getenv(c.Signer.PrivateKeyEnv)
		if privateKey == "" {
			return "", "", fmt.Errorf("%w: %s", ErrPrivateKeyEnvNotSet, c.Signer.PrivateKeyEnv)
		}
	}

	mnemonic = c.Signer.Mnemonic
	if c.Signer.MnemonicEnv != "" {
		mnemonic = os.Getenv(c.Signer.MnemonicEnv)
		if mnemonic == "" {
			return "", "", fmt.Errorf("%w: %s", ErrMnemonicEnvNotSet, c.Signer.MnemonicEnv)
		}
	}

	switch {
	case privateKey != "" && mnemonic != "":
		return "", "", ErrAmbiguousSigner
	case privateKey == "" && mnemonic == "":
		return "", "", ErrSignerRequired
	}
	return privateKey, mnemonic, nil
}
