package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Signer  SignerConfig  `yaml:"signer"`
	Pyth    PythConfig    `yaml:"pyth"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	WebSocket WSConfig   `yaml:"websocket"`
	CORS      CORSConfig `yaml:"cors"`
}

// HTTPConfig configures the HTTP server
type HTTPConfig struct {
	Addr string    `yaml:"addr"`
	TLS  TLSConfig `yaml:"tls"`
}

// WSConfig configures the signed context stream
type WSConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"` // How often a fresh context is pushed
}

// CORSConfig configures cross-origin access
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// TLSConfig holds TLS certificate configuration
type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

// SignerConfig selects the signing key. Exactly one source should be set.
type SignerConfig struct {
	PrivateKey    string `yaml:"private_key"`     // Hex key, with or without 0x
	PrivateKeyEnv string `yaml:"private_key_env"` // Environment variable holding the hex key
	Mnemonic      string `yaml:"mnemonic"`        // BIP39 mnemonic (or use MnemonicEnv)
	MnemonicEnv   string `yaml:"mnemonic_env"`    // Environment variable for mnemonic
	HDPath        string `yaml:"hd_path"`         // Derivation path for mnemonic keys
}

// PythConfig configures the Hermes price feed
type PythConfig struct {
	URL          string   `yaml:"url"`
	FeedID       string   `yaml:"feed_id"`       // Hex feed id, base/quote (e.g. ETH/USD)
	Timeout      Duration `yaml:"timeout"`       // Per request timeout
	MaxStaleness Duration `yaml:"max_staleness"` // 0 disables the publish time check
}

// OracleConfig configures the signed context
type OracleConfig struct {
	ExpirySeconds uint64          `yaml:"expiry_seconds"`
	TokenPair     TokenPairConfig `yaml:"token_pair"`
}

// TokenPairConfig maps token addresses to the feed's base/quote roles
type TokenPairConfig struct {
	BaseToken  string `yaml:"base_token"`  // Asset priced by the feed (e.g. WETH)
	QuoteToken string `yaml:"quote_token"` // Denomination of the feed (e.g. USDC)
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"`
	Output string        `yaml:"output"`
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig configures log file rotation
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
