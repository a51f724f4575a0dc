package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	maxExpirySeconds  = 86400
	minStreamInterval = 100 * time.Millisecond
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateSignerConfig(&cfg.Signer); err != nil {
		return fmt.Errorf("signer config: %w", err)
	}

	if err := validatePythConfig(&cfg.Pyth); err != nil {
		return fmt.Errorf("pyth config: %w", err)
	}

	if err := validateOracleConfig(&cfg.Oracle); err != nil {
		return fmt.Errorf("oracle config: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	// Validate TLS config
	if cfg.HTTP.TLS.Enabled {
		if cfg.HTTP.TLS.Cert == "" || cfg.HTTP.TLS.Key == "" {
			return ErrTLSConfigIncomplete
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Cert); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSCertNotFound, cfg.HTTP.TLS.Cert)
		}
		if _, err := os.Stat(cfg.HTTP.TLS.Key); err != nil {
			return fmt.Errorf("%w: %s", ErrTLSKeyNotFound, cfg.HTTP.TLS.Key)
		}
	}

	if cfg.WebSocket.Enabled && cfg.WebSocket.Interval.ToDuration() < minStreamInterval {
		return fmt.Errorf("%w: %s", ErrInvalidStreamInterval, cfg.WebSocket.Interval.ToDuration())
	}

	return nil
}

// validateSignerConfig only checks that a source is named. Environment
// variables are resolved at startup by SignerKey.
func validateSignerConfig(cfg *SignerConfig) error {
	hasKey := cfg.PrivateKey != "" || cfg.PrivateKeyEnv != ""
	hasMnemonic := cfg.Mnemonic != "" || cfg.MnemonicEnv != ""

	if hasKey && hasMnemonic {
		return ErrAmbiguousSigner
	}
	if !hasKey && !hasMnemonic {
		return ErrSignerRequired
	}
	return nil
}

func validatePythConfig(cfg *PythConfig) error {
	if cfg.URL == "" {
		return ErrPythURLRequired
	}

	id := strings.TrimPrefix(cfg.FeedID, "0x")
	if len(id) != 64 {
		return fmt.Errorf("%w: got %d characters", ErrInvalidFeedID, len(id))
	}
	if _, err := hex.DecodeString(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedID, err)
	}

	return nil
}

func validateOracleConfig(cfg *OracleConfig) error {
	if cfg.ExpirySeconds == 0 || cfg.ExpirySeconds > maxExpirySeconds {
		return fmt.Errorf("%w: %d", ErrInvalidExpiry, cfg.ExpirySeconds)
	}

	base, quote := cfg.TokenPair.BaseToken, cfg.TokenPair.QuoteToken
	if base == "" || quote == "" {
		return ErrTokenPairRequired
	}
	if !common.IsHexAddress(base) {
		return fmt.Errorf("%w: base_token %q", ErrInvalidTokenAddress, base)
	}
	if !common.IsHexAddress(quote) {
		return fmt.Errorf("%w: quote_token %q", ErrInvalidTokenAddress, quote)
	}
	if common.HexToAddress(base) == common.HexToAddress(quote) {
		return ErrIdenticalTokens
	}

	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	// Validate level
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("%w: %s (must be one of: %s)", ErrInvalidLogLevel, cfg.Level, strings.Join(validLevels, ", "))
	}

	// Validate format
	formatValid := strings.ToLower(cfg.Format) == "json" || strings.ToLower(cfg.Format) == "text"
	if !formatValid {
		return fmt.Errorf("%w: %s (must be 'json' or 'text')", ErrInvalidLogFormat, cfg.Format)
	}

	return nil
}
