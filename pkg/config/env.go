package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override the YAML config.
const (
	EnvPort          = "PORT"
	EnvSignerKey     = "SIGNER_PRIVATE_KEY"
	EnvFeedID        = "PYTH_PRICE_FEED_ID"
	EnvBaseToken     = "BASE_TOKEN"
	EnvQuoteToken    = "QUOTE_TOKEN"
	EnvExpirySeconds = "EXPIRY_SECONDS"
)

// ApplyEnv overrides config fields from the environment. The signing key is
// referenced by variable name and never copied into the config.
func ApplyEnv(cfg *Config) error {
	if port := os.Getenv(EnvPort); port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, port, err)
		}
		cfg.Server.HTTP.Addr = ":" + port
	}

	if os.Getenv(EnvSignerKey) != "" && cfg.Signer.Mnemonic == "" && cfg.Signer.MnemonicEnv == "" {
		cfg.Signer.PrivateKey = ""
		cfg.Signer.PrivateKeyEnv = EnvSignerKey
	}

	if feed := os.Getenv(EnvFeedID); feed != "" {
		cfg.Pyth.FeedID = strings.TrimPrefix(strings.ToLower(feed), "0x")
	}

	if base := os.Getenv(EnvBaseToken); base != "" {
		cfg.Oracle.TokenPair.BaseToken = base
	}
	if quote := os.Getenv(EnvQuoteToken); quote != "" {
		cfg.Oracle.TokenPair.QuoteToken = quote
	}

	if expiry := os.Getenv(EnvExpirySeconds); expiry != "" {
		v, err := strconv.ParseUint(expiry, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvExpirySeconds, expiry, err)
		}
		cfg.Oracle.ExpirySeconds = v
	}

	return nil
}
