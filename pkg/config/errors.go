// Package config provides configuration loading and validation for the oracle server.
package config

import "errors"

var (
	// ErrTLSConfigIncomplete indicates that TLS config is incomplete.
	ErrTLSConfigIncomplete = errors.New("TLS cert and key must be specified when TLS is enabled")
	// ErrTLSCertNotFound indicates that the TLS cert file was not found.
	ErrTLSCertNotFound = errors.New("TLS cert file not found")
	// ErrTLSKeyNotFound indicates that the TLS key file was not found.
	ErrTLSKeyNotFound = errors.New("TLS key file not found")
	// ErrSignerRequired indicates that no signing key source is configured.
	ErrSignerRequired = errors.New("one of private_key, private_key_env, mnemonic or mnemonic_env must be specified")
	// ErrAmbiguousSigner indicates that both a private key and a mnemonic are configured.
	ErrAmbiguousSigner = errors.New("private key and mnemonic are mutually exclusive")
	// ErrPrivateKeyEnvNotSet indicates that the private key environment variable is not set.
	ErrPrivateKeyEnvNotSet = errors.New("private key environment variable not set")
	// ErrMnemonicEnvNotSet indicates that the mnemonic environment variable is not set.
	ErrMnemonicEnvNotSet = errors.New("mnemonic environment variable not set")
	// ErrInvalidFeedID indicates that the Pyth feed id is not 32 bytes of hex.
	ErrInvalidFeedID = errors.New("feed_id must be 64 hex characters")
	// ErrPythURLRequired indicates that pyth.url must be specified.
	ErrPythURLRequired = errors.New("pyth.url must be specified")
	// ErrInvalidExpiry indicates that expiry_seconds is out of range.
	ErrInvalidExpiry = errors.New("expiry_seconds must be between 1 and 86400")
	// ErrInvalidTokenAddress indicates that a token pair address is not a hex address.
	ErrInvalidTokenAddress = errors.New("invalid token address")
	// ErrTokenPairRequired indicates that base_token and quote_token must both be set.
	ErrTokenPairRequired = errors.New("base_token and quote_token must be specified")
	// ErrIdenticalTokens indicates that base_token equals quote_token.
	ErrIdenticalTokens = errors.New("base_token and quote_token must differ")
	// ErrInvalidStreamInterval indicates a websocket interval below the minimum.
	ErrInvalidStreamInterval = errors.New("websocket interval must be at least 100ms")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid log format")
)
