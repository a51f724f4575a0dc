package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	weth = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdc = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Signer.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	cfg.Oracle.TokenPair = TokenPairConfig{BaseToken: weth, QuoteToken: usdc}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":3000", cfg.Server.HTTP.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, time.Second, cfg.Server.WebSocket.Interval.ToDuration())
	assert.Equal(t, DefaultHermesURL, cfg.Pyth.URL)
	assert.Equal(t, DefaultFeedID, cfg.Pyth.FeedID)
	assert.Equal(t, 10*time.Second, cfg.Pyth.Timeout.ToDuration())
	assert.Equal(t, uint64(DefaultExpirySeconds), cfg.Oracle.ExpirySeconds)
	assert.Equal(t, "m/44'/60'/0'/0/0", cfg.Signer.HDPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Metrics.Addr, "metrics addr only defaults when enabled")
}

func TestParse(t *testing.T) {
	t.Setenv("TEST_ORACLE_QUOTE", usdc)

	data := []byte(`
server:
  http:
    addr: ":8080"
  websocket:
    enabled: true
    interval: 2s
signer:
  private_key_env: ORACLE_KEY
pyth:
  feed_id: "0xFF61491A931112DDF1BD8147CD1B641375F79F5825126D665480874634FD0ACE"
  max_staleness: 30s
oracle:
  expiry_seconds: 10
  token_pair:
    base_token: "` + weth + `"
    quote_token: "${TEST_ORACLE_QUOTE}"
metrics:
  enabled: true
logging:
  level: debug
  file:
    path: /var/log/oracle.log
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTP.Addr)
	assert.True(t, cfg.Server.WebSocket.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Server.WebSocket.Interval.ToDuration())
	assert.Equal(t, "ORACLE_KEY", cfg.Signer.PrivateKeyEnv)
	assert.Equal(t, DefaultFeedID, cfg.Pyth.FeedID, "feed id should be lowercased without 0x")
	assert.Equal(t, 30*time.Second, cfg.Pyth.MaxStaleness.ToDuration())
	assert.Equal(t, uint64(10), cfg.Oracle.ExpirySeconds)
	assert.Equal(t, usdc, cfg.Oracle.TokenPair.QuoteToken, "env reference should expand")
	assert.Equal(t, ":9091", cfg.Metrics.Addr)
	assert.Equal(t, 100, cfg.Logging.File.MaxSize)
	assert.Equal(t, 5, cfg.Logging.File.MaxBackups)
	assert.Equal(t, 30, cfg.Logging.File.MaxAge)

	require.NoError(t, Validate(cfg))
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("pyth:\n  timeout: soon\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle:\n  expiry_seconds: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Oracle.ExpirySeconds)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"mnemonic instead of key", func(c *Config) {
			c.Signer.PrivateKey = ""
			c.Signer.MnemonicEnv = "ORACLE_MNEMONIC"
		}, nil},
		{"no signer", func(c *Config) { c.Signer.PrivateKey = "" }, ErrSignerRequired},
		{"key and mnemonic", func(c *Config) { c.Signer.Mnemonic = "test" }, ErrAmbiguousSigner},
		{"short feed id", func(c *Config) { c.Pyth.FeedID = "ff61" }, ErrInvalidFeedID},
		{"non-hex feed id", func(c *Config) {
			c.Pyth.FeedID = "zz61491a931112ddf1bd8147cd1b641375f79f5825126d665480874634fd0ace"
		}, ErrInvalidFeedID},
		{"empty pyth url", func(c *Config) { c.Pyth.URL = "" }, ErrPythURLRequired},
		{"zero expiry", func(c *Config) { c.Oracle.ExpirySeconds = 0 }, ErrInvalidExpiry},
		{"expiry over a day", func(c *Config) { c.Oracle.ExpirySeconds = 86401 }, ErrInvalidExpiry},
		{"missing quote token", func(c *Config) { c.Oracle.TokenPair.QuoteToken = "" }, ErrTokenPairRequired},
		{"bad base token", func(c *Config) { c.Oracle.TokenPair.BaseToken = "weth" }, ErrInvalidTokenAddress},
		{"identical tokens", func(c *Config) { c.Oracle.TokenPair.QuoteToken = weth }, ErrIdenticalTokens},
		{"tls without files", func(c *Config) { c.Server.HTTP.TLS.Enabled = true }, ErrTLSConfigIncomplete},
		{"tls cert missing", func(c *Config) {
			c.Server.HTTP.TLS = TLSConfig{Enabled: true, Cert: "/nonexistent/cert.pem", Key: "/nonexistent/key.pem"}
		}, ErrTLSCertNotFound},
		{"fast stream", func(c *Config) {
			c.Server.WebSocket.Enabled = true
			c.Server.WebSocket.Interval = Duration(time.Millisecond)
		}, ErrInvalidStreamInterval},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignerKey(t *testing.T) {
	t.Run("inline key", func(t *testing.T) {
		cfg := validConfig()
		key, mnemonic, err := cfg.SignerKey()
		require.NoError(t, err)
		assert.Equal(t, cfg.Signer.PrivateKey, key)
		assert.Empty(t, mnemonic)
	})

	t.Run("key from env", func(t *testing.T) {
		t.Setenv("TEST_SIGNER_KEY", "0xabc")
		cfg := validConfig()
		cfg.Signer.PrivateKey = ""
		cfg.Signer.PrivateKeyEnv = "TEST_SIGNER_KEY"

		key, _, err := cfg.SignerKey()
		require.NoError(t, err)
		assert.Equal(t, "0xabc", key)
	})

	t.Run("unset key env", func(t *testing.T) {
		cfg := validConfig()
		cfg.Signer.PrivateKey = ""
		cfg.Signer.PrivateKeyEnv = "TEST_SIGNER_KEY_UNSET"

		_, _, err := cfg.SignerKey()
		assert.ErrorIs(t, err, ErrPrivateKeyEnvNotSet)
	})

	t.Run("mnemonic from env", func(t *testing.T) {
		t.Setenv("TEST_SIGNER_MNEMONIC", "test test junk")
		cfg := validConfig()
		cfg.Signer.PrivateKey = ""
		cfg.Signer.MnemonicEnv = "TEST_SIGNER_MNEMONIC"

		key, mnemonic, err := cfg.SignerKey()
		require.NoError(t, err)
		assert.Empty(t, key)
		assert.Equal(t, "test test junk", mnemonic)
	})

	t.Run("unset mnemonic env", func(t *testing.T) {
		cfg := validConfig()
		cfg.Signer.PrivateKey = ""
		cfg.Signer.MnemonicEnv = "TEST_SIGNER_MNEMONIC_UNSET"

		_, _, err := cfg.SignerKey()
		assert.ErrorIs(t, err, ErrMnemonicEnvNotSet)
	})

	t.Run("none", func(t *testing.T) {
		cfg := Default()
		_, _, err := cfg.SignerKey()
		assert.ErrorIs(t, err, ErrSignerRequired)
	})
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load("../../config/config.example.yaml")
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, DefaultFeedID, cfg.Pyth.FeedID)
	assert.Equal(t, "SIGNER_PRIVATE_KEY", cfg.Signer.PrivateKeyEnv)
	assert.True(t, cfg.Server.WebSocket.Enabled)
	assert.Equal(t, time.Second, cfg.Server.WebSocket.Interval.ToDuration())
	assert.Equal(t, 60*time.Second, cfg.Pyth.MaxStaleness.ToDuration())
}
