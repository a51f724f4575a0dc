package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hardyjosh/rain-oracle-server/pkg/api"
	"github.com/hardyjosh/rain-oracle-server/pkg/config"
	"github.com/hardyjosh/rain-oracle-server/pkg/logging"
	"github.com/hardyjosh/rain-oracle-server/pkg/metrics"
	"github.com/hardyjosh/rain-oracle-server/pkg/oracle"
	"github.com/hardyjosh/rain-oracle-server/pkg/pyth"
	"github.com/hardyjosh/rain-oracle-server/pkg/signer"
	"github.com/hardyjosh/rain-oracle-server/pkg/version"
)

const shutdownTimeout = 10 * time.Second

var (
	configFile = flag.String("config", "", "Path to configuration file (environment only when empty)")
	showVer    = flag.Bool("version", false, "Show version and exit")
	port       = flag.Uint("port", 0, "Port to listen on (overrides config and PORT)")
	expiry     = flag.Uint64("expiry", 0, "Signed context expiry in seconds (overrides config and EXPIRY_SECONDS)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("rain-oracle-server version %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	logger.Info("Starting rain-oracle-server", "version", version.Version)

	// A server that cannot sign must not start.
	sgn, err := loadSigner(cfg)
	if err != nil {
		logger.Fatal("Failed to load signer", "error", err)
	}
	logger.Info("Signer loaded", "address", sgn.Address().Hex())

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 2)
	stopped, err := run(ctx, cfg, sgn, logger, errChan)
	if err != nil {
		logger.Fatal("Failed to start", "error", err)
	}

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Error("Component failed", "error", err)
		}
	}

	logger.Info("Shutting down gracefully...")
	cancel()

	done := make(chan struct{})
	go func() {
		stopped.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("Shutdown complete")
	case <-time.After(shutdownTimeout + time.Second):
		logger.Warn("Shutdown timed out", "timeout", shutdownTimeout.String())
	}
}

// run wires the components and starts the listeners. It returns once they
// are running; their failures are reported on errChan. After ctx is
// cancelled the returned WaitGroup completes when every component has stopped.
func run(ctx context.Context, cfg *config.Config, sgn *signer.Signer, logger *logging.Logger, errChan chan<- error) (*sync.WaitGroup, error) {
	fetcher := pyth.NewClient(
		cfg.Pyth.URL,
		cfg.Pyth.Timeout.ToDuration(),
		pyth.WithMaxStaleness(cfg.Pyth.MaxStaleness.ToDuration()),
		pyth.WithLogger(logger.With("component", "pyth")),
	)

	service, err := oracle.NewService(oracle.Config{
		FeedID:        cfg.Pyth.FeedID,
		ExpirySeconds: cfg.Oracle.ExpirySeconds,
		Pair: oracle.TokenPair{
			Base:  common.HexToAddress(cfg.Oracle.TokenPair.BaseToken),
			Quote: common.HexToAddress(cfg.Oracle.TokenPair.QuoteToken),
		},
	}, fetcher, sgn, logger.With("component", "oracle"))
	if err != nil {
		return nil, fmt.Errorf("create oracle service: %w", err)
	}

	logger.Info("Oracle configured",
		"feed", cfg.Pyth.FeedID,
		"expiry_seconds", cfg.Oracle.ExpirySeconds,
		"base_token", service.Pair().Base.Hex(),
		"quote_token", service.Pair().Quote.Hex(),
	)

	opts := []api.Option{api.WithCORSOrigins(cfg.Server.CORS.AllowedOrigins)}
	if cfg.Server.HTTP.TLS.Enabled {
		opts = append(opts, api.WithTLS(cfg.Server.HTTP.TLS.Cert, cfg.Server.HTTP.TLS.Key))
	}

	var wg sync.WaitGroup
	goTracked := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if cfg.Server.WebSocket.Enabled {
		stream := api.NewStreamServer(service, cfg.Server.WebSocket.Interval.ToDuration(), logger.With("component", "stream"))
		opts = append(opts, api.WithStream(stream))
		goTracked(func() { stream.Run(ctx) })
	}

	server := api.NewServer(cfg.Server.HTTP.Addr, service, logger.With("component", "api"), opts...)
	goTracked(func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	})
	goTracked(func() { stopOnDone(ctx, "HTTP server", server.Stop, logger) })

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path)
		goTracked(func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server: %w", err)
			}
		})
		goTracked(func() { stopOnDone(ctx, "metrics server", metricsServer.Shutdown, logger) })
	}

	return &wg, nil
}

// stopOnDone calls stop with a bounded context once ctx is cancelled.
func stopOnDone(ctx context.Context, name string, stop func(context.Context) error, logger *logging.Logger) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "component", name, "error", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	// Command line flags win over the file and the environment
	if *port != 0 {
		if *port > 65535 {
			return nil, fmt.Errorf("invalid port %d", *port)
		}
		cfg.Server.HTTP.Addr = ":" + strconv.FormatUint(uint64(*port), 10)
	}
	if *expiry != 0 {
		cfg.Oracle.ExpirySeconds = *expiry
	}

	return cfg, nil
}

func loadSigner(cfg *config.Config) (*signer.Signer, error) {
	privateKey, mnemonic, err := cfg.SignerKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", signer.ErrKeyUnavailable, err)
	}
	if mnemonic != "" {
		return signer.NewFromMnemonic(mnemonic, cfg.Signer.HDPath)
	}
	return signer.NewFromHex(privateKey)
}
