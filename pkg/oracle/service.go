package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hardyjosh/rain-oracle-server/pkg/logging"
	"github.com/hardyjosh/rain-oracle-server/pkg/metrics"
	"github.com/hardyjosh/rain-oracle-server/pkg/quote"
	"github.com/hardyjosh/rain-oracle-server/pkg/signedcontext"
)

// QuoteFetcher returns the latest quote for a feed.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, feedID string) (quote.Quote, error)
}

// ContextSigner signs a context digest.
type ContextSigner interface {
	Sign(digest common.Hash) ([]byte, error)
	Address() common.Address
}

// Config holds the read-only settings shared by every request.
type Config struct {
	FeedID        string
	ExpirySeconds uint64
	Pair          TokenPair
}

// Service produces signed contexts. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	cfg     Config
	fetcher QuoteFetcher
	signer  ContextSigner
	now     func() time.Time
	logger  *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. A nil signer is ErrKeyUnavailable.
func NewService(cfg Config, fetcher QuoteFetcher, signer ContextSigner, logger *logging.Logger, opts ...Option) (*Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: no signer configured", ErrKeyUnavailable)
	}
	if fetcher == nil {
		return nil, errors.New("quote fetcher is required")
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}

	s := &Service{
		cfg:     cfg,
		fetcher: fetcher,
		signer:  signer,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SignerAddress returns the address every signature recovers to.
func (s *Service) SignerAddress() common.Address {
	return s.signer.Address()
}

// Pair returns the configured token pair.
func (s *Service) Pair() TokenPair {
	return s.cfg.Pair
}

// Produce returns a signed context for the current feed price, as-is.
func (s *Service) Produce(ctx context.Context) (*SignedContext, error) {
	return s.ProduceFor(ctx, signedcontext.AsIs)
}

// ProduceForOrder resolves the price direction from an order's input and
// output tokens and produces a signed context facing that way.
func (s *Service) ProduceForOrder(ctx context.Context, input, output common.Address) (*SignedContext, error) {
	direction, err := s.cfg.Pair.Direction(input, output)
	if err != nil {
		return nil, err
	}
	return s.ProduceFor(ctx, direction)
}

// ProduceFor fetches a fresh quote, builds [price, expiry], and signs it.
// No partial result is returned on error.
func (s *Service) ProduceFor(ctx context.Context, direction signedcontext.Direction) (*SignedContext, error) {
	sc, err := s.produce(ctx, direction)
	if err != nil {
		metrics.RecordSignedContext(direction.String(), errorStatus(err))
		return nil, err
	}
	metrics.RecordSignedContext(direction.String(), "ok")
	return sc, nil
}

func (s *Service) produce(ctx context.Context, direction signedcontext.Direction) (*SignedContext, error) {
	q, err := s.fetcher.FetchQuote(ctx, s.cfg.FeedID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	// Read once; every timestamp in this response derives from it.
	now := s.now()

	expiry, err := expiryAt(now, s.cfg.ExpirySeconds)
	if err != nil {
		return nil, err
	}

	c, err := signedcontext.BuildDirected(q, expiry, direction)
	if err != nil {
		return nil, err
	}
	for i, v := range c {
		if err := v.Canonical(); err != nil {
			return nil, fmt.Errorf("context[%d]: %w", i, err)
		}
	}

	age := q.Age(now)
	metrics.RecordPrice(s.cfg.FeedID, q.Decimal().InexactFloat64(), age)

	sig, err := s.signer.Sign(signedcontext.Digest(c))
	if err != nil {
		if errors.Is(err, ErrKeyUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, err)
	}

	s.logger.Debug("Signed context",
		"direction", direction.String(),
		"price", c.Price().String(),
		"expiry", expiry,
		"quote_age", age.String(),
	)

	return &SignedContext{
		Signer:    s.signer.Address(),
		Context:   c,
		Signature: sig,
	}, nil
}

func expiryAt(now time.Time, window uint64) (uint64, error) {
	unix := now.Unix()
	if unix < 0 {
		return 0, fmt.Errorf("%w: clock before unix epoch", ErrInvalidInput)
	}
	if window > math.MaxUint64-uint64(unix) {
		return 0, fmt.Errorf("%w: expiry overflows", ErrInvalidInput)
	}
	return uint64(unix) + window, nil
}

func errorStatus(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_error"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrKeyUnavailable):
		return "key_error"
	default:
		return "error"
	}
}
