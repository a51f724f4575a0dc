package pyth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hardyjosh/rain-oracle-server/pkg/logging"
	"github.com/hardyjosh/rain-oracle-server/pkg/metrics"
	"github.com/hardyjosh/rain-oracle-server/pkg/quote"
	"github.com/hardyjosh/rain-oracle-server/pkg/version"
)

const (
	latestPricePath = "/v2/updates/price/latest"
	sourceName      = "pyth"
	maxErrorBody    = 512
)

// hermesResponse is the subset of the Hermes latest price payload we use.
type hermesResponse struct {
	Parsed []parsedFeed `json:"parsed"`
}

type parsedFeed struct {
	ID    string    `json:"id"`
	Price priceInfo `json:"price"`
}

// priceInfo carries price and conf as decimal strings.
type priceInfo struct {
	Price       string `json:"price"`
	Conf        string `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

// Client fetches the latest price for a feed from Hermes.
type Client struct {
	baseURL      string
	client       *http.Client
	maxStaleness time.Duration
	now          func() time.Time
	logger       *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMaxStaleness rejects prices published longer ago than d. Zero disables the check.
func WithMaxStaleness(d time.Duration) Option {
	return func(c *Client) { c.maxStaleness = d }
}

// WithClock overrides the time source used for the staleness check.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Hermes client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		now:    time.Now,
		logger: logging.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuote returns the latest price for feedID (hex, with or without 0x).
// Every failure wraps ErrUpstream.
func (c *Client) FetchQuote(ctx context.Context, feedID string) (quote.Quote, error) {
	start := time.Now()
	q, err := c.fetch(ctx, feedID)

	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Warn("Price fetch failed", "feed", feedID, "error", err)
	} else {
		c.logger.Debug("Fetched price", "feed", feedID, "price", q.Price, "expo", q.Exponent)
	}
	metrics.RecordUpstreamRequest(sourceName, status, time.Since(start))

	return q, err
}

func (c *Client) fetch(ctx context.Context, feedID string) (quote.Quote, error) {
	feedID = strings.TrimPrefix(strings.ToLower(feedID), "0x")

	params := url.Values{}
	params.Set("ids[]", "0x"+feedID)
	params.Set("parsed", "true")
	endpoint := c.baseURL + latestPricePath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%w: failed to create request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := c.client.Do(req)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return quote.Quote{}, fmt.Errorf("%w: hermes returned %d: %s", ErrHTTPStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload hermesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return quote.Quote{}, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	if len(payload.Parsed) == 0 {
		return quote.Quote{}, ErrNoPriceFeed
	}

	return c.toQuote(feedID, payload.Parsed[0])
}

func (c *Client) toQuote(feedID string, feed parsedFeed) (quote.Quote, error) {
	price, err := strconv.ParseInt(feed.Price.Price, 10, 64)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%w: price %q", ErrMalformedPrice, feed.Price.Price)
	}

	var conf uint64
	if feed.Price.Conf != "" {
		conf, err = strconv.ParseUint(feed.Price.Conf, 10, 64)
		if err != nil {
			return quote.Quote{}, fmt.Errorf("%w: conf %q", ErrMalformedPrice, feed.Price.Conf)
		}
	}

	id := strings.TrimPrefix(strings.ToLower(feed.ID), "0x")
	if id == "" {
		id = feedID
	}

	q := quote.Quote{
		FeedID:     id,
		Price:      price,
		Exponent:   feed.Price.Expo,
		Confidence: conf,
	}
	if feed.Price.PublishTime > 0 {
		q.PublishTime = time.Unix(feed.Price.PublishTime, 0)
	}

	if c.maxStaleness > 0 && !q.PublishTime.IsZero() {
		if age := q.Age(c.now()); age > c.maxStaleness {
			return quote.Quote{}, fmt.Errorf("%w: published %s ago, max %s", ErrStalePrice, age.Truncate(time.Second), c.maxStaleness)
		}
	}

	return q, nil
}
