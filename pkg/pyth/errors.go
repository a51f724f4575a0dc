// Package pyth fetches prices from the Pyth Hermes HTTP API.
package pyth

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream wraps every failure to obtain a usable price.
	ErrUpstream = errors.New("price feed unavailable")
	// ErrHTTPStatus indicates a non-200 response from Hermes.
	ErrHTTPStatus = fmt.Errorf("%w: unexpected status", ErrUpstream)
	// ErrNoPriceFeed indicates a response with no parsed feeds.
	ErrNoPriceFeed = fmt.Errorf("%w: no price feed returned", ErrUpstream)
	// ErrMalformedPrice indicates a price or confidence that is not an integer.
	ErrMalformedPrice = fmt.Errorf("%w: malformed price", ErrUpstream)
	// ErrStalePrice indicates a publish time older than the configured maximum.
	ErrStalePrice = fmt.Errorf("%w: stale price", ErrUpstream)
)
