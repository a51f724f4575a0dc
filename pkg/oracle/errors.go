// Package oracle turns a fresh price quote into a signed context an order
// taker can present on-chain.
package oracle

import (
	"errors"

	"github.com/hardyjosh/rain-oracle-server/pkg/decfloat"
	"github.com/hardyjosh/rain-oracle-server/pkg/signer"
)

var (
	// ErrInvalidInput indicates a numeric value that cannot be encoded.
	ErrInvalidInput = decfloat.ErrInvalidInput
	// ErrUpstreamUnavailable indicates the price feed failed. Not retried.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrKeyUnavailable indicates a missing or unusable signing key.
	ErrKeyUnavailable = signer.ErrKeyUnavailable
	// ErrEncodingInvariant indicates a packed value outside canonical form.
	ErrEncodingInvariant = decfloat.ErrEncodingInvariant
	// ErrUnsupportedTokenPair indicates an order whose tokens do not match the configured pair.
	ErrUnsupportedTokenPair = errors.New("unsupported token pair")
)
