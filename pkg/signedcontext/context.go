// Package signedcontext builds the ordered context array an order taker
// presents on-chain and computes the digest that gets signed over it.
package signedcontext

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hardyjosh/rain-oracle-server/pkg/decfloat"
	"github.com/hardyjosh/rain-oracle-server/pkg/quote"
)

// Context column positions. The consuming order reads them by index.
const (
	PriceIndex  = 0
	ExpiryIndex = 1

	// Length is the number of values in a context.
	Length = 2
)

// Direction selects whether the quoted price is used as-is or inverted.
type Direction int

const (
	// AsIs signs the feed price unchanged (quote per base).
	AsIs Direction = iota
	// Inverted signs 1/price (base per quote).
	Inverted
)

// String returns the direction name used in logs and metrics.
func (d Direction) String() string {
	switch d {
	case AsIs:
		return "as_is"
	case Inverted:
		return "inverted"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Context is the signed context array: [price, expiry].
type Context [Length]decfloat.Float

// Build encodes the quote price and the expiry timestamp into a context.
func Build(q quote.Quote, expiry uint64) (Context, error) {
	return BuildDirected(q, expiry, AsIs)
}

// BuildDirected is Build with an explicit price direction.
// Codec errors are returned unchanged.
func BuildDirected(q quote.Quote, expiry uint64, direction Direction) (Context, error) {
	var c Context

	price, err := decfloat.FromDecimal(q.Decimal())
	if err != nil {
		return c, fmt.Errorf("price: %w", err)
	}

	switch direction {
	case AsIs:
	case Inverted:
		price, err = price.Inverse()
		if err != nil {
			return c, fmt.Errorf("invert price: %w", err)
		}
	default:
		return c, fmt.Errorf("%w: %s", ErrUnknownDirection, direction)
	}

	expiryFloat, err := decfloat.FromUint64(expiry)
	if err != nil {
		return c, fmt.Errorf("expiry: %w", err)
	}

	c[PriceIndex] = price
	c[ExpiryIndex] = expiryFloat
	return c, nil
}

// Price returns the price column.
func (c Context) Price() decfloat.Float {
	return c[PriceIndex]
}

// Expiry returns the expiry column.
func (c Context) Expiry() decfloat.Float {
	return c[ExpiryIndex]
}

// Packed returns abi.encodePacked(bytes32[]) of the context: each word
// back to back, no length prefix.
func (c Context) Packed() []byte {
	packed := make([]byte, 0, Length*decfloat.Size)
	for _, v := range c {
		packed = append(packed, v[:]...)
	}
	return packed
}

// Digest returns keccak256 of the packed context.
func Digest(c Context) common.Hash {
	return crypto.Keccak256Hash(c.Packed())
}
