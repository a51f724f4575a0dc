// Package order decodes the ABI-encoded order an order taker posts when it
// asks for a signed context.
package order

import "errors"

var (
	// ErrInvalidBody indicates a body that is not a valid ABI encoding.
	ErrInvalidBody = errors.New("invalid ABI-encoded body")
	// ErrInvalidIndex indicates an IO index outside the order's inputs or outputs.
	ErrInvalidIndex = errors.New("invalid IO index")
)
