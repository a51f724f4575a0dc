// Package decfloat encodes decimal values into the packed bytes32 float
// format verified by the orderbook contracts.
package decfloat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a numeric value that cannot be encoded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOutOfRange indicates a coefficient that does not fit the packed width.
	ErrOutOfRange = fmt.Errorf("%w: value out of range", ErrInvalidInput)
	// ErrInvalidExponent indicates an exponent outside the int32 domain.
	ErrInvalidExponent = fmt.Errorf("%w: invalid exponent", ErrInvalidInput)
	// ErrDivisionByZero indicates an attempt to invert zero.
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrInvalidInput)
	// ErrInvalidLength indicates raw bytes that are not exactly one packed word.
	ErrInvalidLength = fmt.Errorf("%w: packed float must be 32 bytes", ErrInvalidInput)
	// ErrEncodingInvariant indicates a packed value that is not in canonical form.
	ErrEncodingInvariant = errors.New("encoding invariant violated")
)
