package signedcontext

import "errors"

var (
	// ErrUnknownDirection indicates a price direction other than AsIs or Inverted.
	ErrUnknownDirection = errors.New("unknown price direction")
)
