// Package signer holds the process signing key and produces EIP-191
// signatures over signed context digests.
package signer

import "errors"

var (
	// ErrKeyUnavailable indicates that no usable signing key could be loaded.
	ErrKeyUnavailable = errors.New("signing key unavailable")
	// ErrInvalidMnemonic indicates a mnemonic that fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrInvalidSignature indicates a signature that is not 65 bytes or has a bad recovery id.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrSignerMismatch indicates a signature recovered to an unexpected address.
	ErrSignerMismatch = errors.New("signature does not match signer")
)
