package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultHDPath is the first Ethereum account of a BIP44 wallet.
const DefaultHDPath = "m/44'/60'/0'/0/0"

// SignatureLength is the size of an r || s || v signature.
const SignatureLength = crypto.SignatureLength

// Signer signs digests with a secp256k1 key using the personal-sign prefix.
// It is safe for concurrent use; the key is never mutated after construction.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// New wraps an already loaded private key.
func New(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil || key.D == nil {
		return nil, fmt.Errorf("%w: nil private key", ErrKeyUnavailable)
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// NewFromHex loads a hex private key, with or without 0x prefix.
func NewFromHex(hexKey string) (*Signer, error) {
	hexKey = strings.TrimSpace(hexKey)
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	if hexKey == "" {
		return nil, fmt.Errorf("%w: empty private key", ErrKeyUnavailable)
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// err can quote key characters, keep it out of the message.
		return nil, fmt.Errorf("%w: malformed private key", ErrKeyUnavailable)
	}
	return New(key)
}

// NewFromMnemonic derives the key at hdPath from a BIP39 mnemonic.
// An empty hdPath uses DefaultHDPath.
func NewFromMnemonic(mnemonic, hdPath string) (*Signer, error) {
	if hdPath == "" {
		hdPath = DefaultHDPath
	}

	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, ErrInvalidMnemonic)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyUnavailable, ErrInvalidMnemonic)
	}

	master, chainCode := hd.ComputeMastersFromSeed(seed)
	priv, err := hd.DerivePrivateKeyForPath(master, chainCode, hdPath)
	if err != nil {
		return nil, fmt.Errorf("%w: derive %s: %v", ErrKeyUnavailable, hdPath, err)
	}

	key, err := crypto.ToECDSA(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}
	return New(key)
}

// Address returns the signer's Ethereum address.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign returns a 65 byte signature over
// keccak256("\x19Ethereum Signed Message:\n32" || digest), with v in {27, 28}.
func (s *Signer) Sign(digest common.Hash) ([]byte, error) {
	if s == nil || s.key == nil {
		return nil, ErrKeyUnavailable
	}

	sig, err := crypto.Sign(accounts.TextHash(digest.Bytes()), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign digest: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// String never prints the key.
func (s *Signer) String() string {
	return "signer(" + s.address.Hex() + ")"
}

// Recover returns the address that produced sig over digest.
func Recover(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}

	rsv := make([]byte, SignatureLength)
	copy(rsv, sig)
	if rsv[crypto.RecoveryIDOffset] >= 27 {
		rsv[crypto.RecoveryIDOffset] -= 27
	}
	if rsv[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[crypto.RecoveryIDOffset])
	}

	pub, err := crypto.SigToPub(accounts.TextHash(digest.Bytes()), rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that sig over digest was produced by expected.
func Verify(digest common.Hash, sig []byte, expected common.Address) error {
	got, err := Recover(digest, sig)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("%w: recovered %s, want %s", ErrSignerMismatch, got.Hex(), expected.Hex())
	}
	return nil
}
