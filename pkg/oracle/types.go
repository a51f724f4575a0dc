package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hardyjosh/rain-oracle-server/pkg/decfloat"
	"github.com/hardyjosh/rain-oracle-server/pkg/signedcontext"
)

// SignedContext is the response handed to order takers.
type SignedContext struct {
	Signer    common.Address
	Context   signedcontext.Context
	Signature []byte
}

type signedContextJSON struct {
	Signer    string           `json:"signer"`
	Context   []decfloat.Float `json:"context"`
	Signature hexutil.Bytes    `json:"signature"`
}

// MarshalJSON encodes the signer checksummed and every context word as
// fixed-width 0x-prefixed hex.
func (s SignedContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(signedContextJSON{
		Signer:    s.Signer.Hex(),
		Context:   s.Context[:],
		Signature: s.Signature,
	})
}

// UnmarshalJSON decodes the wire format produced by MarshalJSON.
func (s *SignedContext) UnmarshalJSON(data []byte) error {
	var raw signedContextJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !common.IsHexAddress(raw.Signer) {
		return fmt.Errorf("invalid signer address %q", raw.Signer)
	}
	if len(raw.Context) != signedcontext.Length {
		return fmt.Errorf("context has %d values, want %d", len(raw.Context), signedcontext.Length)
	}

	s.Signer = common.HexToAddress(raw.Signer)
	copy(s.Context[:], raw.Context)
	s.Signature = raw.Signature
	return nil
}
