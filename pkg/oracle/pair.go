package oracle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hardyjosh/rain-oracle-server/pkg/signedcontext"
)

// TokenPair maps token addresses to the feed's roles. The feed prices Base
// in units of Quote (ETH/USD: Base is WETH, Quote is USDC).
type TokenPair struct {
	Base  common.Address
	Quote common.Address
}

// Direction resolves which way the price must face for an order that takes
// input and gives output.
//
//	input=Quote, output=Base -> AsIs     (quote per base)
//	input=Base,  output=Quote -> Inverted (base per quote)
func (p TokenPair) Direction(input, output common.Address) (signedcontext.Direction, error) {
	switch {
	case input == p.Quote && output == p.Base:
		return signedcontext.AsIs, nil
	case input == p.Base && output == p.Quote:
		return signedcontext.Inverted, nil
	default:
		return 0, fmt.Errorf("%w: input %s / output %s does not match configured pair (base=%s, quote=%s)",
			ErrUnsupportedTokenPair, input.Hex(), output.Hex(), p.Base.Hex(), p.Quote.Hex())
	}
}
