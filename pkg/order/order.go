package order

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// requestABIJSON describes the POST body as the inputs of a single method:
// (OrderV4 order, uint256 inputIOIndex, uint256 outputIOIndex, address counterparty).
const requestABIJSON = `[{
	"name": "signedContext",
	"type": "function",
	"stateMutability": "view",
	"inputs": [
		{
			"name": "order",
			"type": "tuple",
			"internalType": "struct OrderV4",
			"components": [
				{"name": "owner", "type": "address"},
				{
					"name": "evaluable",
					"type": "tuple",
					"internalType": "struct EvaluableV3",
					"components": [
						{"name": "interpreter", "type": "address"},
						{"name": "store", "type": "address"},
						{"name": "bytecode", "type": "bytes"}
					]
				},
				{
					"name": "validInputs",
					"type": "tuple[]",
					"internalType": "struct IO[]",
					"components": [
						{"name": "token", "type": "address"},
						{"name": "decimals", "type": "uint8"},
						{"name": "vaultId", "type": "uint256"}
					]
				},
				{
					"name": "validOutputs",
					"type": "tuple[]",
					"internalType": "struct IO[]",
					"components": [
						{"name": "token", "type": "address"},
						{"name": "decimals", "type": "uint8"},
						{"name": "vaultId", "type": "uint256"}
					]
				},
				{"name": "nonce", "type": "bytes32"}
			]
		},
		{"name": "inputIOIndex", "type": "uint256"},
		{"name": "outputIOIndex", "type": "uint256"},
		{"name": "counterparty", "type": "address"}
	],
	"outputs": []
}]`

const wordSize = 32

var requestArgs = mustRequestArgs()

func mustRequestArgs() abi.Arguments {
	parsed, err := abi.JSON(strings.NewReader(requestABIJSON))
	if err != nil {
		panic(fmt.Sprintf("order: parse request ABI: %v", err))
	}
	return parsed.Methods["signedContext"].Inputs
}

// IO is one vault an order can take from or give to.
// Field order must follow the ABI tuple.
type IO struct {
	Token    common.Address `abi:"token"`
	Decimals uint8          `abi:"decimals"`
	VaultID  *big.Int       `abi:"vaultId"`
}

// EvaluableV3 is the expression an order runs.
type EvaluableV3 struct {
	Interpreter common.Address `abi:"interpreter"`
	Store       common.Address `abi:"store"`
	Bytecode    []byte         `abi:"bytecode"`
}

// OrderV4 is the orderbook's order struct.
type OrderV4 struct {
	Owner        common.Address `abi:"owner"`
	Evaluable    EvaluableV3    `abi:"evaluable"`
	ValidInputs  []IO           `abi:"validInputs"`
	ValidOutputs []IO           `abi:"validOutputs"`
	Nonce        [32]byte       `abi:"nonce"`
}

// Request is a decoded POST body.
type Request struct {
	Order         OrderV4        `abi:"order"`
	InputIOIndex  *big.Int       `abi:"inputIOIndex"`
	OutputIOIndex *big.Int       `abi:"outputIOIndex"`
	Counterparty  common.Address `abi:"counterparty"`
}

// Decode parses a POST body. Both abi.encode(order, in, out, counterparty)
// and abi.encode((order, in, out, counterparty)) are accepted.
func Decode(body []byte) (*Request, error) {
	if len(body) < wordSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidBody, len(body))
	}

	// The parameter list starts with the order's offset (0x80). A wrapped
	// tuple starts with its own offset (0x20) instead.
	if isWrappedTuple(body) {
		body = body[wordSize:]
	}

	values, err := requestArgs.Unpack(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}

	var req Request
	if err := requestArgs.Copy(&req, values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return &req, nil
}

func isWrappedTuple(body []byte) bool {
	head := new(big.Int).SetBytes(body[:wordSize])
	return head.Cmp(big.NewInt(wordSize)) == 0
}

// Encode returns abi.encode(order, inputIOIndex, outputIOIndex, counterparty).
func Encode(req *Request) ([]byte, error) {
	return requestArgs.Pack(req.Order, req.InputIOIndex, req.OutputIOIndex, req.Counterparty)
}

// EncodeTuple returns the single-tuple encoding of req.
func EncodeTuple(req *Request) ([]byte, error) {
	packed, err := Encode(req)
	if err != nil {
		return nil, err
	}
	return append(common.LeftPadBytes(big.NewInt(wordSize).Bytes(), wordSize), packed...), nil
}

// Tokens returns the input and output token addresses selected by the IO indices.
func (r *Request) Tokens() (input, output common.Address, err error) {
	in, err := pick(r.Order.ValidInputs, r.InputIOIndex, "input")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	out, err := pick(r.Order.ValidOutputs, r.OutputIOIndex, "output")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return in.Token, out.Token, nil
}

func pick(ios []IO, index *big.Int, kind string) (IO, error) {
	if index == nil || index.Sign() < 0 || !index.IsUint64() || index.Uint64() >= uint64(len(ios)) {
		return IO{}, fmt.Errorf("%w: %s index %s (order has %d %ss)", ErrInvalidIndex, kind, index, len(ios), kind)
	}
	return ios[index.Uint64()], nil
}
