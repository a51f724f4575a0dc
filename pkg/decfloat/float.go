package decfloat

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// Packed layout, most significant byte first:
//
//	[0:4]   exponent, int32 two's complement
//	[4:32]  coefficient, int224 two's complement
const (
	// Size is the width of a packed float in bytes.
	Size = 32

	exponentBytes   = 4
	coefficientBits = 224

	// maxScaleDigits bounds positive exponents before multiplying out. Any
	// non-zero coefficient scaled by 10^68 overflows int224.
	maxScaleDigits = 68

	// inverseDigits is the number of significant digits kept by Inverse.
	// 10^66 < 2^223, so the quotient always fits.
	inverseDigits = 65
)

var (
	two224         = new(big.Int).Lsh(big.NewInt(1), coefficientBits)
	maxCoefficient = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), coefficientBits-1), big.NewInt(1))
	minCoefficient = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), coefficientBits-1))
	ten            = big.NewInt(10)
)

// Float is a packed decimal float: coefficient * 10^exponent.
type Float [Size]byte

// Zero is the packed representation of 0.
var Zero Float

// Encode normalizes (coefficient, exponent) into canonical form and packs it.
//
// Positive exponents are multiplied into the coefficient. Negative exponents
// are raised while the coefficient has trailing decimal zeros. The result is
// identical for every representation of the same value.
func Encode(coefficient *big.Int, exponent int64) (Float, error) {
	if coefficient == nil {
		return Zero, fmt.Errorf("%w: nil coefficient", ErrInvalidInput)
	}
	if exponent < math.MinInt32 || exponent > math.MaxInt32 {
		return Zero, fmt.Errorf("%w: %d", ErrInvalidExponent, exponent)
	}

	c, e, err := normalize(coefficient, exponent)
	if err != nil {
		return Zero, err
	}
	return pack(c, e)
}

// FromInt64 encodes coefficient * 10^exponent.
func FromInt64(coefficient int64, exponent int64) (Float, error) {
	return Encode(big.NewInt(coefficient), exponent)
}

// FromUint64 encodes an exact integer with exponent 0.
func FromUint64(v uint64) (Float, error) {
	return Encode(new(big.Int).SetUint64(v), 0)
}

// FromDecimal encodes a shopspring decimal without loss.
func FromDecimal(d decimal.Decimal) (Float, error) {
	return Encode(d.Coefficient(), int64(d.Exponent()))
}

// FromBytes reads a packed float from exactly 32 bytes.
func FromBytes(b []byte) (Float, error) {
	var f Float
	if len(b) != Size {
		return f, fmt.Errorf("%w: got %d", ErrInvalidLength, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// FromHex reads a 0x-prefixed packed float.
func FromHex(s string) (Float, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return FromBytes(b)
}

func normalize(coefficient *big.Int, exponent int64) (*big.Int, int64, error) {
	c := new(big.Int).Set(coefficient)
	if c.Sign() == 0 {
		return c, 0, nil
	}

	if exponent > 0 {
		if exponent >= maxScaleDigits {
			return nil, 0, fmt.Errorf("%w: %se%d", ErrOutOfRange, coefficient, exponent)
		}
		c.Mul(c, new(big.Int).Exp(ten, big.NewInt(exponent), nil))
		exponent = 0
	}

	q, r := new(big.Int), new(big.Int)
	for exponent < 0 {
		q.QuoRem(c, ten, r)
		if r.Sign() != 0 {
			break
		}
		c.Set(q)
		exponent++
	}
	return c, exponent, nil
}

func pack(c *big.Int, exponent int64) (Float, error) {
	var f Float
	if c.Cmp(maxCoefficient) > 0 || c.Cmp(minCoefficient) < 0 {
		return f, fmt.Errorf("%w: coefficient %s exceeds int224", ErrOutOfRange, c)
	}

	word := new(big.Int).Set(c)
	if word.Sign() < 0 {
		word.Add(word, two224)
	}
	word.FillBytes(f[exponentBytes:])
	binary.BigEndian.PutUint32(f[:exponentBytes], uint32(int32(exponent)))
	return f, nil
}

// Unpack returns the coefficient and exponent stored in f.
func (f Float) Unpack() (*big.Int, int32) {
	exponent := int32(binary.BigEndian.Uint32(f[:exponentBytes]))
	c := new(big.Int).SetBytes(f[exponentBytes:])
	if f[exponentBytes]&0x80 != 0 {
		c.Sub(c, two224)
	}
	return c, exponent
}

// Canonical reports ErrEncodingInvariant when f is not the form Encode
// would produce for its value.
func (f Float) Canonical() error {
	c, e := f.Unpack()
	switch {
	case e > 0:
		return fmt.Errorf("%w: positive exponent %d", ErrEncodingInvariant, e)
	case c.Sign() == 0 && e != 0:
		return fmt.Errorf("%w: zero with exponent %d", ErrEncodingInvariant, e)
	case e < 0 && new(big.Int).Rem(c, ten).Sign() == 0:
		return fmt.Errorf("%w: trailing zero in coefficient %s", ErrEncodingInvariant, c)
	}
	return nil
}

// Decimal converts f to a shopspring decimal.
func (f Float) Decimal() decimal.Decimal {
	c, e := f.Unpack()
	return decimal.NewFromBigInt(c, e)
}

// Inverse returns 1/f. Non-terminating results are truncated to 65
// significant digits before canonicalization.
func (f Float) Inverse() (Float, error) {
	c, e := f.Unpack()
	if c.Sign() == 0 {
		return Zero, ErrDivisionByZero
	}

	// 1 / (c * 10^e) = (10^k / c) * 10^(-k-e)
	k := int64(len(new(big.Int).Abs(c).String())) + inverseDigits
	q := new(big.Int).Exp(ten, big.NewInt(k), nil)
	q.Quo(q, c)
	return Encode(q, -k-int64(e))
}

// IsZero reports whether f encodes zero.
func (f Float) IsZero() bool {
	c, _ := f.Unpack()
	return c.Sign() == 0
}

// Bytes returns the packed word.
func (f Float) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, f[:])
	return b
}

// Hex returns the 0x-prefixed, zero-padded 64 digit hex form.
func (f Float) Hex() string {
	return hexutil.Encode(f[:])
}

// String returns the decimal value of f.
func (f Float) String() string {
	return f.Decimal().String()
}

// MarshalText implements encoding.TextMarshaler.
func (f Float) MarshalText() ([]byte, error) {
	return []byte(f.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Float) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
