package signedcontext

import (
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardyjosh/rain-oracle-server/pkg/decfloat"
	"github.com/hardyjosh/rain-oracle-server/pkg/quote"
)

func TestBuild_Order(t *testing.T) {
	q := quote.Quote{Price: 310012345678, Exponent: -8, PublishTime: time.Unix(1700000000, 0)}

	c, err := Build(q, 1700000005)
	require.NoError(t, err)

	assert.Equal(t, "3100.12345678", c[PriceIndex].String())
	assert.Equal(t, "1700000005", c[ExpiryIndex].String())
	assert.Equal(t, c[PriceIndex], c.Price())
	assert.Equal(t, c[ExpiryIndex], c.Expiry())
}

func TestBuild_PriceMatchesCodec(t *testing.T) {
	tests := []quote.Quote{
		{Price: 310012345678, Exponent: -8},
		{Price: -42, Exponent: -3},
		{Price: 7, Exponent: 4},
		{Price: math.MaxInt64, Exponent: -18},
	}

	for _, q := range tests {
		c, err := Build(q, 1)
		require.NoError(t, err)
		want, err := decfloat.FromInt64(q.Price, int64(q.Exponent))
		require.NoError(t, err)
		assert.Equal(t, want, c.Price(), "%de%d", q.Price, q.Exponent)
	}
}

func TestBuild_EquivalentQuotes(t *testing.T) {
	a, err := Build(quote.Quote{Price: 300000000000, Exponent: -8}, 100)
	require.NoError(t, err)
	b, err := Build(quote.Quote{Price: 30000000000000, Exponent: -10}, 100)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, Digest(a), Digest(b))
}

func TestBuild_ExpiryExact(t *testing.T) {
	now := uint64(1700000000)
	c, err := Build(quote.Quote{Price: 1, Exponent: 0}, now+5)
	require.NoError(t, err)

	coefficient, exponent := c.Expiry().Unpack()
	assert.Equal(t, now+5, coefficient.Uint64())
	assert.Equal(t, int32(0), exponent)
}

func TestBuildDirected_Inverted(t *testing.T) {
	c, err := BuildDirected(quote.Quote{Price: 200000000000, Exponent: -8}, 1700000000, Inverted)
	require.NoError(t, err)
	assert.Equal(t, "0.0005", c.Price().String())
	assert.Equal(t, "1700000000", c.Expiry().String())

	_, err = BuildDirected(quote.Quote{Price: 0, Exponent: -8}, 1700000000, Inverted)
	assert.ErrorIs(t, err, decfloat.ErrDivisionByZero)

	_, err = BuildDirected(quote.Quote{Price: 1, Exponent: 0}, 1, Direction(7))
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestBuild_PropagatesCodecErrors(t *testing.T) {
	_, err := Build(quote.Quote{Price: 1, Exponent: math.MaxInt32}, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, decfloat.ErrOutOfRange)
	assert.ErrorIs(t, err, decfloat.ErrInvalidInput)
}

func TestPacked_TightConcatenation(t *testing.T) {
	c, err := Build(quote.Quote{Price: 3000, Exponent: 0}, 1700000005)
	require.NoError(t, err)

	packed := c.Packed()
	require.Len(t, packed, Length*decfloat.Size)
	assert.Equal(t, c[PriceIndex][:], packed[:decfloat.Size])
	assert.Equal(t, c[ExpiryIndex][:], packed[decfloat.Size:])
}

func TestDigest_KnownVector(t *testing.T) {
	c, err := Build(quote.Quote{Price: 3000, Exponent: 0}, 1700000005)
	require.NoError(t, err)
	assert.Equal(t,
		common.HexToHash("0x4b1dc5a85ea0f86e0f09d262fc0e487493a534a134ed49c774893c5fd34eb65a"),
		Digest(c))

	c, err = Build(quote.Quote{Price: 310012345678, Exponent: -8}, 1700000000)
	require.NoError(t, err)
	assert.Equal(t,
		common.HexToHash("0x583a93aa128ce224f7d40b9127ac5d08cb758a4294cda31fcff8b114bd58d269"),
		Digest(c))
}

func TestDigest_SensitiveToEveryByte(t *testing.T) {
	c, err := Build(quote.Quote{Price: 310012345678, Exponent: -8}, 1700000000)
	require.NoError(t, err)
	base := Digest(c)
	assert.Equal(t, base, Digest(c), "digest must be pure")

	for col := 0; col < Length; col++ {
		for i := 0; i < decfloat.Size; i += 7 {
			mutated := c
			mutated[col][i] ^= 0x01
			assert.NotEqual(t, base, Digest(mutated), "column %d byte %d", col, i)
		}
	}

	swapped := Context{c[ExpiryIndex], c[PriceIndex]}
	assert.NotEqual(t, base, Digest(swapped))
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "as_is", AsIs.String())
	assert.Equal(t, "inverted", Inverted.String())
	assert.Equal(t, "direction(9)", Direction(9).String())
}
