package token

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAnswers(t *testing.T) {
	tokens, err := FromAnswers([]uint64{1, 4, 2, 3}, 5)
	require.NoError(t, err)
	want := []uint64{1, 9, 12, 18}
	require.Len(t, tokens, len(want))
	for i, w := range want {
		assert.Equal(t, FromUint64(w), tokens[i])
	}
}

func TestEncodeRange(t *testing.T) {
	_, err := Encode(3, 5, 5)
	assert.ErrorIs(t, err, ErrTokenRange)

	_, err = Encode(3, 0, 1)
	assert.ErrorIs(t, err, ErrBase)

	_, err = EncodeWide(Token{Hi: math.MaxUint64}, 0, 2)
	assert.ErrorIs(t, err, ErrTokenRange)

	// the largest 64-bit identifier never overflows
	tok, err := Encode(math.MaxUint64, 4, 5)
	require.NoError(t, err)
	id, answer, err := Decode(tok, 5)
	require.NoError(t, err)
	assert.Equal(t, FromUint64(math.MaxUint64), id)
	assert.Equal(t, uint64(4), answer)
}

func TestEncodeInjective(t *testing.T) {
	const base = 7
	seen := make(map[Token][2]uint64)
	for id := uint64(0); id < 50; id++ {
		for a := uint64(0); a < base; a++ {
			tok, err := Encode(id, a, base)
			require.NoError(t, err)
			_, dup := seen[tok]
			require.False(t, dup, "token %v produced twice", tok)
			seen[tok] = [2]uint64{id, a}

			gotID, gotA, err := Decode(tok, base)
			require.NoError(t, err)
			assert.Equal(t, FromUint64(id), gotID)
			assert.Equal(t, a, gotA)
		}
	}
}

func TestBigConversion(t *testing.T) {
	x, ok := new(big.Int).SetString("340282366920938463463374607431768211455", 10) // 2¹²⁸ - 1
	require.True(t, ok)
	tok, err := FromBig(x)
	require.NoError(t, err)
	assert.Equal(t, Token{Hi: math.MaxUint64, Lo: math.MaxUint64}, tok)
	assert.Equal(t, 0, tok.Big().Cmp(x))
	assert.Equal(t, 128, tok.BitLen())
	assert.Equal(t, x.String(), tok.String())

	_, err = FromBig(new(big.Int).Add(x, big.NewInt(1)))
	assert.ErrorIs(t, err, ErrTokenRange)
	_, err = FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrTokenRange)
}

func TestBytes(t *testing.T) {
	tok := Token{Hi: 1, Lo: 0x0203}
	b := tok.Bytes()
	assert.Equal(t, byte(1), b[7])
	assert.Equal(t, byte(2), b[14])
	assert.Equal(t, byte(3), b[15])

	back, err := FromBytes(b[:])
	require.NoError(t, err)
	assert.Equal(t, tok, back)

	_, err = FromBytes(make([]byte, 17))
	assert.ErrorIs(t, err, ErrTokenRange)
}

func TestBitsAndCmp(t *testing.T) {
	tok := FromUint64(0b1011)
	assert.Equal(t, uint(1), tok.Bit(0))
	assert.Equal(t, uint(1), tok.Bit(1))
	assert.Equal(t, uint(0), tok.Bit(2))
	assert.Equal(t, uint(1), tok.Bit(3))
	assert.Equal(t, uint(1), Token{Hi: 1}.Bit(64))

	assert.Equal(t, -1, FromUint64(3).Cmp(Token{Hi: 1}))
	assert.Equal(t, 1, FromUint64(4).Cmp(FromUint64(3)))
	assert.Equal(t, 0, Zero.Cmp(FromUint64(0)))

	p, err := Parse("18")
	require.NoError(t, err)
	assert.Equal(t, FromUint64(18), p)
	_, err = Parse("eighteen")
	assert.Error(t, err)
}
