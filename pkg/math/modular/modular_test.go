package modular

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModPow(t *testing.T) {
	tests := []struct {
		base, exp, mod int64
		want           int64
	}{
		{4, 13, 497, 445},
		{2, 10, 1000, 24},
		{7, 0, 13, 1},
		{0, 5, 13, 0},
		{123, 456, 1, 0},
		{-2, 3, 7, 6},
	}
	for _, tt := range tests {
		got, err := ModPow(big.NewInt(tt.base), big.NewInt(tt.exp), big.NewInt(tt.mod))
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Int64(), "%d^%d mod %d", tt.base, tt.exp, tt.mod)
	}
}

func TestModPowMatchesExp(t *testing.T) {
	for i := 0; i < 20; i++ {
		m, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 512))
		require.NoError(t, err)
		m.Add(m, big.NewInt(2))
		b, _ := rand.Int(rand.Reader, m)
		e, _ := rand.Int(rand.Reader, m)

		got, err := ModPow(b, e, m)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Cmp(new(big.Int).Exp(b, e, m)))
	}
}

func TestModPowErrors(t *testing.T) {
	_, err := ModPow(big.NewInt(2), big.NewInt(3), big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidModulus)
	_, err = ModPow(big.NewInt(2), big.NewInt(-3), big.NewInt(5))
	assert.ErrorIs(t, err, ErrNegativeExponent)
}

func TestExtendedGCD(t *testing.T) {
	pairs := [][2]int64{{240, 46}, {46, 240}, {17, 5}, {0, 9}, {9, 0}, {-12, 18}, {35, 64}}
	for _, p := range pairs {
		a, b := big.NewInt(p[0]), big.NewInt(p[1])
		g, x, y := ExtendedGCD(a, b)
		assert.Equal(t, 0, g.Cmp(new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))), "gcd(%v, %v)", a, b)

		lhs := new(big.Int).Add(new(big.Int).Mul(a, x), new(big.Int).Mul(b, y))
		assert.Equal(t, 0, lhs.Cmp(g), "bezout identity for (%v, %v)", a, b)
	}
}

func TestModInverse(t *testing.T) {
	inv, err := ModInverse(big.NewInt(3), big.NewInt(11))
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.Int64())

	inv, err = ModInverse(big.NewInt(-3), big.NewInt(11))
	require.NoError(t, err)
	assert.Equal(t, int64(7), inv.Int64())

	_, err = ModInverse(big.NewInt(6), big.NewInt(9))
	assert.ErrorIs(t, err, ErrNoInverse)
}

func TestLCM(t *testing.T) {
	assert.Equal(t, int64(12), LCM(big.NewInt(4), big.NewInt(6)).Int64())
	assert.Equal(t, int64(60), LCM(big.NewInt(10), big.NewInt(12)).Int64())
	assert.Equal(t, int64(0), LCM(big.NewInt(0), big.NewInt(7)).Int64())
	assert.Equal(t, int64(21), LCM(big.NewInt(-3), big.NewInt(7)).Int64())
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(new(big.Int)))
	assert.True(t, IsZero(big.NewInt(0)))
	assert.False(t, IsZero(big.NewInt(-1)))
	assert.False(t, IsZero(big.NewInt(5)))
}
