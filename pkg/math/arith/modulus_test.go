package arith

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"

	"github.com/meetup-psi/meetup/pkg/math/modular"
)

func TestModulus_Exp(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))

	// squares of two primes, as used for N²
	p, q := big.NewInt(1_000_003), big.NewInt(998_861)
	a := new(big.Int).Mul(p, p)
	b := new(big.Int).Mul(q, q)
	m := new(big.Int).Mul(a, b)

	aNat := new(saferith.Nat).SetBig(a, a.BitLen())
	bNat := new(saferith.Nat).SetBig(b, b.BitLen())
	cFast := ModulusFromFactors(aNat, bNat)
	cSlow := ModulusFromN(saferith.ModulusFromNat(new(saferith.Nat).SetBig(m, m.BitLen())))
	assert.True(t, cFast.Nat().Eq(cSlow.Nat()) == 1, "moduli should be the same")

	for i := 0; i < 20; i++ {
		x := new(big.Int).Rand(r, m)
		e := new(big.Int).Rand(r, m)
		want, err := modular.ModPow(x, e, m)
		assert.NoError(t, err)

		xNat := new(saferith.Nat).SetBig(x, m.BitLen())
		eNat := new(saferith.Nat).SetBig(e, m.BitLen())
		assert.Equal(t, 0, want.Cmp(cFast.Exp(xNat, eNat).Big()), "CRT exponentiation")
		assert.Equal(t, 0, want.Cmp(cSlow.Exp(xNat, eNat).Big()), "plain exponentiation")
	}
}
