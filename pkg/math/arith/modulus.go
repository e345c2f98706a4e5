package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation when
// the factorization is known.
// When m = a⋅b with gcd(a, b) = 1, xᵉ (mod m) is computed with one
// exponentiation modulo a and one modulo b, recombined with the CRT.
//
// The Paillier secret key uses this with a = p², b = q² to compute c^λ mod N².
type Modulus struct {
	// represents modulus m
	*saferith.Modulus
	// m = a⋅b
	a, b *saferith.Modulus
	// aInv = a⁻¹ (mod b)
	aNat, aInv *saferith.Nat
}

// ModulusFromN creates a simple wrapper around a given modulus n.
// The modulus is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{
		Modulus: n,
	}
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod a⋅b. The factors must be coprime.
func ModulusFromFactors(a, b *saferith.Nat) *Modulus {
	mNat := new(saferith.Nat).Mul(a, b, -1)
	aMod := saferith.ModulusFromNat(a)
	bMod := saferith.ModulusFromNat(b)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(mNat),
		a:       aMod,
		b:       bMod,
		aNat:    new(saferith.Nat).SetNat(a),
		aInv:    new(saferith.Nat).ModInverse(a, bMod),
	}
}

// Exp is equivalent to (saferith.Nat).Exp(x, e, n.Modulus).
// It returns xᵉ (mod m).
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if !n.hasFactorization() {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	var xa, xb saferith.Nat
	xa.Exp(x, e, n.a) // x₁ = xᵉ (mod a)
	xb.Exp(x, e, n.b) // x₂ = xᵉ (mod b)
	// r = x₁ + a⋅[a⁻¹ (mod b)]⋅[x₂ - x₁] (mod m)
	r := xb.ModSub(&xb, &xa, n.Modulus)
	r.ModMul(r, n.aInv, n.Modulus)
	r.ModMul(r, n.aNat, n.Modulus)
	r.ModAdd(r, &xa, n.Modulus)
	return r
}

func (n *Modulus) hasFactorization() bool {
	return n.a != nil && n.b != nil && n.aNat != nil && n.aInv != nil
}
