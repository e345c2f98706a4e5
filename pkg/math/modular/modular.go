// Package modular implements the integer arithmetic the Paillier scheme is
// defined in terms of: modular exponentiation, the extended Euclidean
// algorithm, modular inversion and least common multiples.
//
// All functions operate on arbitrary width integers and never modify their
// arguments.
package modular

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrInvalidModulus   = errors.New("modular: modulus must be positive")
	ErrNegativeExponent = errors.New("modular: exponent must be non-negative")
	ErrNoInverse        = errors.New("modular: no inverse exists")
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// ModPow computes baseᵉˣᵖ mod modulus by left to right square-and-multiply.
//
// The result lies in [0, modulus). A modulus of 1 yields 0.
func ModPow(base, exp, modulus *big.Int) (*big.Int, error) {
	if modulus.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	if exp.Sign() < 0 {
		return nil, ErrNegativeExponent
	}
	if modulus.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	b := new(big.Int).Mod(base, modulus)
	result := big.NewInt(1)
	for i := exp.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result)
		result.Mod(result, modulus)
		if exp.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
	}
	return result, nil
}

// ExtendedGCD returns g = gcd(a, b) along with Bézout coefficients x, y such
// that a⋅x + b⋅y = g.
//
// g is non-negative; the coefficients may be negative.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		// (oldR, r) = (r, oldR - q⋅r)
		tmp.Mul(q, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)
		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)
		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModInverse returns a⁻¹ mod m, in [0, m).
//
// The returned error wraps ErrNoInverse when gcd(a, m) ≠ 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	g, x, _ := ExtendedGCD(a, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: gcd(%v, %v) = %v", ErrNoInverse, a, m, g)
	}
	return x.Mod(x, m), nil
}

// LCM returns the least common multiple |a⋅b| / gcd(a, b).
//
// LCM(0, x) = LCM(x, 0) = 0.
func LCM(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	g, _, _ := ExtendedGCD(a, b)
	out := new(big.Int).Quo(a, g)
	out.Mul(out, b)
	return out.Abs(out)
}

// GCD returns the non-negative greatest common divisor of a and b.
func GCD(a, b *big.Int) *big.Int {
	g, _, _ := ExtendedGCD(a, b)
	return g
}

// IsZero reports whether x is 0.
func IsZero(x *big.Int) bool {
	return x.Cmp(zero) == 0
}
