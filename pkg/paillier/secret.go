package paillier

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/meetup-psi/meetup/pkg/math/arith"
	"github.com/meetup-psi/meetup/pkg/math/modular"
)

// SecretKey is the secret key corresponding to a Public Paillier Key.
//
// A public key is a modulus N, and the secret key contains the information
// needed to factor N into two primes, P and Q. This allows us to decrypt
// values encrypted using this modulus.
type SecretKey struct {
	*PublicKey
	// p, q such that N = p⋅q
	p, q *big.Int
	// lambda = λ = lcm(p-1, q-1)
	lambda *big.Int
	// mu = μ = L(gᵏ mod N²)⁻¹ mod N, for k = λ
	mu *big.Int

	lambdaNat, muNat *saferith.Nat
}

// P returns the first of the two factors composing this key.
func (sk *SecretKey) P() *big.Int {
	return sk.p
}

// Q returns the second of the two factors composing this key.
func (sk *SecretKey) Q() *big.Int {
	return sk.q
}

// Lambda returns λ = lcm(p-1, q-1).
func (sk *SecretKey) Lambda() *big.Int {
	return sk.lambda
}

// Mu returns μ, the inverse of L(g^λ mod N²) modulo N.
func (sk *SecretKey) Mu() *big.Int {
	return sk.mu
}

// NewSecretKeyFromPrimes derives a key pair from two factors.
//
// p and q must be distinct, coprime, odd and larger than 1. Primality is not
// tested; factors for which μ does not exist yield an error wrapping
// modular.ErrNoInverse.
func NewSecretKeyFromPrimes(p, q *big.Int) (*SecretKey, error) {
	one := big.NewInt(1)
	if p == nil || q == nil {
		return nil, ErrInvalidPrime
	}
	for _, f := range []*big.Int{p, q} {
		if f.Cmp(one) <= 0 || f.Bit(0) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPrime, f)
		}
	}
	if p.Cmp(q) == 0 || modular.GCD(p, q).Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: %v, %v", ErrInvalidPrime, p, q)
	}

	n := new(big.Int).Mul(p, q)
	nSquared := new(big.Int).Mul(n, n)
	g := new(big.Int).Add(n, one)

	lambda := modular.LCM(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	// μ = L(g^λ mod N²)⁻¹ mod N, with L(x) = (x-1)/N
	x, err := modular.ModPow(g, lambda, nSquared)
	if err != nil {
		return nil, fmt.Errorf("paillier: %w", err)
	}
	l := x.Sub(x, one)
	l.Quo(l, n)
	mu, err := modular.ModInverse(l, n)
	if err != nil {
		return nil, fmt.Errorf("paillier: derive mu: %w", err)
	}

	pNat := new(saferith.Nat).SetBig(p, p.BitLen())
	qNat := new(saferith.Nat).SetBig(q, q.BitLen())
	nMod := arith.ModulusFromFactors(pNat, qNat)
	pSquared := new(saferith.Nat).Mul(pNat, pNat, -1)
	qSquared := new(saferith.Nat).Mul(qNat, qNat, -1)
	nSquaredMod := arith.ModulusFromFactors(pSquared, qSquared)

	return &SecretKey{
		PublicKey: newPublicKey(nMod, nSquaredMod),
		p:         new(big.Int).Set(p),
		q:         new(big.Int).Set(q),
		lambda:    lambda,
		mu:        mu,
		lambdaNat: new(saferith.Nat).SetBig(lambda, lambda.BitLen()),
		muNat:     new(saferith.Nat).SetBig(mu, n.BitLen()),
	}, nil
}

// Dec decrypts ct and returns the plaintext m ∈ [0, N).
// It returns an error wrapping ErrRange if gcd(ct, N²) != 1 or if ct is not in [1, N²-1].
//
// m = L(ct^λ mod N²)⋅μ mod N.
func (sk *SecretKey) Dec(ct *Ciphertext) (*big.Int, error) {
	if !sk.PublicKey.ValidateCiphertexts(ct) {
		return nil, fmt.Errorf("%w: invalid ciphertext", ErrRange)
	}
	oneNat := new(saferith.Nat).SetUint64(1)
	n := sk.PublicKey.n.Modulus

	// r = c^λ (mod N²)
	result := sk.PublicKey.nSquared.Exp(ct.c, sk.lambdaNat)
	// r = c^λ - 1
	result.Sub(result, oneNat, -1)
	// r = [(c^λ - 1)/N]
	result.Div(result, n, -1)
	// r = [(c^λ - 1)/N]⋅μ (mod N)
	result.ModMul(result, sk.muNat, n)
	return result.Big(), nil
}

// IsZero reports whether ct decrypts to 0.
func (sk *SecretKey) IsZero(ct *Ciphertext) (bool, error) {
	m, err := sk.Dec(ct)
	if err != nil {
		return false, err
	}
	return modular.IsZero(m), nil
}
