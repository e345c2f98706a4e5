// Package paillier implements the Paillier cryptosystem with g = N+1.
//
// Plaintexts are integers in [0, N), ciphertexts units of ℤ_{N²}. The scheme
// is additively homomorphic: multiplying ciphertexts adds plaintexts, and
// raising a ciphertext to k multiplies its plaintext by k, both modulo N.
//
// Randomness is always supplied by the caller, either as an io.Reader or as an
// explicit nonce.
package paillier

import (
	"errors"
	"io"

	"github.com/meetup-psi/meetup/pkg/math/sample"
	"github.com/meetup-psi/meetup/pkg/pool"
)

var (
	ErrInvalidPrime   = errors.New("paillier: p and q must be distinct, coprime, odd integers > 1")
	ErrInvalidModulus = errors.New("paillier: modulus must be odd and > 1")
	ErrRange          = errors.New("paillier: value out of range")
	ErrInvalidNonce   = errors.New("paillier: nonce is not a unit mod N")
)

// KeyGen generates a new key pair whose modulus N has bits bits.
// Primes are searched for in parallel on pl, which may be nil.
func KeyGen(rand io.Reader, bits int, pl *pool.Pool) (*PublicKey, *SecretKey, error) {
	p, q, err := sample.Paillier(rand, bits, pl)
	if err != nil {
		return nil, nil, err
	}
	sk, err := NewSecretKeyFromPrimes(p.Big(), q.Big())
	if err != nil {
		return nil, nil, err
	}
	return sk.PublicKey, sk, nil
}
