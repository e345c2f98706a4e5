package paillier

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/meetup-psi/meetup/pkg/math/arith"
	"github.com/meetup-psi/meetup/pkg/math/sample"
)

// PublicKey is the public half of a key pair, the modulus N.
type PublicKey struct {
	// n = N
	n *arith.Modulus
	// nSquared = N²
	nSquared *arith.Modulus

	// These values are cached out of convenience, and performance
	nNat *saferith.Nat
	// nPlusOne = N + 1
	nPlusOne *saferith.Nat
	// nMinusOne = N - 1, the exponent realizing negation
	nMinusOne *saferith.Nat
	nBig      *big.Int
}

// NewPublicKey returns the public key with modulus n.
func NewPublicKey(n *big.Int) (*PublicKey, error) {
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 || n.Bit(0) == 0 {
		return nil, ErrInvalidModulus
	}
	nNat := new(saferith.Nat).SetBig(n, n.BitLen())
	nSquared := new(saferith.Nat).Mul(nNat, nNat, -1)
	return newPublicKey(arith.ModulusFromN(saferith.ModulusFromNat(nNat)), arith.ModulusFromN(saferith.ModulusFromNat(nSquared))), nil
}

func newPublicKey(n, nSquared *arith.Modulus) *PublicKey {
	oneNat := new(saferith.Nat).SetUint64(1)
	nNat := n.Nat()
	nPlusOne := new(saferith.Nat).Add(nNat, oneNat, -1)
	// Tightening is fine, since n is public
	nPlusOne.Resize(nPlusOne.TrueLen())
	nMinusOne := new(saferith.Nat).Sub(nNat, oneNat, -1)
	nMinusOne.Resize(nMinusOne.TrueLen())
	return &PublicKey{
		n:         n,
		nSquared:  nSquared,
		nNat:      nNat,
		nPlusOne:  nPlusOne,
		nMinusOne: nMinusOne,
		nBig:      nNat.Big(),
	}
}

// N returns the modulus N as a big.Int.
//
// The returned value must not be modified.
func (pk *PublicKey) N() *big.Int {
	return pk.nBig
}

// Modulus returns N as a saferith.Modulus.
func (pk *PublicKey) Modulus() *saferith.Modulus {
	return pk.n.Modulus
}

// Equal returns true if pk = other.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.nBig.Cmp(other.nBig) == 0
}

// Nonce returns a fresh nonce ρ ∈ ℤₙˣ read from rand.
func (pk *PublicKey) Nonce(rand io.Reader) (*saferith.Nat, error) {
	return sample.UnitModN(rand, pk.n.Modulus)
}

// Enc returns the encryption of m ∈ [0, N) under pk, using a nonce sampled from rand.
// The nonce is returned alongside the ciphertext.
//
// ct = (1+N)ᵐρᴺ (mod N²).
func (pk *PublicKey) Enc(rand io.Reader, m *big.Int) (*Ciphertext, *saferith.Nat, error) {
	nonce, err := pk.Nonce(rand)
	if err != nil {
		return nil, nil, fmt.Errorf("paillier: sample nonce: %w", err)
	}
	ct, err := pk.EncWithNonce(m, nonce)
	if err != nil {
		return nil, nil, err
	}
	return ct, nonce, nil
}

// EncWithNonce returns the encryption of m ∈ [0, N) under the public key pk,
// with the given nonce ρ ∈ ℤₙˣ.
//
// Equal m and nonce always yield the same ciphertext; this is meant for
// deterministic replays, not for general use.
func (pk *PublicKey) EncWithNonce(m *big.Int, nonce *saferith.Nat) (*Ciphertext, error) {
	mNat, err := pk.plaintext(m)
	if err != nil {
		return nil, err
	}
	if nonce == nil {
		return nil, ErrInvalidNonce
	}
	if _, _, lt := nonce.CmpMod(pk.n.Modulus); lt != 1 || nonce.IsUnit(pk.n.Modulus) != 1 {
		return nil, ErrInvalidNonce
	}

	// (N+1)ᵐ mod N²
	c := pk.nSquared.Exp(pk.nPlusOne, mNat)
	// ρᴺ mod N²
	rhoN := pk.nSquared.Exp(nonce, pk.nNat)
	// (N+1)ᵐ ρᴺ
	c.ModMul(c, rhoN, pk.nSquared.Modulus)

	return &Ciphertext{c: c}, nil
}

func (pk *PublicKey) plaintext(m *big.Int) (*saferith.Nat, error) {
	if m == nil || m.Sign() < 0 || m.Cmp(pk.nBig) >= 0 {
		return nil, fmt.Errorf("%w: plaintext must be in [0, N)", ErrRange)
	}
	return new(saferith.Nat).SetBig(m, pk.n.BitLen()), nil
}

// ValidateCiphertexts checks if all ciphertexts are in the correct range and coprime to N²
// ct ∈ [1, …, N²-1] AND GCD(ct,N²) = 1.
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil {
			return false
		}
		if _, _, lt := ct.c.CmpMod(pk.nSquared.Modulus); lt != 1 {
			return false
		}
		if ct.c.IsUnit(pk.nSquared.Modulus) != 1 {
			return false
		}
	}
	return true
}
