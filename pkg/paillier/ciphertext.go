package paillier

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Ciphertext represents an integer of the form
//
//	ct = (1+N)ᵐρᴺ (mod N²), for some plaintext m and nonce ρ.
type Ciphertext struct {
	c *saferith.Nat
}

// CiphertextFromBig wraps c without validating it; use
// PublicKey.ValidateCiphertexts before operating on it.
func CiphertextFromBig(c *big.Int) *Ciphertext {
	return &Ciphertext{c: new(saferith.Nat).SetBig(c, c.BitLen())}
}

// Add sets ct to the homomorphic sum ct ⊕ ct₂.
// ct = ct•ct₂ (mod N²).
//
// Both ciphertexts must be non nil; callers validate untrusted input with
// PublicKey.ValidateCiphertexts first.
func (ct *Ciphertext) Add(pk *PublicKey, ct2 *Ciphertext) *Ciphertext {
	if ct2 == nil || ct2.c == nil {
		panic("paillier.Ciphertext.Add: nil operand")
	}
	ct.c.ModMul(ct.c, ct2.c, pk.nSquared.Modulus)
	return ct
}

// Mul sets ct to the homomorphic multiplication of k ⊙ ct.
// ct = ctᵏ (mod N²), with k first reduced into [0, N).
func (ct *Ciphertext) Mul(pk *PublicKey, k *big.Int) *Ciphertext {
	if k == nil {
		panic("paillier.Ciphertext.Mul: nil scalar")
	}
	kMod := new(big.Int).Mod(k, pk.nBig)
	ct.c = pk.nSquared.Exp(ct.c, new(saferith.Nat).SetBig(kMod, pk.n.BitLen()))
	return ct
}

// MulNat is Mul for a saferith exponent, which is used as is.
func (ct *Ciphertext) MulNat(pk *PublicKey, k *saferith.Nat) *Ciphertext {
	ct.c = pk.nSquared.Exp(ct.c, k)
	return ct
}

// Neg sets ct to the encryption of -m (mod N).
// ct = ct^(N-1) (mod N²).
func (ct *Ciphertext) Neg(pk *PublicKey) *Ciphertext {
	ct.c = pk.nSquared.Exp(ct.c, pk.nMinusOne)
	return ct
}

// Sub sets ct to the encryption of m - m₂ (mod N).
func (ct *Ciphertext) Sub(pk *PublicKey, ct2 *Ciphertext) *Ciphertext {
	if ct2 == nil || ct2.c == nil {
		panic("paillier.Ciphertext.Sub: nil operand")
	}
	return ct.Add(pk, ct2.Clone().Neg(pk))
}

// Randomize multiplies the ciphertext's nonce by a newly generated one.
// ct *= nonceᴺ for some nonce sampled from rand.
// The nonce update is returned.
func (ct *Ciphertext) Randomize(rand io.Reader, pk *PublicKey) (*saferith.Nat, error) {
	nonce, err := pk.Nonce(rand)
	if err != nil {
		return nil, fmt.Errorf("paillier: sample nonce: %w", err)
	}
	ct.RandomizeWithNonce(pk, nonce)
	return nonce, nil
}

// RandomizeWithNonce multiplies ct by nonceᴺ (mod N²).
func (ct *Ciphertext) RandomizeWithNonce(pk *PublicKey, nonce *saferith.Nat) *Ciphertext {
	tmp := pk.nSquared.Exp(nonce, pk.nNat)
	ct.c.ModMul(ct.c, tmp, pk.nSquared.Modulus)
	return ct
}

// Equal check whether ct ≡ ctₐ (mod N²).
func (ct *Ciphertext) Equal(ctA *Ciphertext) bool {
	return ct.c.Big().Cmp(ctA.c.Big()) == 0
}

// Clone returns a deep copy of ct.
func (ct Ciphertext) Clone() *Ciphertext {
	c := new(saferith.Nat)
	c.SetNat(ct.c)
	return &Ciphertext{c: c}
}

// Big returns the ciphertext as a big.Int.
func (ct *Ciphertext) Big() *big.Int {
	return ct.c.Big()
}

// Bytes returns the big-endian encoding of ct, without leading zeros.
func (ct *Ciphertext) Bytes() []byte {
	return ct.c.Big().Bytes()
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	if ct == nil || ct.c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(ct.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Ciphertext) Domain() string {
	return "Paillier Ciphertext"
}
