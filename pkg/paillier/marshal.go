package paillier

import (
	"encoding"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

var (
	_ encoding.BinaryMarshaler   = (*PublicKey)(nil)
	_ encoding.BinaryUnmarshaler = (*PublicKey)(nil)
	_ encoding.BinaryMarshaler   = (*SecretKey)(nil)
	_ encoding.BinaryUnmarshaler = (*SecretKey)(nil)
	_ encoding.BinaryMarshaler   = (*Ciphertext)(nil)
	_ encoding.BinaryUnmarshaler = (*Ciphertext)(nil)
)

type publicKeyCBOR struct {
	N []byte
}

type secretKeyCBOR struct {
	P []byte
	Q []byte
}

func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(publicKeyCBOR{N: pk.nBig.Bytes()})
}

func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	var x publicKeyCBOR
	if err := cbor.Unmarshal(data, &x); err != nil {
		return fmt.Errorf("paillier: unmarshal public key: %w", err)
	}
	newPk, err := NewPublicKey(new(big.Int).SetBytes(x.N))
	if err != nil {
		return err
	}
	*pk = *newPk
	return nil
}

func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(secretKeyCBOR{P: sk.p.Bytes(), Q: sk.q.Bytes()})
}

func (sk *SecretKey) UnmarshalBinary(data []byte) error {
	var x secretKeyCBOR
	if err := cbor.Unmarshal(data, &x); err != nil {
		return fmt.Errorf("paillier: unmarshal secret key: %w", err)
	}
	newSk, err := NewSecretKeyFromPrimes(new(big.Int).SetBytes(x.P), new(big.Int).SetBytes(x.Q))
	if err != nil {
		return err
	}
	*sk = *newSk
	return nil
}

func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	if ct == nil || ct.c == nil {
		return nil, fmt.Errorf("paillier: marshal nil ciphertext")
	}
	return cbor.Marshal(ct.Bytes())
}

func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("paillier: unmarshal ciphertext: %w", err)
	}
	*ct = *CiphertextFromBig(new(big.Int).SetBytes(b))
	return nil
}
