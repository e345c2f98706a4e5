package hash

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/meetup-psi/meetup/internal/params"
	"github.com/zeebo/blake3"
)

const DigestLengthBytes = params.DigestLengthBytes

var ErrUnsupportedType = errors.New("hash.Hash: unsupported type")

// Hash is the hash function used for session identifiers and state digests.
//
// Internally, this is a wrapper around blake3, whose output can be extended to
// any length through Digest.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash, writing each domain separation string in init.
func New(init ...string) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range init {
		_ = writeWithDomain(hash.h, BytesWithDomain{TheDomain: "init", Bytes: []byte(d)})
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *big.Int (non-negative)
//   - *saferith.Nat
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first four types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			toBeWritten = BytesWithDomain{TheDomain: "[]byte", Bytes: t}
		case string:
			toBeWritten = BytesWithDomain{TheDomain: "string", Bytes: []byte(t)}
		case *big.Int:
			if t == nil || t.Sign() < 0 {
				return fmt.Errorf("hash.Hash: write *big.Int: nil or negative")
			}
			toBeWritten = BytesWithDomain{TheDomain: "big.Int", Bytes: t.Bytes()}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = BytesWithDomain{TheDomain: "saferith.Nat", Bytes: t.Bytes()}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedType, d)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}
