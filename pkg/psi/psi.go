// Package psi computes index aligned private set intersection over Paillier
// ciphertexts.
//
// The key owner encrypts its tokens x under its own key with EncryptItems.
// The evaluator, holding tokens y in the same index order, computes
// Enc(x[i] - y[i]) for every index with Evaluate, optionally masking each
// difference by a random unit. The key owner decrypts the differences with
// Matches; index i matches exactly when x[i] = y[i].
package psi

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/pool"
	"github.com/meetup-psi/meetup/pkg/token"
)

var (
	ErrAlignment = errors.New("psi: batches are not index aligned")
	ErrRange     = errors.New("psi: ciphertext out of range")
)

// AlignmentError reports two batches of different sizes.
type AlignmentError struct {
	Want, Got int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("psi: batches are not index aligned: want %d items, got %d", e.Want, e.Got)
}

// Unwrap makes errors.Is(err, ErrAlignment) hold.
func (e *AlignmentError) Unwrap() error {
	return ErrAlignment
}

// EncryptedItemBatch holds the key owner's encrypted tokens, in index order.
type EncryptedItemBatch []*paillier.Ciphertext

// EncryptedDiffBatch holds Enc(x[i] - y[i]) for each index, possibly masked.
type EncryptedDiffBatch []*paillier.Ciphertext

// MatchSet is the sorted list of matching indices.
type MatchSet []int

// Contains reports whether index i matched.
func (m MatchSet) Contains(i int) bool {
	j := sort.SearchInts(m, i)
	return j < len(m) && m[j] == i
}

// EncryptItems encrypts each token under pk.
func EncryptItems(rand io.Reader, pk *paillier.PublicKey, x []token.Token, pl *pool.Pool) (EncryptedItemBatch, error) {
	reader := pool.NewLockedReader(rand)
	out := make(EncryptedItemBatch, len(x))
	err := pl.Each(len(x), func(i int) error {
		ct, _, err := pk.Enc(reader, x[i].Big())
		if err != nil {
			return fmt.Errorf("psi: encrypt item %d: %w", i, err)
		}
		out[i] = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate computes result[i] = cx[i]⋅Enc(y[i])^(N-1) = Enc(x[i] - y[i]).
//
// When mask is set, each entry is further raised to a fresh unit ρᵢ ∈ ℤₙˣ and
// re-randomized, so a non matching index decrypts to a uniformly masked value
// rather than to the difference itself.
//
// cx is not modified.
func Evaluate(rand io.Reader, pk *paillier.PublicKey, cx EncryptedItemBatch, y []token.Token, mask bool, pl *pool.Pool) (EncryptedDiffBatch, error) {
	if len(cx) != len(y) {
		return nil, &AlignmentError{Want: len(y), Got: len(cx)}
	}
	for i, ct := range cx {
		if !pk.ValidateCiphertexts(ct) {
			return nil, fmt.Errorf("%w: item %d", ErrRange, i)
		}
	}

	reader := pool.NewLockedReader(rand)
	out := make(EncryptedDiffBatch, len(cx))
	err := pl.Each(len(cx), func(i int) error {
		cy, _, err := pk.Enc(reader, y[i].Big())
		if err != nil {
			return fmt.Errorf("psi: encrypt item %d: %w", i, err)
		}
		diff := cx[i].Clone().Add(pk, cy.Neg(pk))
		if mask {
			rho, err := pk.Nonce(reader)
			if err != nil {
				return fmt.Errorf("psi: sample mask %d: %w", i, err)
			}
			diff.MulNat(pk, rho)
			if _, err = diff.Randomize(reader, pk); err != nil {
				return fmt.Errorf("psi: randomize %d: %w", i, err)
			}
		}
		out[i] = diff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Matches decrypts every difference, reporting index i when it decrypts to 0.
func Matches(sk *paillier.SecretKey, diffs EncryptedDiffBatch, pl *pool.Pool) (MatchSet, error) {
	zero := make([]bool, len(diffs))
	err := pl.Each(len(diffs), func(i int) error {
		isZero, err := sk.IsZero(diffs[i])
		if err != nil {
			return fmt.Errorf("psi: decrypt difference %d: %w", i, err)
		}
		zero[i] = isZero
		return nil
	})
	if err != nil {
		return nil, err
	}
	matches := MatchSet{}
	for i, z := range zero {
		if z {
			matches = append(matches, i)
		}
	}
	return matches, nil
}
