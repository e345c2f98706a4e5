package contract

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/meetup-psi/meetup/pkg/merkle"
	"github.com/meetup-psi/meetup/pkg/paillier"
)

// Output describes an accepted action.
type Output struct {
	Kind Kind
	// Message is the human readable summary returned to the submitter.
	Message string
}

func (o Output) String() string {
	return o.Message
}

// Apply returns the state obtained by applying a to s.
//
// s is never modified. On failure the returned state is s and the error is a
// *Error. rand is only read by CommitEncryptedSummary, which fails with
// ErrInvalidAction when it is nil.
func Apply(rand io.Reader, s State, a Action) (State, Output, error) {
	if err := a.Validate(); err != nil {
		return s, Output{}, &Error{Kind: a.Kind, Err: err}
	}
	next := s.Clone()
	var out Output
	switch a.Kind {
	case KindCommitRoot:
		root, err := merkle.Build(a.CommitRoot.Items)
		if err != nil {
			return s, Output{}, &Error{Kind: a.Kind, Err: err}
		}
		next.CommittedRoots = append(next.CommittedRoots, root)
		out = Output{Kind: a.Kind, Message: "new value: " + next.Roots()}
	case KindCommitEncryptedSummary:
		digest, err := encryptedSummary(rand, a.CommitEncryptedSummary)
		if err != nil {
			return s, Output{}, &Error{Kind: a.Kind, Err: err}
		}
		next.LastSummaryDigest = digest
		out = Output{Kind: a.Kind, Message: "new summary: " + hex.EncodeToString(digest)}
	}
	return next, out, nil
}

func encryptedSummary(rand io.Reader, s *CommitEncryptedSummary) ([]byte, error) {
	sk, err := paillier.NewSecretKeyFromPrimes(s.P, s.Q)
	if err != nil {
		return nil, err
	}
	if rand == nil {
		return nil, fmt.Errorf("%w: %s needs a source of randomness", ErrInvalidAction, KindCommitEncryptedSummary)
	}
	cts := make([]*paillier.Ciphertext, len(s.Items))
	for i, item := range s.Items {
		ct, _, err := sk.Enc(rand, item.Big())
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		cts[i] = ct
	}
	return SummaryDigest(cts), nil
}

// SummaryDigest is SHA-256 over every ciphertext, in order, each written as
// its 4 byte big-endian length followed by its big-endian bytes.
func SummaryDigest(cts []*paillier.Ciphertext) []byte {
	h := sha256.New()
	var length [4]byte
	for _, ct := range cts {
		b := ct.Bytes()
		binary.BigEndian.PutUint32(length[:], uint32(len(b)))
		_, _ = h.Write(length[:])
		_, _ = h.Write(b)
	}
	return h.Sum(nil)
}
