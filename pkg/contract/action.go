package contract

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/meetup-psi/meetup/pkg/token"
)

var ErrInvalidAction = errors.New("contract: invalid action")

// Kind identifies an action.
type Kind uint8

const (
	KindCommitRoot Kind = iota + 1
	KindCommitEncryptedSummary
)

func (k Kind) String() string {
	switch k {
	case KindCommitRoot:
		return "CommitRoot"
	case KindCommitEncryptedSummary:
		return "CommitEncryptedSummary"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// CommitRoot appends the Merkle root of Items to the committed roots.
type CommitRoot struct {
	Items []token.Token
}

// CommitEncryptedSummary encrypts Items under the key derived from P and Q,
// and stores the digest of the ciphertexts.
type CommitEncryptedSummary struct {
	P, Q  *big.Int
	Items []token.Token
}

// Action is a tagged union: exactly the payload named by Kind is set.
type Action struct {
	Kind                   Kind
	CommitRoot             *CommitRoot
	CommitEncryptedSummary *CommitEncryptedSummary
}

func NewCommitRoot(items []token.Token) Action {
	return Action{Kind: KindCommitRoot, CommitRoot: &CommitRoot{Items: items}}
}

func NewCommitEncryptedSummary(p, q *big.Int, items []token.Token) Action {
	return Action{
		Kind:                   KindCommitEncryptedSummary,
		CommitEncryptedSummary: &CommitEncryptedSummary{P: p, Q: q, Items: items},
	}
}

// Validate checks that the payload matches the kind.
func (a Action) Validate() error {
	switch a.Kind {
	case KindCommitRoot:
		if a.CommitRoot == nil || a.CommitEncryptedSummary != nil {
			return fmt.Errorf("%w: %s needs exactly its own payload", ErrInvalidAction, a.Kind)
		}
	case KindCommitEncryptedSummary:
		s := a.CommitEncryptedSummary
		if s == nil || a.CommitRoot != nil {
			return fmt.Errorf("%w: %s needs exactly its own payload", ErrInvalidAction, a.Kind)
		}
		if s.P == nil || s.Q == nil {
			return fmt.Errorf("%w: missing primes", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAction, uint8(a.Kind))
	}
	return nil
}

type actionWire struct {
	Kind  Kind     `cbor:"1,keyasint"`
	Items [][]byte `cbor:"2,keyasint"`
	P     []byte   `cbor:"3,keyasint,omitempty"`
	Q     []byte   `cbor:"4,keyasint,omitempty"`
}

func encodeItems(items []token.Token) [][]byte {
	out := make([][]byte, len(items))
	for i, t := range items {
		b := t.Bytes()
		out[i] = b[:]
	}
	return out
}

func decodeItems(data [][]byte) ([]token.Token, error) {
	out := make([]token.Token, len(data))
	for i, b := range data {
		t, err := token.FromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// MarshalBinary encodes a with canonical cbor.
func (a Action) MarshalBinary() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	w := actionWire{Kind: a.Kind}
	switch a.Kind {
	case KindCommitRoot:
		w.Items = encodeItems(a.CommitRoot.Items)
	case KindCommitEncryptedSummary:
		s := a.CommitEncryptedSummary
		if s.P.Sign() <= 0 || s.Q.Sign() <= 0 {
			return nil, fmt.Errorf("%w: primes must be positive", ErrInvalidAction)
		}
		w.Items = encodeItems(s.Items)
		w.P = s.P.Bytes()
		w.Q = s.Q.Bytes()
	}
	return encMode.Marshal(&w)
}

// UnmarshalBinary decodes an action written by MarshalBinary.
func (a *Action) UnmarshalBinary(data []byte) error {
	var w actionWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("contract: unmarshal action: %w", err)
	}
	items, err := decodeItems(w.Items)
	if err != nil {
		return fmt.Errorf("contract: unmarshal action: %w", err)
	}
	var out Action
	switch w.Kind {
	case KindCommitRoot:
		out = NewCommitRoot(items)
	case KindCommitEncryptedSummary:
		if len(w.P) == 0 || len(w.Q) == 0 {
			return fmt.Errorf("%w: missing primes", ErrInvalidAction)
		}
		out = NewCommitEncryptedSummary(new(big.Int).SetBytes(w.P), new(big.Int).SetBytes(w.Q), items)
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAction, uint8(w.Kind))
	}
	*a = out
	return nil
}
