package contract

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/meetup-psi/meetup/pkg/hash"
	"github.com/meetup-psi/meetup/pkg/merkle"
)

// State is the committed state of a contract instance.
type State struct {
	// CommittedRoots only grows, in the order the roots were committed.
	CommittedRoots []merkle.Node
	// LastSummaryDigest is replaced by every encrypted summary.
	LastSummaryDigest []byte
}

// Empty returns the state of a newly registered contract.
func Empty() State {
	return State{}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{}
	if s.CommittedRoots != nil {
		out.CommittedRoots = append([]merkle.Node{}, s.CommittedRoots...)
	}
	if s.LastSummaryDigest != nil {
		out.LastSummaryDigest = append([]byte{}, s.LastSummaryDigest...)
	}
	return out
}

// Equal reports whether both states hold the same roots and digest.
func (s State) Equal(other State) bool {
	if len(s.CommittedRoots) != len(other.CommittedRoots) {
		return false
	}
	for i := range s.CommittedRoots {
		if s.CommittedRoots[i] != other.CommittedRoots[i] {
			return false
		}
	}
	return bytes.Equal(s.LastSummaryDigest, other.LastSummaryDigest)
}

type stateWire struct {
	Roots   [][]byte `cbor:"1,keyasint"`
	Summary []byte   `cbor:"2,keyasint,omitempty"`
}

// MarshalBinary encodes s with canonical cbor.
func (s State) MarshalBinary() ([]byte, error) {
	w := stateWire{
		Roots:   make([][]byte, len(s.CommittedRoots)),
		Summary: s.LastSummaryDigest,
	}
	for i := range s.CommittedRoots {
		w.Roots[i] = s.CommittedRoots[i][:]
	}
	return encMode.Marshal(&w)
}

// UnmarshalBinary decodes a state written by MarshalBinary.
func (s *State) UnmarshalBinary(data []byte) error {
	var w stateWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("contract: unmarshal state: %w", err)
	}
	out := State{}
	if len(w.Roots) > 0 {
		out.CommittedRoots = make([]merkle.Node, len(w.Roots))
		for i, r := range w.Roots {
			if err := out.CommittedRoots[i].UnmarshalBinary(r); err != nil {
				return fmt.Errorf("contract: unmarshal state: root %d: %w", i, err)
			}
		}
	}
	if len(w.Summary) > 0 {
		out.LastSummaryDigest = w.Summary
	}
	*s = out
	return nil
}

// Digest returns the 32 byte digest registered with the ledger for s.
func (s State) Digest() ([]byte, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return nil, err
	}
	h := hash.New("contract.State")
	if err = h.WriteAny(data); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// Roots returns the committed roots in hex, space separated.
func (s State) Roots() string {
	var b bytes.Buffer
	for i, r := range s.CommittedRoots {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.String())
	}
	return b.String()
}
