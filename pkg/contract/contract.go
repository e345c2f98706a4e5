// Package contract is the state machine committing matching results.
//
// The state holds the ordered list of committed Merkle roots and the digest of
// the last encrypted summary. It only changes through Apply, which is a pure
// function of the previous state, the action and the randomness it consumes.
package contract

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the canonical cbor encoding, so equal values encode identically.
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("contract: cbor encoding options: %v", err))
	}
	return em
}

// Error is returned by Apply when an action is rejected.
// The state is left unchanged.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("contract: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
