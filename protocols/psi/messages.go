package psi

import (
	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/psi"
)

// message1K carries the key owner's public key and encrypted tokens.
type message1K struct {
	// N is the big-endian Paillier modulus.
	N     []byte
	Items psi.EncryptedItemBatch
}

func (message1K) RoundNumber() round.Number { return 1 }

// message1E carries Enc(x[i] - y[i]) for every index.
type message1E struct {
	Diffs psi.EncryptedDiffBatch
}

func (message1E) RoundNumber() round.Number { return 2 }

// message2K tells the evaluator which indices matched.
type message2K struct {
	Matches []int
	Size    int
}

func (message2K) RoundNumber() round.Number { return 3 }
