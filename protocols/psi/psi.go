// Package psi runs index aligned private set intersection between two parties.
//
// The key owner holds a Paillier secret key and the tokens x. The evaluator
// holds the tokens y, in the same index order. At the end both parties learn
// the indices i where x[i] = y[i], and nothing about the other entries.
//
// Both sides are driven by a protocol.TwoPartyHandler, the key owner being the
// leader:
//
//	key owner                        evaluator
//	  round 1: Enc(x)       ------>    round 1: Enc(x - y)
//	  round 2: decrypt      <------
//	           send matches ------>    round 3: output
package psi

import (
	"errors"
	"fmt"

	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/pool"
	"github.com/meetup-psi/meetup/pkg/protocol"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
)

const (
	protocolID                  = "meetup/psi"
	protocolRounds round.Number = 3
)

// Result is the output of both parties.
type Result struct {
	// Matches are the matching indices, in increasing order.
	Matches psi.MatchSet
	// Size is the number of items that were compared.
	Size int
}

func newHelper(selfID, otherID party.ID, sessionID []byte, pl *pool.Pool) (*round.Helper, error) {
	if selfID == otherID {
		return nil, errors.New("psi: both parties have the same ID")
	}
	info := round.Info{
		ProtocolID:       protocolID,
		FinalRoundNumber: protocolRounds,
		SelfID:           selfID,
		PartyIDs:         []party.ID{selfID, otherID},
	}
	return round.NewSession(info, sessionID, pl)
}

// StartKeyOwner creates the protocol for the party holding sk and the tokens x.
// It must run as the leader of a protocol.TwoPartyHandler.
//
// A pool can be passed to parallelize encryption and decryption.
func StartKeyOwner(sk *paillier.SecretKey, x []token.Token, selfID, otherID party.ID, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if sk == nil {
			return nil, errors.New("psi.StartKeyOwner: nil secret key")
		}
		helper, err := newHelper(selfID, otherID, sessionID, pl)
		if err != nil {
			return nil, fmt.Errorf("psi.StartKeyOwner: %w", err)
		}
		return &round1K{
			Helper:  helper,
			sk:      sk,
			items:   append([]token.Token(nil), x...),
			otherID: otherID,
		}, nil
	}
}

// StartEvaluator creates the protocol for the party holding the tokens y.
//
// When mask is set, the differences sent back to the key owner are masked, so
// that non matching indices reveal nothing about x[i] - y[i].
func StartEvaluator(y []token.Token, mask bool, selfID, otherID party.ID, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		helper, err := newHelper(selfID, otherID, sessionID, pl)
		if err != nil {
			return nil, fmt.Errorf("psi.StartEvaluator: %w", err)
		}
		return &round1E{
			Helper:  helper,
			items:   append([]token.Token(nil), y...),
			mask:    mask,
			otherID: otherID,
		}, nil
	}
}
