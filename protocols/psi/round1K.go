package psi

import (
	"crypto/rand"

	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
)

// round1K is the first round from the key owner's perspective.
type round1K struct {
	*round.Helper
	sk      *paillier.SecretKey
	items   []token.Token
	otherID party.ID
}

// VerifyMessage implements round.Round.
//
// The key owner starts the protocol, so there is nothing to verify.
func (r *round1K) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (r *round1K) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round.
//
// - encrypt every token under our own key.
// - send N and the ciphertexts, in index order.
func (r *round1K) Finalize(out chan<- *round.Message) (round.Session, error) {
	cx, err := psi.EncryptItems(rand.Reader, r.sk.PublicKey, r.items, r.Pool)
	if err != nil {
		return r, err
	}
	msg := &message1K{N: r.sk.N().Bytes(), Items: cx}
	if err = r.SendMessage(out, msg, r.otherID); err != nil {
		return r, err
	}
	return &round2K{round1K: r}, nil
}

// MessageContent implements round.Round.
func (round1K) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1K) Number() round.Number { return 1 }
