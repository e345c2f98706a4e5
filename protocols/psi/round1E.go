package psi

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/meetup-psi/meetup/internal/params"
	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
)

// round1E is the first round from the evaluator's perspective.
type round1E struct {
	*round.Helper
	items   []token.Token
	mask    bool
	otherID party.ID

	pk *paillier.PublicKey
	cx psi.EncryptedItemBatch
}

// VerifyMessage implements round.Round.
//
// - N is an odd modulus of at least params.MinBitsPaillier bits.
// - there is exactly one ciphertext per token, each in range.
func (r *round1E) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message1K)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if len(body.N) == 0 {
		return round.ErrNilFields
	}
	n := new(big.Int).SetBytes(body.N)
	if n.BitLen() < params.MinBitsPaillier {
		return fmt.Errorf("psi: modulus has %d bits, need at least %d", n.BitLen(), params.MinBitsPaillier)
	}
	pk, err := paillier.NewPublicKey(n)
	if err != nil {
		return err
	}
	if len(body.Items) != len(r.items) {
		return &psi.AlignmentError{Want: len(r.items), Got: len(body.Items)}
	}
	if !pk.ValidateCiphertexts(body.Items...) {
		return psi.ErrRange
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round1E) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message1K)
	pk, err := paillier.NewPublicKey(new(big.Int).SetBytes(body.N))
	if err != nil {
		return err
	}
	r.pk = pk
	r.cx = body.Items
	return nil
}

// Finalize implements round.Round.
//
// - compute Enc(x[i] - y[i]) for every index, masked if requested.
// - send the differences back, in index order.
func (r *round1E) Finalize(out chan<- *round.Message) (round.Session, error) {
	diffs, err := psi.Evaluate(rand.Reader, r.pk, r.cx, r.items, r.mask, r.Pool)
	if err != nil {
		return r.AbortRound(err, r.otherID), nil
	}
	if err = r.SendMessage(out, &message1E{Diffs: diffs}, r.otherID); err != nil {
		return r, err
	}
	return &round2E{round1E: r}, nil
}

// MessageContent implements round.Round.
func (round1E) MessageContent() round.Content { return &message1K{} }

// Number implements round.Round.
func (round1E) Number() round.Number { return 1 }
