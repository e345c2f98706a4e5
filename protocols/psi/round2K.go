package psi

import (
	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/psi"
)

// round2K is the second round from the key owner's perspective.
type round2K struct {
	*round1K
	diffs psi.EncryptedDiffBatch
}

// VerifyMessage implements round.Round.
//
// - the evaluator returned exactly one difference per token.
// - every difference is a valid ciphertext under our key.
func (r *round2K) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message1E)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if len(body.Diffs) != len(r.items) {
		return &psi.AlignmentError{Want: len(r.items), Got: len(body.Diffs)}
	}
	for _, d := range body.Diffs {
		if d == nil {
			return round.ErrNilFields
		}
	}
	if !r.sk.PublicKey.ValidateCiphertexts(body.Diffs...) {
		return psi.ErrRange
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round2K) StoreMessage(msg round.Message) error {
	r.diffs = msg.Content.(*message1E).Diffs
	return nil
}

// Finalize implements round.Round.
//
// - decrypt every difference, an index matches when it decrypts to 0.
// - send the match set to the evaluator and output it.
func (r *round2K) Finalize(out chan<- *round.Message) (round.Session, error) {
	matches, err := psi.Matches(r.sk, r.diffs, r.Pool)
	if err != nil {
		return r.AbortRound(err, r.otherID), nil
	}
	result := &Result{Matches: matches, Size: len(r.items)}
	if err = r.SendMessage(out, &message2K{Matches: matches, Size: result.Size}, r.otherID); err != nil {
		return r, err
	}
	return r.ResultRound(result), nil
}

// MessageContent implements round.Round.
func (round2K) MessageContent() round.Content { return &message1E{} }

// Number implements round.Round.
func (round2K) Number() round.Number { return 2 }
