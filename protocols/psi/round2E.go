package psi

import (
	"fmt"
	"sort"

	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/psi"
)

// round2E is the final round from the evaluator's perspective.
type round2E struct {
	*round1E
	matches psi.MatchSet
}

// VerifyMessage implements round.Round.
//
// - the size agrees with ours.
// - the indices are strictly increasing and in range.
func (r *round2E) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message2K)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Size != len(r.items) {
		return &psi.AlignmentError{Want: len(r.items), Got: body.Size}
	}
	if !sort.IntsAreSorted(body.Matches) {
		return fmt.Errorf("psi: match indices are not sorted")
	}
	for i, m := range body.Matches {
		if m < 0 || m >= len(r.items) {
			return fmt.Errorf("psi: match index %d out of range", m)
		}
		if i > 0 && body.Matches[i-1] == m {
			return fmt.Errorf("psi: duplicate match index %d", m)
		}
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round2E) StoreMessage(msg round.Message) error {
	matches := msg.Content.(*message2K).Matches
	r.matches = append(psi.MatchSet{}, matches...)
	return nil
}

// Finalize implements round.Round.
func (r *round2E) Finalize(chan<- *round.Message) (round.Session, error) {
	return r.ResultRound(&Result{Matches: r.matches, Size: len(r.items)}), nil
}

// MessageContent implements round.Round.
func (round2E) MessageContent() round.Content { return &message2K{} }

// Number implements round.Round.
func (round2E) Number() round.Number { return 3 }
