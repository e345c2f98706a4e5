package round

import (
	"errors"

	"github.com/meetup-psi/meetup/pkg/party"
)

var (
	// ErrInvalidContent is returned when the content of a message does not match the expected type.
	ErrInvalidContent = errors.New("content is not the right type")
	// ErrNilFields is returned when a message is missing fields.
	ErrNilFields = errors.New("message contained empty fields")
)

// Content represents the message, either broadcast or P2P returned by a round
// during finalization.
type Content interface {
	RoundNumber() Number
}

type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}
