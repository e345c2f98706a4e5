package protocol

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/hash"
	"github.com/meetup-psi/meetup/pkg/party"
)

type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte
	// From is the party.ID of the sender
	From party.ID
	// To is the intended recipient for this message. If To == "", then the message should be sent to all.
	To party.ID
	// Protocol identifies the protocol this message belongs to
	Protocol string
	// RoundNumber is the index of the round this message belongs to.
	// A message with RoundNumber 0 carries an abort reason in Data.
	RoundNumber round.Number
	// Data is the actual content consumed by the round.
	Data []byte
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("message: round %d, from: %s, to %v, protocol: %s", m.RoundNumber, m.From, m.To, m.Protocol)
}

// IsFor returns true if the message is intended for the designated party.
func (m Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == "" || m.To == id
}

// Hash returns a 32 byte digest of the message content, including the headers.
// Can be used to produce a signature for the message.
func (m *Message) Hash() []byte {
	h := hash.New("protocol.Message")
	_ = h.WriteAny(
		hash.BytesWithDomain{TheDomain: "SSID", Bytes: m.SSID},
		hash.BytesWithDomain{TheDomain: "From", Bytes: []byte(m.From)},
		hash.BytesWithDomain{TheDomain: "To", Bytes: []byte(m.To)},
		hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.RoundNumber,
		hash.BytesWithDomain{TheDomain: "Content", Bytes: m.Data},
	)
	return h.Sum()
}

type marshallableMessage struct {
	SSID        []byte
	From        party.ID
	To          party.ID
	Protocol    string
	RoundNumber round.Number
	Data        []byte
}

func (m *Message) toMarshallable() *marshallableMessage {
	return &marshallableMessage{
		SSID:        m.SSID,
		From:        m.From,
		To:          m.To,
		Protocol:    m.Protocol,
		RoundNumber: m.RoundNumber,
		Data:        m.Data,
	}
}

// MarshalBinary encodes the message with cbor, for transports carrying raw bytes.
func (m *Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(m.toMarshallable())
}

func (m *Message) UnmarshalBinary(data []byte) error {
	deserialized := m.toMarshallable()
	if err := cbor.Unmarshal(data, deserialized); err != nil {
		return fmt.Errorf("protocol: unmarshal message: %w", err)
	}
	m.SSID = deserialized.SSID
	m.From = deserialized.From
	m.To = deserialized.To
	m.Protocol = deserialized.Protocol
	m.RoundNumber = deserialized.RoundNumber
	m.Data = deserialized.Data
	return nil
}
