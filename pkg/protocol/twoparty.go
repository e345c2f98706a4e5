package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/meetup-psi/meetup/internal/round"
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TwoPartyHandler represents a restriction of the Handler for 2 party protocols.
//
// The leader finalizes its first round as soon as the handler is created; the
// other party waits for the leader's first message.
type TwoPartyHandler struct {
	Log zerolog.Logger

	round    round.Session
	leader   bool
	err      error
	result   interface{}
	done     bool
	messages map[round.Number]*Message
	out      chan *Message
	mtx      sync.Mutex
}

var _ Handler = (*TwoPartyHandler)(nil)

// NewTwoPartyHandler creates the first round with create and starts the protocol.
//
// Logging goes to a child of the global zerolog logger, annotated with the
// protocol and party.
func NewTwoPartyHandler(create StartFunc, sessionID []byte, leader bool) (*TwoPartyHandler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	handler := &TwoPartyHandler{
		round:    r,
		leader:   leader,
		messages: map[round.Number]*Message{},
		out:      make(chan *Message, 2),
	}
	handler.Log = log.Logger.With().
		Str("protocol", r.ProtocolID()).
		Str("party", string(r.SelfID())).
		Bool("leader", leader).
		Logger()
	handler.Log.Debug().Msg("start")

	if leader {
		handler.mtx.Lock()
		handler.advance()
		handler.mtx.Unlock()
	}
	return handler, nil
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (h *TwoPartyHandler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, ErrNotFinished
}

// Listen returns a channel with outgoing messages that must be sent to the other party.
// The channel is closed when the protocol finishes, successfully or not.
func (h *TwoPartyHandler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.out
}

// Stop cancels the current execution of the protocol, and alerts the other party.
func (h *TwoPartyHandler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if !h.done {
		h.abort(ErrAbortedByUser)
	}
}

func (h *TwoPartyHandler) String() string {
	return fmt.Sprintf("party: %s, protocol: %s", h.round.SelfID(), h.round.ProtocolID())
}

// abort ends the execution. When err != nil the other party is told about it
// with a message of round 0.
func (h *TwoPartyHandler) abort(err error) {
	if h.done {
		return
	}
	h.done = true
	if err != nil {
		h.err = err
		h.Log.Warn().Err(err).Msg("abort")
		select {
		case h.out <- &Message{
			SSID:     h.round.SSID(),
			From:     h.round.SelfID(),
			Protocol: h.round.ProtocolID(),
			Data:     []byte(h.err.Error()),
		}:
		default:
		}
	}
	close(h.out)
}

func (h *TwoPartyHandler) canAdvance() bool {
	if h.round.MessageContent() == nil {
		return true
	}
	if h.messages[h.round.Number()] != nil {
		return true
	}
	return false
}

func extractRoundMessage(r round.Session, msg *Message) (round.Message, error) {
	content := r.MessageContent()
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return round.Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return round.Message{
		From:    msg.From,
		To:      msg.To,
		Content: content,
	}, nil
}

func (h *TwoPartyHandler) verifyMessage(msg *Message) error {
	if msg == nil {
		return nil
	}
	r := h.round
	roundMsg, err := extractRoundMessage(r, msg)
	if err != nil {
		return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
	}
	if err = r.VerifyMessage(roundMsg); err != nil {
		return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
	}
	if err = r.StoreMessage(roundMsg); err != nil {
		return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
	}
	return nil
}

func (h *TwoPartyHandler) advance() {
	for !h.done && h.canAdvance() {
		msg := h.messages[h.round.Number()]
		if err := h.verifyMessage(msg); err != nil {
			h.abort(err)
			return
		}
		out := make(chan *round.Message, 1)
		newRound, err := h.round.Finalize(out)
		close(out)
		if err != nil {
			h.abort(Error{RoundNumber: h.round.Number(), Err: err})
			return
		}
		if newRound == nil {
			h.abort(Error{RoundNumber: h.round.Number(), Err: errors.New("round returned no successor")})
			return
		}
		for roundMsg := range out {
			data, err := cbor.Marshal(roundMsg.Content)
			if err != nil {
				h.abort(Error{RoundNumber: h.round.Number(), Err: fmt.Errorf("failed to marshal round message: %w", err)})
				return
			}
			h.out <- &Message{
				SSID:        newRound.SSID(),
				From:        newRound.SelfID(),
				To:          roundMsg.To,
				Protocol:    newRound.ProtocolID(),
				RoundNumber: roundMsg.Content.RoundNumber(),
				Data:        data,
			}
		}
		number := h.round.Number()
		h.Log.Debug().Int("round", int(number)).Msg("round finalized")
		h.round = newRound
		switch R := newRound.(type) {
		// An abort happened
		case *round.Abort:
			var culprit party.ID
			if len(R.Culprits) > 0 {
				culprit = R.Culprits[0]
			}
			h.abort(Error{RoundNumber: number, Culprit: culprit, Err: R.Err})
			return
		// We have the result
		case *round.Output:
			h.result = R.Result
			h.Log.Info().Msg("protocol finished")
			h.abort(nil)
			return
		default:
		}
	}
}

// CanAccept checks whether msg belongs to this execution and is addressed to us.
func (h *TwoPartyHandler) CanAccept(msg *Message) bool {
	r := h.round
	if msg == nil {
		return false
	}
	if !msg.IsFor(r.SelfID()) {
		return false
	}
	if msg.Protocol != r.ProtocolID() {
		return false
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return false
	}
	if !r.PartyIDs().Contains(msg.From) {
		return false
	}
	if msg.Data == nil {
		return false
	}
	if msg.RoundNumber > r.FinalRoundNumber() {
		return false
	}
	return true
}

// Accept stores msg and advances the protocol as far as possible.
// Messages that cannot be accepted are dropped.
func (h *TwoPartyHandler) Accept(msg *Message) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.done || !h.CanAccept(msg) {
		if msg != nil {
			h.Log.Debug().Stringer("msg", msg).Msg("dropping message")
		}
		return
	}

	if msg.RoundNumber == 0 {
		h.abort(Error{Culprit: msg.From, Err: fmt.Errorf("%w: %q", ErrAbortedByPeer, msg.Data)})
		return
	}

	if h.messages[msg.RoundNumber] != nil {
		h.Log.Warn().Stringer("msg", msg).Msg("duplicate message")
		return
	}
	h.messages[msg.RoundNumber] = msg

	h.advance()
}
