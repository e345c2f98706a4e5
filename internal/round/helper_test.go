package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetup-psi/meetup/pkg/party"
)

func testInfo(self party.ID) Info {
	return Info{
		ProtocolID:       "test/session",
		FinalRoundNumber: 2,
		SelfID:           self,
		PartyIDs:         []party.ID{"bob", "alice"},
	}
}

func TestNewSession(t *testing.T) {
	a, err := NewSession(testInfo("alice"), []byte("session"), nil)
	require.NoError(t, err)
	b, err := NewSession(testInfo("bob"), []byte("session"), nil)
	require.NoError(t, err)

	assert.Equal(t, a.SSID(), b.SSID(), "both parties must derive the same session identifier")
	assert.Equal(t, party.IDSlice{"alice", "bob"}, a.PartyIDs())
	assert.Equal(t, party.IDSlice{"alice"}, b.OtherPartyIDs())
	assert.Equal(t, 2, a.N())

	c, err := NewSession(testInfo("alice"), []byte("other session"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.SSID(), c.SSID())
}

func TestNewSessionInvalid(t *testing.T) {
	_, err := NewSession(testInfo("carol"), nil, nil)
	assert.Error(t, err)

	info := testInfo("alice")
	info.PartyIDs = []party.ID{"alice", "alice"}
	_, err = NewSession(info, nil, nil)
	assert.Error(t, err)
}

type dummyContent struct{}

func (dummyContent) RoundNumber() Number { return 1 }

func TestSendMessage(t *testing.T) {
	h, err := NewSession(testInfo("alice"), nil, nil)
	require.NoError(t, err)

	out := make(chan *Message, 1)
	require.NoError(t, h.SendMessage(out, dummyContent{}, "bob"))
	assert.ErrorIs(t, h.SendMessage(out, dummyContent{}, "bob"), ErrOutChanFull)

	msg := <-out
	assert.Equal(t, party.ID("alice"), msg.From)
	assert.Equal(t, party.ID("bob"), msg.To)
}

func TestResultAndAbortRounds(t *testing.T) {
	h, err := NewSession(testInfo("alice"), nil, nil)
	require.NoError(t, err)

	r := h.ResultRound(42)
	out, ok := r.(*Output)
	require.True(t, ok)
	assert.Equal(t, 42, out.Result)
	assert.Equal(t, Number(0), r.Number())

	a := h.AbortRound(assert.AnError, "bob")
	abort, ok := a.(*Abort)
	require.True(t, ok)
	assert.Equal(t, []party.ID{"bob"}, abort.Culprits)
}
