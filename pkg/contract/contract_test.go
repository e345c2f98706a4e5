package contract

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetup-psi/meetup/internal/test"
	"github.com/meetup-psi/meetup/pkg/math/sample"
	"github.com/meetup-psi/meetup/pkg/merkle"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/token"
)

func answers(t testing.TB, vs ...uint64) []token.Token {
	items, err := token.FromAnswers(vs, 5)
	require.NoError(t, err)
	return items
}

func TestCommitRoot(t *testing.T) {
	s := Empty()
	next, out, err := Apply(nil, s, NewCommitRoot(answers(t, 1, 4, 2, 3)))
	require.NoError(t, err)
	assert.Equal(t, KindCommitRoot, out.Kind)
	assert.Equal(t, "new value: c6404bd648f1cae131eddd325a1e29fb", out.Message)
	assert.Empty(t, s.CommittedRoots, "Apply must not modify its input")

	next, out, err = Apply(nil, next, NewCommitRoot(answers(t, 1, 4, 3, 3)))
	require.NoError(t, err)
	assert.Equal(t, "new value: c6404bd648f1cae131eddd325a1e29fb e63009c40e83b5ca83c30b7e8da934a6", out.String())
	require.Len(t, next.CommittedRoots, 2)
	assert.True(t, merkle.Verify(next.CommittedRoots[1], answers(t, 1, 4, 3, 3)))
}

func TestCommitEncryptedSummary(t *testing.T) {
	p, q := big.NewInt(17), big.NewInt(19)
	action := NewCommitEncryptedSummary(p, q, answers(t, 1, 4, 2, 3))

	s := Empty()
	a, out, err := Apply(sample.NewSeededReader([]byte("summary")), s, action)
	require.NoError(t, err)
	require.Len(t, a.LastSummaryDigest, 32)
	assert.Equal(t, "new summary: "+hex.EncodeToString(a.LastSummaryDigest), out.Message)

	// same randomness, same digest
	b, _, err := Apply(sample.NewSeededReader([]byte("summary")), s, action)
	require.NoError(t, err)
	assert.Equal(t, a.LastSummaryDigest, b.LastSummaryDigest)

	// the digest is overwritten and the roots are kept
	withRoot, _, err := Apply(nil, a, NewCommitRoot(answers(t, 1)))
	require.NoError(t, err)
	c, _, err := Apply(rand.Reader, withRoot, action)
	require.NoError(t, err)
	assert.NotEqual(t, a.LastSummaryDigest, c.LastSummaryDigest)
	assert.Equal(t, withRoot.CommittedRoots, c.CommittedRoots)
}

func TestSummaryDigest(t *testing.T) {
	sk, err := paillier.NewSecretKeyFromPrimes(big.NewInt(17), big.NewInt(19))
	require.NoError(t, err)
	ct, err := sk.EncWithNonce(big.NewInt(42), new(saferith.Nat).SetUint64(5))
	require.NoError(t, err)

	digest := SummaryDigest([]*paillier.Ciphertext{ct})
	assert.Equal(t, "4a6d40f1ef958043f543ee7b2a480af8a35f0875adfa229bff73589d1656ff66", hex.EncodeToString(digest))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(SummaryDigest(nil)))
}

func TestApplyFailureLeavesState(t *testing.T) {
	s, _, err := Apply(nil, Empty(), NewCommitRoot(answers(t, 2, 2)))
	require.NoError(t, err)

	tests := []struct {
		name   string
		action Action
	}{
		{"empty items", NewCommitRoot(nil)},
		{"equal primes", NewCommitEncryptedSummary(big.NewInt(17), big.NewInt(17), answers(t, 1))},
		{"item out of range", NewCommitEncryptedSummary(big.NewInt(17), big.NewInt(19), []token.Token{token.FromUint64(400)})},
		{"missing payload", Action{Kind: KindCommitRoot}},
		{"two payloads", Action{Kind: KindCommitRoot, CommitRoot: &CommitRoot{}, CommitEncryptedSummary: &CommitEncryptedSummary{}}},
		{"unknown kind", Action{Kind: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := Apply(rand.Reader, s, tt.action)
			require.Error(t, err)
			var contractErr *Error
			require.ErrorAs(t, err, &contractErr)
			assert.Equal(t, tt.action.Kind, contractErr.Kind)
			assert.True(t, next.Equal(s))
		})
	}

	_, _, err = Apply(nil, s, NewCommitRoot(nil))
	assert.ErrorIs(t, err, merkle.ErrEmpty)
	_, _, err = Apply(nil, s, NewCommitEncryptedSummary(big.NewInt(17), big.NewInt(17), nil))
	assert.ErrorIs(t, err, paillier.ErrInvalidPrime)
}

func TestCommitEncryptedSummaryWithoutRandomness(t *testing.T) {
	s, _, err := Apply(nil, Empty(), NewCommitRoot(answers(t, 2, 2)))
	require.NoError(t, err)

	for _, items := range [][]token.Token{answers(t, 1, 4), nil} {
		next, _, err := Apply(nil, s, NewCommitEncryptedSummary(big.NewInt(17), big.NewInt(19), items))
		require.ErrorIs(t, err, ErrInvalidAction)
		var contractErr *Error
		require.ErrorAs(t, err, &contractErr)
		assert.Equal(t, KindCommitEncryptedSummary, contractErr.Kind)
		assert.True(t, next.Equal(s))
	}
}

func TestStateEncoding(t *testing.T) {
	states := []State{Empty()}
	s := Empty()
	for i := uint64(0); i < 3; i++ {
		var err error
		s, _, err = Apply(nil, s, NewCommitRoot(answers(t, i, 1, 2)))
		require.NoError(t, err)
		states = append(states, s)
	}
	p, q := test.PaillierPrimes()
	s, _, err := Apply(rand.Reader, s, NewCommitEncryptedSummary(p, q, answers(t, 4, 0)))
	require.NoError(t, err)
	states = append(states, s)

	for _, s := range states {
		data, err := s.MarshalBinary()
		require.NoError(t, err)
		var back State
		require.NoError(t, back.UnmarshalBinary(data))
		assert.True(t, back.Equal(s))

		again, err := back.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, data, again, "encoding must be canonical")
	}

	var back State
	assert.Error(t, back.UnmarshalBinary([]byte{0xff}))
}

func TestStateDigest(t *testing.T) {
	empty, err := Empty().Digest()
	require.NoError(t, err)
	assert.Len(t, empty, 32)

	s, _, err := Apply(nil, Empty(), NewCommitRoot(answers(t, 1)))
	require.NoError(t, err)
	d1, err := s.Digest()
	require.NoError(t, err)
	d2, err := s.Clone().Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, empty, d1)
}

func TestActionEncoding(t *testing.T) {
	p, q := test.PaillierPrimes()
	actions := []Action{
		NewCommitRoot(answers(t, 1, 4, 2, 3)),
		NewCommitRoot([]token.Token{{Hi: 7, Lo: 9}}),
		NewCommitEncryptedSummary(p, q, answers(t, 0, 0)),
	}
	for _, a := range actions {
		data, err := a.MarshalBinary()
		require.NoError(t, err)
		var back Action
		require.NoError(t, back.UnmarshalBinary(data))
		require.Equal(t, a.Kind, back.Kind)
		switch a.Kind {
		case KindCommitRoot:
			assert.Equal(t, a.CommitRoot.Items, back.CommitRoot.Items)
		case KindCommitEncryptedSummary:
			assert.Equal(t, 0, a.CommitEncryptedSummary.P.Cmp(back.CommitEncryptedSummary.P))
			assert.Equal(t, 0, a.CommitEncryptedSummary.Q.Cmp(back.CommitEncryptedSummary.Q))
			assert.Equal(t, a.CommitEncryptedSummary.Items, back.CommitEncryptedSummary.Items)
		}
	}

	_, err := Action{Kind: 3}.MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidAction)

	data, err := encMode.Marshal(&actionWire{Kind: 7})
	require.NoError(t, err)
	var back Action
	assert.ErrorIs(t, back.UnmarshalBinary(data), ErrInvalidAction)
}

func TestInstance(t *testing.T) {
	in := NewInstance(Empty(), rand.Reader)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		action := NewCommitRoot(answers(t, uint64(i%5)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := in.Submit(action)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, in.State().CommittedRoots, 16)

	_, err := in.Submit(NewCommitRoot(nil))
	assert.Error(t, err)
	assert.Len(t, in.State().CommittedRoots, 16)

	// the returned state is a copy
	s := in.State()
	s.CommittedRoots[0] = merkle.Node{}
	assert.NotEqual(t, merkle.Node{}, in.State().CommittedRoots[0])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CommitRoot", KindCommitRoot.String())
	assert.Equal(t, "CommitEncryptedSummary", KindCommitEncryptedSummary.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
