package psi_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetup-psi/meetup/internal/test"
	"github.com/meetup-psi/meetup/pkg/paillier"
	"github.com/meetup-psi/meetup/pkg/pool"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
)

func tokens(vs ...uint64) []token.Token {
	out := make([]token.Token, len(vs))
	for i, v := range vs {
		out[i] = token.FromUint64(v)
	}
	return out
}

func intersect(t *testing.T, x, y []token.Token, mask bool, pl *pool.Pool) psi.MatchSet {
	sk := test.PaillierSecretKey()
	cx, err := psi.EncryptItems(rand.Reader, sk.PublicKey, x, pl)
	require.NoError(t, err)
	diffs, err := psi.Evaluate(rand.Reader, sk.PublicKey, cx, y, mask, pl)
	require.NoError(t, err)
	require.Len(t, diffs, len(x))
	matches, err := psi.Matches(sk, diffs, pl)
	require.NoError(t, err)
	return matches
}

func TestIntersection(t *testing.T) {
	tests := []struct {
		name string
		x, y []token.Token
		want psi.MatchSet
	}{
		{"partial", tokens(0, 5, 13, 18), tokens(0, 9, 13, 20), psi.MatchSet{0, 2}},
		{"identical", tokens(1, 9, 12, 18), tokens(1, 9, 12, 18), psi.MatchSet{0, 1, 2, 3}},
		{"one changed", tokens(1, 9, 12, 18), tokens(1, 9, 13, 18), psi.MatchSet{0, 1, 3}},
		{"disjoint", tokens(1, 2, 3), tokens(4, 5, 6), psi.MatchSet{}},
		{"empty", nil, nil, psi.MatchSet{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mask := range []bool{false, true} {
				assert.Equal(t, tt.want, intersect(t, tt.x, tt.y, mask, nil), "mask=%v", mask)
			}
		})
	}
}

func TestIntersectionPool(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	x := make([]token.Token, 32)
	y := make([]token.Token, 32)
	var want psi.MatchSet
	for i := range x {
		x[i] = token.FromUint64(uint64(5*i + 1))
		y[i] = x[i]
		if i%3 == 0 {
			y[i] = token.FromUint64(uint64(5*i + 2))
			continue
		}
		want = append(want, i)
	}
	assert.Equal(t, want, intersect(t, x, y, true, pl))
}

func TestUnmaskedDifference(t *testing.T) {
	sk := test.PaillierSecretKey()
	cx, err := psi.EncryptItems(rand.Reader, sk.PublicKey, tokens(20, 3), nil)
	require.NoError(t, err)
	diffs, err := psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(7, 3), false, nil)
	require.NoError(t, err)

	d, err := sk.Dec(diffs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(13), d.Int64())

	// 3 - 7 wraps around to N - 4
	diffs, err = psi.Evaluate(rand.Reader, sk.PublicKey, cx[1:], tokens(7), false, nil)
	require.NoError(t, err)
	d, err = sk.Dec(diffs[0])
	require.NoError(t, err)
	want := new(big.Int).Sub(sk.N(), big.NewInt(4))
	assert.Equal(t, 0, want.Cmp(d))
}

func TestMaskedDifferenceIsNotRevealed(t *testing.T) {
	sk := test.PaillierSecretKey()
	cx, err := psi.EncryptItems(rand.Reader, sk.PublicKey, tokens(20), nil)
	require.NoError(t, err)
	diffs, err := psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(7), true, nil)
	require.NoError(t, err)
	d, err := sk.Dec(diffs[0])
	require.NoError(t, err)
	assert.NotEqual(t, int64(13), d.Int64())
	assert.NotEqual(t, 0, d.Sign())
}

func TestEvaluateDoesNotModifyInput(t *testing.T) {
	sk := test.PaillierSecretKey()
	cx, err := psi.EncryptItems(rand.Reader, sk.PublicKey, tokens(4, 8), nil)
	require.NoError(t, err)
	before := []*paillier.Ciphertext{cx[0].Clone(), cx[1].Clone()}
	_, err = psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(4, 9), true, nil)
	require.NoError(t, err)
	assert.True(t, before[0].Equal(cx[0]))
	assert.True(t, before[1].Equal(cx[1]))
}

func TestAlignment(t *testing.T) {
	sk := test.PaillierSecretKey()
	cx, err := psi.EncryptItems(rand.Reader, sk.PublicKey, tokens(1, 2, 3), nil)
	require.NoError(t, err)
	_, err = psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(1, 2), false, nil)
	require.ErrorIs(t, err, psi.ErrAlignment)

	var alignment *psi.AlignmentError
	require.ErrorAs(t, err, &alignment)
	assert.Equal(t, 2, alignment.Want)
	assert.Equal(t, 3, alignment.Got)
}

func TestRange(t *testing.T) {
	sk := test.PaillierSecretKey()
	cx := psi.EncryptedItemBatch{paillier.CiphertextFromBig(big.NewInt(0))}
	_, err := psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(1), false, nil)
	assert.ErrorIs(t, err, psi.ErrRange)

	nSquared := new(big.Int).Mul(sk.N(), sk.N())
	cx = psi.EncryptedItemBatch{paillier.CiphertextFromBig(nSquared)}
	_, err = psi.Evaluate(rand.Reader, sk.PublicKey, cx, tokens(1), false, nil)
	assert.ErrorIs(t, err, psi.ErrRange)
}

func TestMatchSetContains(t *testing.T) {
	m := psi.MatchSet{0, 2, 7}
	assert.True(t, m.Contains(2))
	assert.True(t, m.Contains(7))
	assert.False(t, m.Contains(3))
	assert.False(t, psi.MatchSet{}.Contains(0))
}
