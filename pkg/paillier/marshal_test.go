package paillier

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKey_MarshalBinary(t *testing.T) {
	pk, _ := testKey(t)
	data, err := pk.MarshalBinary()
	require.NoError(t, err, "failed to marshal")
	var pk2 PublicKey
	require.NoError(t, pk2.UnmarshalBinary(data), "failed to unmarshal")
	assert.True(t, pk.Equal(&pk2), "different pk after unmarshal")
}

func TestSecretKey_MarshalBinary(t *testing.T) {
	_, sk := testKey(t)
	data, err := sk.MarshalBinary()
	require.NoError(t, err, "failed to marshal")
	var sk2 SecretKey
	require.NoError(t, sk2.UnmarshalBinary(data), "failed to unmarshal")
	assert.Equal(t, 0, sk.P().Cmp(sk2.P()))
	assert.Equal(t, 0, sk.Q().Cmp(sk2.Q()))
	assert.Equal(t, 0, sk.Mu().Cmp(sk2.Mu()))
}

func TestCiphertext_MarshalBinary(t *testing.T) {
	pk, sk := testKey(t)
	ct, _, err := pk.Enc(rand.Reader, big.NewInt(12))
	require.NoError(t, err)

	data, err := ct.MarshalBinary()
	require.NoError(t, err)
	var ct2 Ciphertext
	require.NoError(t, ct2.UnmarshalBinary(data))
	assert.True(t, ct.Equal(&ct2))

	m, err := sk.Dec(&ct2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.Int64())

	assert.Error(t, ct2.UnmarshalBinary([]byte{0xff}))
}
