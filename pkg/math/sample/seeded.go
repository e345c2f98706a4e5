package sample

import (
	"io"

	"github.com/meetup-psi/meetup/pkg/hash"
	"golang.org/x/crypto/chacha20"
)

type seededReader struct {
	cipher *chacha20.Cipher
}

// NewSeededReader returns a deterministic stream of pseudo random bytes derived
// from seed, for tests and reproducible replays.
//
// The stream is the ChaCha20 keystream under a key hashed from the seed, so
// equal seeds always produce equal streams.
func NewSeededReader(seed []byte) io.Reader {
	h := hash.New("sample.SeededReader")
	_ = h.WriteAny(seed)
	key := h.Sum()[:chacha20.KeySize]
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		// only returned for invalid key or nonce sizes
		panic(err)
	}
	return &seededReader{cipher: c}
}

func (r *seededReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}
