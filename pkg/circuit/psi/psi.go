// Package psi computes index aligned private set intersection with a gate
// circuit.
//
// The client, who holds the decryption key, encrypts its tokens bit by bit
// with EncryptItems, together with the constant words 0 and 1. The server
// computes, for every index, the masked equality (x[i] - y[i])⋅rᵢ with a fresh
// odd rᵢ, using only gates. The client decrypts the result with Matches: an
// index matches exactly when its word decrypts to 0.
//
// The mask only hides part of a mismatch. Multiplying by an odd rᵢ modulo 2ʷ
// preserves the number of trailing zero bits, so the client still learns the
// largest power of two dividing x[i] - y[i]. All higher bits are uniform.
package psi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/meetup-psi/meetup/pkg/circuit"
	"github.com/meetup-psi/meetup/pkg/math/sample"
	"github.com/meetup-psi/meetup/pkg/psi"
	"github.com/meetup-psi/meetup/pkg/token"
)

var (
	ErrRange     = errors.New("circuit/psi: token does not fit in word")
	ErrAlignment = psi.ErrAlignment
)

// EncryptedBitBatch holds one encrypted word per index.
type EncryptedBitBatch []circuit.Word

// Request is what the client sends to the server.
type Request struct {
	Width  int
	Items  EncryptedBitBatch
	Consts circuit.Constants
}

// EncryptItems encrypts every token as a word of the given width.
// A token needing more bits returns ErrRange.
func EncryptItems(e circuit.Encrypter, x []token.Token, width int) (*Request, error) {
	consts, err := circuit.NewConstants(e, width)
	if err != nil {
		return nil, err
	}
	items := make(EncryptedBitBatch, len(x))
	for i, t := range x {
		if t.BitLen() > width {
			return nil, fmt.Errorf("%w: item %d has %d bits, words have %d", ErrRange, i, t.BitLen(), width)
		}
		if items[i], err = circuit.EncryptWord(e, t, width); err != nil {
			return nil, fmt.Errorf("circuit/psi: item %d: %w", i, err)
		}
	}
	return &Request{Width: width, Items: items, Consts: consts}, nil
}

// Evaluate computes the masked equality of req.Items[i] and y[i] for every
// index.
//
// y[i] is lifted into the circuit as ScalarMultiply(One, y[i]), since the
// server holds no encryption key. Indices are evaluated concurrently, at most
// workers at a time (workers <= 0 means no limit). g must then be safe for
// concurrent use.
func Evaluate(ctx context.Context, rand io.Reader, g circuit.Gates, req *Request, y []token.Token, workers int) (EncryptedBitBatch, error) {
	if req == nil {
		return nil, errors.New("circuit/psi: nil request")
	}
	if len(req.Items) != len(y) {
		return nil, &psi.AlignmentError{Want: len(y), Got: len(req.Items)}
	}
	width, err := req.Consts.Width()
	if err != nil {
		return nil, err
	}
	if width != req.Width || width > 64 {
		return nil, fmt.Errorf("%w: request width %d, constants %d", circuit.ErrWidthMismatch, req.Width, width)
	}

	// masks are sampled up front, so rand is only read from this goroutine
	masks := make([]uint64, len(y))
	for i, t := range y {
		if t.BitLen() > width {
			return nil, fmt.Errorf("%w: item %d has %d bits, words have %d", ErrRange, i, t.BitLen(), width)
		}
		if masks[i], err = sample.OddBits(rand, width); err != nil {
			return nil, fmt.Errorf("circuit/psi: sample mask %d: %w", i, err)
		}
	}

	out := make(EncryptedBitBatch, len(y))
	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i := range y {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(req.Items[i]) != width {
				return fmt.Errorf("%w: item %d has %d bits, constants %d", circuit.ErrWidthMismatch, i, len(req.Items[i]), width)
			}
			// y fits in width <= 64 bits
			v, _ := y[i].Uint64()
			ey, err := circuit.ScalarMultiply(g, req.Consts.One, v, req.Consts.Zero)
			if err != nil {
				return fmt.Errorf("circuit/psi: lift item %d: %w", i, err)
			}
			masked, err := circuit.EqualityMask(g, req.Items[i], ey, masks[i], req.Consts)
			if err != nil {
				return fmt.Errorf("circuit/psi: item %d: %w", i, err)
			}
			out[i] = masked
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Matches decrypts every word, reporting index i when it decrypts to 0.
func Matches(d circuit.Decrypter, out EncryptedBitBatch) (psi.MatchSet, error) {
	matches := psi.MatchSet{}
	for i, w := range out {
		v, err := circuit.DecryptWord(d, w)
		if err != nil {
			return nil, fmt.Errorf("circuit/psi: item %d: %w", i, err)
		}
		if v.IsZero() {
			matches = append(matches, i)
		}
	}
	return matches, nil
}
