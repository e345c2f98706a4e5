// Package circuit evaluates arithmetic over encrypted bit vectors using only
// boolean gates.
//
// A backend encrypts single bits and evaluates AND, OR, XOR and NOT on them.
// On top of these gates this package builds a ripple carry adder, two's
// complement subtraction, multiplication by a plaintext scalar, and a masked
// equality test. Words are little-endian: bit 0 is the least significant.
package circuit

import (
	"errors"
	"fmt"

	"github.com/meetup-psi/meetup/internal/params"
	"github.com/meetup-psi/meetup/pkg/token"
)

var (
	ErrWidthMismatch = errors.New("circuit: word widths differ")
	ErrRange         = errors.New("circuit: value does not fit in word")
	ErrEvenMask      = errors.New("circuit: mask must be odd")
)

// Bit is an encrypted bit. Its concrete type is owned by the backend.
type Bit interface{}

// Word is a fixed width sequence of encrypted bits, least significant first.
type Word []Bit

// Gates evaluates boolean gates over encrypted bits.
type Gates interface {
	And(a, b Bit) (Bit, error)
	Or(a, b Bit) (Bit, error)
	Xor(a, b Bit) (Bit, error)
	Not(a Bit) (Bit, error)
}

// Encrypter encrypts a single plaintext bit, 0 or 1.
type Encrypter interface {
	Encrypt(b uint) (Bit, error)
}

// Decrypter recovers the plaintext of an encrypted bit.
type Decrypter interface {
	Decrypt(b Bit) (uint, error)
}

// Constants are encrypted words of a known value, supplied by the key holder
// so that the evaluator can build circuits without an encryption key.
type Constants struct {
	// Zero encrypts 0.
	Zero Word
	// One encrypts 1.
	One Word
}

// NewConstants encrypts the words 0 and 1 with the given width.
func NewConstants(e Encrypter, width int) (Constants, error) {
	zero, err := EncryptWord(e, token.Zero, width)
	if err != nil {
		return Constants{}, err
	}
	one, err := EncryptWord(e, token.FromUint64(1), width)
	if err != nil {
		return Constants{}, err
	}
	return Constants{Zero: zero, One: one}, nil
}

// Width returns the width of the constants, or an error when they disagree.
func (c Constants) Width() (int, error) {
	if len(c.Zero) == 0 || len(c.Zero) != len(c.One) {
		return 0, fmt.Errorf("%w: constants have widths %d and %d", ErrWidthMismatch, len(c.Zero), len(c.One))
	}
	return len(c.Zero), nil
}

// EncryptWord encrypts the width low bits of v.
func EncryptWord(e Encrypter, v token.Token, width int) (Word, error) {
	if width <= 0 || width > params.BitsToken {
		return nil, fmt.Errorf("%w: invalid width %d", ErrRange, width)
	}
	if v.BitLen() > width {
		return nil, fmt.Errorf("%w: %v needs %d bits, word has %d", ErrRange, v, v.BitLen(), width)
	}
	w := make(Word, width)
	for i := range w {
		b, err := e.Encrypt(v.Bit(i))
		if err != nil {
			return nil, fmt.Errorf("circuit: encrypt bit %d: %w", i, err)
		}
		w[i] = b
	}
	return w, nil
}

// DecryptWord decrypts every bit of w.
func DecryptWord(d Decrypter, w Word) (token.Token, error) {
	if len(w) > params.BitsToken {
		return token.Zero, fmt.Errorf("%w: word has %d bits", ErrRange, len(w))
	}
	var t token.Token
	for i := len(w) - 1; i >= 0; i-- {
		b, err := d.Decrypt(w[i])
		if err != nil {
			return token.Zero, fmt.Errorf("circuit: decrypt bit %d: %w", i, err)
		}
		if b > 1 {
			return token.Zero, fmt.Errorf("circuit: bit %d decrypted to %d", i, b)
		}
		// cannot overflow, the word has at most BitsToken bits
		t, _ = t.MulAdd(2, uint64(b))
	}
	return t, nil
}

func checkWidths(a, b Word) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d and %d", ErrWidthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return fmt.Errorf("%w: empty word", ErrWidthMismatch)
	}
	return nil
}
