// Package token encodes labeled items (an identifier and an answer) as fixed
// width unsigned integers.
//
// A token is identifier⋅K + answer, where the base K is strictly larger than
// any answer. The encoding is injective over that domain, so two tokens are
// equal exactly when both the identifier and the answer agree.
package token

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/meetup-psi/meetup/internal/params"
)

var (
	ErrTokenRange = errors.New("token: value out of range")
	ErrBase       = errors.New("token: base must be at least 2")
)

// Token is an unsigned 128-bit integer.
type Token struct {
	Hi, Lo uint64
}

// Zero is the token used for padding.
var Zero Token

// FromUint64 returns the token holding v.
func FromUint64(v uint64) Token {
	return Token{Lo: v}
}

// Encode returns id⋅base + answer.
func Encode(id, answer, base uint64) (Token, error) {
	return EncodeWide(FromUint64(id), answer, base)
}

// EncodeWide is Encode for identifiers that do not fit in 64 bits.
func EncodeWide(id Token, answer, base uint64) (Token, error) {
	if base < 2 {
		return Token{}, ErrBase
	}
	if answer >= base {
		return Token{}, fmt.Errorf("%w: answer %d must be smaller than base %d", ErrTokenRange, answer, base)
	}
	return id.MulAdd(base, answer)
}

// Decode inverts EncodeWide.
func Decode(t Token, base uint64) (id Token, answer uint64, err error) {
	if base < 2 {
		return Token{}, 0, ErrBase
	}
	id, answer = t.DivMod(base)
	return id, answer, nil
}

// FromAnswers encodes an ordered questionnaire, using the position of each
// answer as its identifier.
func FromAnswers(answers []uint64, base uint64) ([]Token, error) {
	out := make([]Token, len(answers))
	for i, a := range answers {
		t, err := Encode(uint64(i), a, base)
		if err != nil {
			return nil, fmt.Errorf("answer %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

// MulAdd returns t⋅k + a, or ErrTokenRange if the result needs more than 128 bits.
func (t Token) MulAdd(k, a uint64) (Token, error) {
	hiCarry, hi := bits.Mul64(t.Hi, k)
	loHi, lo := bits.Mul64(t.Lo, k)
	hi, c1 := bits.Add64(hi, loHi, 0)
	lo, c2 := bits.Add64(lo, a, 0)
	hi, c3 := bits.Add64(hi, 0, c2)
	if hiCarry != 0 || c1 != 0 || c3 != 0 {
		return Token{}, fmt.Errorf("%w: %v⋅%d + %d overflows %d bits", ErrTokenRange, t, k, a, params.BitsToken)
	}
	return Token{Hi: hi, Lo: lo}, nil
}

// DivMod returns the quotient and remainder of t by k. k must not be 0.
func (t Token) DivMod(k uint64) (Token, uint64) {
	qHi, r := t.Hi/k, t.Hi%k
	qLo, r := bits.Div64(r, t.Lo, k)
	return Token{Hi: qHi, Lo: qLo}, r
}

// Uint64 returns t as a uint64, and whether it fit.
func (t Token) Uint64() (uint64, bool) {
	return t.Lo, t.Hi == 0
}

func (t Token) IsZero() bool {
	return t.Hi == 0 && t.Lo == 0
}

// Cmp returns -1, 0 or 1 as t is less than, equal to, or greater than u.
func (t Token) Cmp(u Token) int {
	switch {
	case t.Hi < u.Hi:
		return -1
	case t.Hi > u.Hi:
		return 1
	case t.Lo < u.Lo:
		return -1
	case t.Lo > u.Lo:
		return 1
	}
	return 0
}

// BitLen returns the number of significant bits in t.
func (t Token) BitLen() int {
	if t.Hi != 0 {
		return 64 + bits.Len64(t.Hi)
	}
	return bits.Len64(t.Lo)
}

// Bit returns bit i of t, bit 0 being the least significant.
func (t Token) Bit(i int) uint {
	switch {
	case i < 0 || i >= params.BitsToken:
		return 0
	case i < 64:
		return uint(t.Lo>>uint(i)) & 1
	default:
		return uint(t.Hi>>uint(i-64)) & 1
	}
}

// Bytes returns the 16 byte big-endian representation of t.
func (t Token) Bytes() [params.BytesToken]byte {
	var out [params.BytesToken]byte
	binary.BigEndian.PutUint64(out[:8], t.Hi)
	binary.BigEndian.PutUint64(out[8:], t.Lo)
	return out
}

// FromBytes reads a big-endian token of at most 16 bytes.
func FromBytes(data []byte) (Token, error) {
	if len(data) > params.BytesToken {
		return Token{}, fmt.Errorf("%w: %d bytes", ErrTokenRange, len(data))
	}
	var buf [params.BytesToken]byte
	copy(buf[params.BytesToken-len(data):], data)
	return Token{
		Hi: binary.BigEndian.Uint64(buf[:8]),
		Lo: binary.BigEndian.Uint64(buf[8:]),
	}, nil
}

// Big returns t as a big.Int.
func (t Token) Big() *big.Int {
	b := t.Bytes()
	return new(big.Int).SetBytes(b[:])
}

// FromBig converts a non-negative integer of at most 128 bits.
func FromBig(x *big.Int) (Token, error) {
	if x.Sign() < 0 || x.BitLen() > params.BitsToken {
		return Token{}, fmt.Errorf("%w: %v", ErrTokenRange, x)
	}
	return FromBytes(x.Bytes())
}

// Parse reads a token written in base 10.
func Parse(s string) (Token, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Token{}, fmt.Errorf("token: invalid number %q", s)
	}
	return FromBig(x)
}

// String returns the base 10 representation of t.
func (t Token) String() string {
	if t.Hi == 0 {
		return fmt.Sprintf("%d", t.Lo)
	}
	return t.Big().String()
}
