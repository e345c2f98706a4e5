package sample

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func readBits(rand io.Reader, buf []byte) error {
	var err error
	for i := 0; i < maxIterations; i++ {
		if _, err = io.ReadFull(rand, buf); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrMaxIterations, err)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	for i := 0; i < maxIterations; i++ {
		if err := readBits(rand, buf); err != nil {
			return nil, err
		}
		// clear the excess top bits so that rejection succeeds half the time at least
		if excess := 8*len(buf) - n.BitLen(); excess > 0 {
			buf[0] &= 0xff >> uint(excess)
		}
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out, nil
		}
	}
	return nil, ErrMaxIterations
}

// UnitModN returns a u ∈ ℤₙˣ.
func UnitModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	for i := 0; i < maxIterations; i++ {
		u, err := ModN(rand, n)
		if err != nil {
			return nil, err
		}
		if u.IsUnit(n) == 1 {
			return u, nil
		}
	}
	return nil, ErrMaxIterations
}

// OddBits returns a uniformly random odd value of at most bits bits, for
// 1 <= bits <= 64.
func OddBits(rand io.Reader, bits int) (uint64, error) {
	if bits < 1 || bits > 64 {
		return 0, fmt.Errorf("sample: invalid bit length %d", bits)
	}
	var buf [8]byte
	if err := readBits(rand, buf[:]); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(buf[:])
	if bits < 64 {
		v &= 1<<uint(bits) - 1
	}
	return v | 1, nil
}
