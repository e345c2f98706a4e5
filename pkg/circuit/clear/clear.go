// Package clear is a circuit backend whose bits are not encrypted at all.
//
// It evaluates the same circuits as an encrypted backend would, and serves as
// the reference for testing them and for counting gates.
package clear

import (
	"errors"
	"fmt"

	"github.com/meetup-psi/meetup/pkg/circuit"
)

var ErrForeignBit = errors.New("clear: bit was not produced by this backend")

// Bit is a plaintext bit.
type Bit bool

// Backend implements circuit.Gates, circuit.Encrypter and circuit.Decrypter.
type Backend struct{}

var (
	_ circuit.Gates     = Backend{}
	_ circuit.Encrypter = Backend{}
	_ circuit.Decrypter = Backend{}
)

func bit(b circuit.Bit) (Bit, error) {
	v, ok := b.(Bit)
	if !ok {
		return false, fmt.Errorf("%w: %T", ErrForeignBit, b)
	}
	return v, nil
}

func pair(a, b circuit.Bit) (Bit, Bit, error) {
	x, err := bit(a)
	if err != nil {
		return false, false, err
	}
	y, err := bit(b)
	if err != nil {
		return false, false, err
	}
	return x, y, nil
}

func (Backend) And(a, b circuit.Bit) (circuit.Bit, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	return Bit(x && y), nil
}

func (Backend) Or(a, b circuit.Bit) (circuit.Bit, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	return Bit(x || y), nil
}

func (Backend) Xor(a, b circuit.Bit) (circuit.Bit, error) {
	x, y, err := pair(a, b)
	if err != nil {
		return nil, err
	}
	return Bit(x != y), nil
}

func (Backend) Not(a circuit.Bit) (circuit.Bit, error) {
	x, err := bit(a)
	if err != nil {
		return nil, err
	}
	return Bit(!x), nil
}

// Encrypt returns b as a Bit. Any value other than 0 or 1 is rejected.
func (Backend) Encrypt(b uint) (circuit.Bit, error) {
	switch b {
	case 0:
		return Bit(false), nil
	case 1:
		return Bit(true), nil
	}
	return nil, fmt.Errorf("clear: cannot encrypt %d as a bit", b)
}

func (Backend) Decrypt(b circuit.Bit) (uint, error) {
	x, err := bit(b)
	if err != nil {
		return 0, err
	}
	if x {
		return 1, nil
	}
	return 0, nil
}
