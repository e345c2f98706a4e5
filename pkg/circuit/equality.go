package circuit

import "fmt"

// EqualityMask returns (x - y)⋅r modulo 2ʷ, which decrypts to 0 exactly when
// x = y.
//
// r must be odd, so that it is invertible modulo 2ʷ; an even mask could map a
// non zero difference to 0. Mismatching inputs decrypt to the difference
// scaled by r, hiding its magnitude.
func EqualityMask(g Gates, x, y Word, r uint64, c Constants) (Word, error) {
	if r&1 == 0 {
		return nil, ErrEvenMask
	}
	width, err := c.Width()
	if err != nil {
		return nil, err
	}
	if len(x) != width {
		return nil, fmt.Errorf("%w: word has %d bits, constants %d", ErrWidthMismatch, len(x), width)
	}
	diff, err := Subtract(g, x, y, c.One[0])
	if err != nil {
		return nil, err
	}
	return ScalarMultiply(g, diff, r, c.Zero)
}
