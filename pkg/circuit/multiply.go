package circuit

import "fmt"

// Double returns 2⋅A modulo 2ʷ, by adding A to itself.
func Double(g Gates, a Word, zero Bit) (Word, error) {
	out, _, err := Add(g, a, a, zero)
	return out, err
}

// ScalarMultiply returns k⋅base modulo 2ʷ, for a plaintext scalar k.
//
// The bits of k are scanned from the least significant one, adding the
// running multiple of base to the accumulator whenever the bit is set and then
// doubling it. zero must encrypt 0 and have the same width as base; its first
// bit is used as the zero carry. Bits of k at or above the width do not change
// the result and are skipped.
func ScalarMultiply(g Gates, base Word, k uint64, zero Word) (Word, error) {
	if err := checkWidths(base, zero); err != nil {
		return nil, err
	}
	acc := append(Word(nil), zero...)
	multiple := base
	for i := 0; i < len(base) && i < 64 && k>>uint(i) != 0; i++ {
		var err error
		if (k>>uint(i))&1 == 1 {
			if acc, _, err = Add(g, acc, multiple, zero[0]); err != nil {
				return nil, fmt.Errorf("circuit: scalar bit %d: %w", i, err)
			}
		}
		if i+1 < len(base) && k>>uint(i+1) != 0 {
			if multiple, err = Double(g, multiple, zero[0]); err != nil {
				return nil, fmt.Errorf("circuit: double %d: %w", i, err)
			}
		}
	}
	return acc, nil
}
