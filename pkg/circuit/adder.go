package circuit

import "fmt"

// FullAdder adds three bits.
//
//	sum   = (a ⊕ b) ⊕ c
//	carry = (a ∧ b) ∨ ((a ⊕ b) ∧ c)
func FullAdder(g Gates, a, b, c Bit) (sum, carry Bit, err error) {
	ab, err := g.Xor(a, b)
	if err != nil {
		return nil, nil, err
	}
	if sum, err = g.Xor(ab, c); err != nil {
		return nil, nil, err
	}
	both, err := g.And(a, b)
	if err != nil {
		return nil, nil, err
	}
	propagate, err := g.And(ab, c)
	if err != nil {
		return nil, nil, err
	}
	if carry, err = g.Or(both, propagate); err != nil {
		return nil, nil, err
	}
	return sum, carry, nil
}

// Add returns A + B + carryIn modulo 2ʷ, and the carry out of the top bit.
func Add(g Gates, a, b Word, carryIn Bit) (Word, Bit, error) {
	if err := checkWidths(a, b); err != nil {
		return nil, nil, err
	}
	out := make(Word, len(a))
	carry := carryIn
	for i := range a {
		var err error
		out[i], carry, err = FullAdder(g, a[i], b[i], carry)
		if err != nil {
			return nil, nil, fmt.Errorf("circuit: add bit %d: %w", i, err)
		}
	}
	return out, carry, nil
}

// Not flips every bit of a.
func Not(g Gates, a Word) (Word, error) {
	out := make(Word, len(a))
	for i := range a {
		var err error
		if out[i], err = g.Not(a[i]); err != nil {
			return nil, fmt.Errorf("circuit: not bit %d: %w", i, err)
		}
	}
	return out, nil
}

// Subtract returns A + NOT(B) + borrowIn modulo 2ʷ.
//
// With borrowIn an encryption of 1 this is the two's complement difference
// A - B. With an encryption of 0 the result is A - B - 1.
func Subtract(g Gates, a, b Word, borrowIn Bit) (Word, error) {
	if err := checkWidths(a, b); err != nil {
		return nil, err
	}
	notB, err := Not(g, b)
	if err != nil {
		return nil, err
	}
	diff, _, err := Add(g, a, notB, borrowIn)
	if err != nil {
		return nil, err
	}
	return diff, nil
}
