package circuit

import "sync/atomic"

// Counter wraps a Gates and counts the gates it evaluates.
// It is safe for concurrent use when the wrapped Gates is.
type Counter struct {
	Gates
	and, or, xor, not atomic.Uint64
}

// Counts is a snapshot of a Counter.
type Counts struct {
	And, Or, Xor, Not uint64
}

// Total returns the number of gates evaluated.
func (c Counts) Total() uint64 {
	return c.And + c.Or + c.Xor + c.Not
}

func NewCounter(g Gates) *Counter {
	return &Counter{Gates: g}
}

func (c *Counter) And(a, b Bit) (Bit, error) {
	c.and.Add(1)
	return c.Gates.And(a, b)
}

func (c *Counter) Or(a, b Bit) (Bit, error) {
	c.or.Add(1)
	return c.Gates.Or(a, b)
}

func (c *Counter) Xor(a, b Bit) (Bit, error) {
	c.xor.Add(1)
	return c.Gates.Xor(a, b)
}

func (c *Counter) Not(a Bit) (Bit, error) {
	c.not.Add(1)
	return c.Gates.Not(a)
}

// Counts returns the gates evaluated so far.
func (c *Counter) Counts() Counts {
	return Counts{
		And: c.and.Load(),
		Or:  c.or.Load(),
		Xor: c.xor.Load(),
		Not: c.not.Load(),
	}
}
