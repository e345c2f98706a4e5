package sample

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/meetup-psi/meetup/pkg/pool"
)

// MinPrimeBits is the smallest prime size Prime accepts.
//
// Below this, candidates could coincide with the sieving primes.
const MinPrimeBits = 32

var ErrPrimeSize = errors.New("sample: prime size too small")

// primes generates an array containing all the odd prime numbers < below
func primes(below uint32) []uint32 {
	sieve := make([]bool, below)
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	// there are approximately N / log N primes below N
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF)))
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

// The number of numbers to check after our initial prime guess
const sieveSize = 1 << 16

// The upper bound on the prime numbers used for sieving
const primeBound = 1 << 18

// the number of Miller-Rabin iterations, the same number Go uses internally.
const primalityIterations = 20

var thePrimes []uint32
var initPrimes sync.Once

var sievePool = sync.Pool{
	New: func() interface{} {
		sieve := make([]bool, sieveSize)
		return &sieve
	},
}

// tryPrime looks for a prime of exactly bits bits in a window after a random
// odd starting point, returning nil if the window holds none. Only a failing
// reader returns an error.
func tryPrime(rand io.Reader, bits int) (*big.Int, error) {
	initPrimes.Do(func() {
		thePrimes = primes(primeBound)
	})

	bytes := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaxIterations, err)
	}
	lastBits := uint(bits % 8)
	if lastBits == 0 {
		lastBits = 8
	}
	bytes[0] &= uint8(int(1<<lastBits) - 1)
	// Setting the top two bits makes the product of two such primes exactly
	// twice as long.
	if lastBits >= 2 {
		bytes[0] |= 0b11 << (lastBits - 2)
	} else {
		bytes[0] |= 1
		bytes[1] |= 0b1000_0000
	}
	bytes[len(bytes)-1] |= 1
	base := new(big.Int).SetBytes(bytes)

	// sieve[i] tracks the candidacy of base + i
	sievePtr := sievePool.Get().(*[]bool)
	sieve := *sievePtr
	defer sievePool.Put(sievePtr)
	for i := range sieve {
		sieve[i] = i%2 == 0
	}
	remainder := new(big.Int)
	for _, prime := range thePrimes {
		remainder.SetUint64(uint64(prime))
		remainder.Mod(base, remainder)
		r := int(remainder.Uint64())
		primeInt := int(prime)
		firstMultiple := primeInt - r
		if r == 0 {
			firstMultiple = 0
		}
		for i := firstMultiple; i < len(sieve); i += primeInt {
			sieve[i] = false
		}
	}

	p := new(big.Int)
	for delta := 0; delta < len(sieve); delta++ {
		if !sieve[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		if p.BitLen() > bits {
			return nil, nil
		}
		if p.ProbablyPrime(primalityIterations) {
			return p, nil
		}
	}
	return nil, nil
}

// Prime returns a random prime of exactly bits bits, whose top two bits are set.
func Prime(rand io.Reader, bits int) (*big.Int, error) {
	if bits < MinPrimeBits {
		return nil, fmt.Errorf("%w: %d < %d", ErrPrimeSize, bits, MinPrimeBits)
	}
	for i := 0; i < maxIterations; i++ {
		p, err := tryPrime(rand, bits)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, ErrMaxIterations
}

// Paillier generates two distinct primes of bits/2 bits each, so that
// n = p⋅q has exactly bits bits. The search runs on the pool's workers, and
// stops with ErrMaxIterations as soon as one of them fails to read from rand.
func Paillier(rand io.Reader, bits int, pl *pool.Pool) (p, q *saferith.Nat, err error) {
	half := bits / 2
	if half < MinPrimeBits {
		return nil, nil, fmt.Errorf("%w: modulus of %d bits", ErrPrimeSize, bits)
	}
	reader := pool.NewLockedReader(rand)
	for i := 0; i < maxIterations; i++ {
		results := pl.Search(2, func() interface{} {
			// You have to do this, because of how Go handles nil.
			c, err := tryPrime(reader, half)
			if err != nil {
				return err
			}
			if c != nil {
				return c
			}
			return nil
		})
		for _, r := range results {
			if err, ok := r.(error); ok {
				return nil, nil, err
			}
		}
		pBig, qBig := results[0].(*big.Int), results[1].(*big.Int)
		if pBig.Cmp(qBig) == 0 {
			continue
		}
		return new(saferith.Nat).SetBig(pBig, half), new(saferith.Nat).SetBig(qBig, half), nil
	}
	return nil, nil, ErrMaxIterations
}
