package test

import (
	"math/big"

	"github.com/meetup-psi/meetup/pkg/paillier"
)

// Fixed 256-bit primes, so that key setup in tests is instant.
var (
	paillierP, _ = new(big.Int).SetString("111927851988360893319259662593235230375504026159278527685696709279539605945473", 10)
	paillierQ, _ = new(big.Int).SetString("93701133909962698993439296777424832149198772354257376224376652534059727575521", 10)
)

// PaillierPrimes returns copies of the primes behind PaillierSecretKey.
func PaillierPrimes() (p, q *big.Int) {
	return new(big.Int).Set(paillierP), new(big.Int).Set(paillierQ)
}

// PaillierSecretKey returns a 512-bit test key. It panics on failure, which
// would mean the fixed primes were altered.
func PaillierSecretKey() *paillier.SecretKey {
	sk, err := paillier.NewSecretKeyFromPrimes(paillierP, paillierQ)
	if err != nil {
		panic(err)
	}
	return sk
}
