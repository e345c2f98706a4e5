// Package tfhe is a circuit backend encrypting every bit as a TFHE LWE
// ciphertext, with a bootstrap after every gate.
//
// The key holder keeps a SecretKey, which encrypts and decrypts bits, and
// hands its EvaluationKey to the evaluating party. An Evaluator built from
// that key runs AND, OR, XOR and NOT on ciphertexts it cannot read.
package tfhe

import (
	"errors"
	"fmt"
	"sync"

	gotfhe "github.com/sp301415/tfhe-go/tfhe"

	"github.com/meetup-psi/meetup/pkg/circuit"
)

var ErrForeignBit = errors.New("tfhe: bit is not a TFHE ciphertext")

// Bit is an encrypted bit.
type Bit = gotfhe.LWECiphertext[uint32]

// DefaultParameters are the boolean gate parameters of tfhe-go, with 128 bits
// of security.
var DefaultParameters = gotfhe.ParamsBinary

// SecretKey encrypts and decrypts bits. It is safe for concurrent use.
type SecretKey struct {
	params gotfhe.Parameters[uint32]

	mtx sync.Mutex
	enc *gotfhe.BinaryEncryptor
}

// EvaluationKey lets an Evaluator bootstrap gates without decrypting.
type EvaluationKey struct {
	params gotfhe.Parameters[uint32]
	key    gotfhe.EvaluationKey[uint32]
}

var (
	_ circuit.Encrypter = (*SecretKey)(nil)
	_ circuit.Decrypter = (*SecretKey)(nil)
	_ circuit.Gates     = (*Evaluator)(nil)
)

// KeyGen samples a fresh secret key for the given parameters.
//
// The key and every encryption draw their randomness from the CSPRNG of
// tfhe-go, which is seeded from crypto/rand.
func KeyGen(lit gotfhe.ParametersLiteral[uint32]) *SecretKey {
	params := lit.Compile()
	return &SecretKey{
		params: params,
		enc:    gotfhe.NewBinaryEncryptor(params),
	}
}

// EvaluationKey generates the bootstrapping and key switching keys. This is
// the expensive part of key generation.
func (sk *SecretKey) EvaluationKey() EvaluationKey {
	sk.mtx.Lock()
	defer sk.mtx.Unlock()
	return EvaluationKey{params: sk.params, key: sk.enc.GenEvaluationKeyParallel()}
}

// Encrypt returns a fresh encryption of b, which must be 0 or 1.
func (sk *SecretKey) Encrypt(b uint) (circuit.Bit, error) {
	if b > 1 {
		return nil, fmt.Errorf("tfhe: cannot encrypt %d as a bit", b)
	}
	sk.mtx.Lock()
	defer sk.mtx.Unlock()
	return sk.enc.EncryptLWEBool(b == 1), nil
}

func (sk *SecretKey) Decrypt(b circuit.Bit) (uint, error) {
	ct, err := bit(b)
	if err != nil {
		return 0, err
	}
	sk.mtx.Lock()
	defer sk.mtx.Unlock()
	if sk.enc.DecryptLWEBool(ct) {
		return 1, nil
	}
	return 0, nil
}

// Evaluator evaluates gates over TFHE ciphertexts.
//
// tfhe-go evaluators hold scratch buffers, so each goroutine works on its own
// shallow copy. An Evaluator is therefore safe for concurrent use.
type Evaluator struct {
	evaluators sync.Pool
}

// NewEvaluator builds an Evaluator from a key holder's evaluation key.
func NewEvaluator(evk EvaluationKey) *Evaluator {
	base := gotfhe.NewBinaryEvaluator(evk.params, evk.key)
	e := &Evaluator{}
	e.evaluators.New = func() interface{} {
		return base.ShallowCopy()
	}
	return e
}

func bit(b circuit.Bit) (Bit, error) {
	ct, ok := b.(Bit)
	if !ok {
		return Bit{}, fmt.Errorf("%w: %T", ErrForeignBit, b)
	}
	return ct, nil
}

func (e *Evaluator) gate(a, b circuit.Bit, f func(eval *gotfhe.BinaryEvaluator, x, y Bit) Bit) (circuit.Bit, error) {
	x, err := bit(a)
	if err != nil {
		return nil, err
	}
	y, err := bit(b)
	if err != nil {
		return nil, err
	}
	eval := e.evaluators.Get().(*gotfhe.BinaryEvaluator)
	defer e.evaluators.Put(eval)
	return f(eval, x, y), nil
}

func (e *Evaluator) And(a, b circuit.Bit) (circuit.Bit, error) {
	return e.gate(a, b, func(eval *gotfhe.BinaryEvaluator, x, y Bit) Bit { return eval.AND(x, y) })
}

func (e *Evaluator) Or(a, b circuit.Bit) (circuit.Bit, error) {
	return e.gate(a, b, func(eval *gotfhe.BinaryEvaluator, x, y Bit) Bit { return eval.OR(x, y) })
}

func (e *Evaluator) Xor(a, b circuit.Bit) (circuit.Bit, error) {
	return e.gate(a, b, func(eval *gotfhe.BinaryEvaluator, x, y Bit) Bit { return eval.XOR(x, y) })
}

// Not needs no bootstrap, it negates the ciphertext.
func (e *Evaluator) Not(a circuit.Bit) (circuit.Bit, error) {
	x, err := bit(a)
	if err != nil {
		return nil, err
	}
	eval := e.evaluators.Get().(*gotfhe.BinaryEvaluator)
	defer e.evaluators.Put(eval)
	return eval.NOT(x), nil
}
