package params

const (
	SecParam = 128
	SecBytes = SecParam / 8

	// BitsPaillier is the default bit length of a Paillier modulus N.
	BitsPaillier = 2048
	// BitsPaillierPrime is the bit length of each of the two factors of N.
	BitsPaillierPrime = BitsPaillier / 2

	BytesPaillier   = BitsPaillier / 8  // = 256
	BytesCiphertext = 2 * BytesPaillier // = 512

	// MinBitsPaillier is the smallest modulus accepted by key generation.
	// Smaller moduli are only built from explicit primes (tests, replays).
	MinBitsPaillier = 64

	// BitsToken is the fixed width of an encoded item.
	BitsToken  = 128
	BytesToken = BitsToken / 8

	// TokenBase is the default base K of the encoding identifier⋅K + answer.
	// It must be strictly larger than the largest answer value.
	TokenBase = 5

	// BytesNode is the width of a Merkle node, a truncated SHA-256 digest.
	BytesNode = 16

	// WordBits is the width of an encrypted word in the gate circuit.
	WordBits = 8

	// DigestLengthBytes is the output length of pkg/hash.
	DigestLengthBytes = 2 * SecBytes // 32
)
