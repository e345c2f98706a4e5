// Package merkle commits to an ordered list of tokens with a binary hash tree.
//
// Leaves are the first 16 bytes of SHA-256 over the 16 byte big-endian token,
// internal nodes the first 16 bytes of SHA-256 over the concatenation of their
// children. Lists whose length is not a power of two are padded on the right
// with zero tokens, so [7, 9, 2] and [7, 9, 2, 0] commit to the same root.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"

	"github.com/meetup-psi/meetup/internal/params"
	"github.com/meetup-psi/meetup/pkg/token"
)

var ErrEmpty = errors.New("merkle: cannot commit to an empty list")

// Node is a 128-bit tree node, stored big-endian.
type Node [params.BytesNode]byte

// Leaf hashes a single token.
func Leaf(t token.Token) Node {
	b := t.Bytes()
	return truncate(sha256.Sum256(b[:]))
}

// Parent hashes two children, left first.
func Parent(left, right Node) Node {
	var buf [2 * params.BytesNode]byte
	copy(buf[:params.BytesNode], left[:])
	copy(buf[params.BytesNode:], right[:])
	return truncate(sha256.Sum256(buf[:]))
}

func truncate(digest [sha256.Size]byte) Node {
	var n Node
	copy(n[:], digest[:params.BytesNode])
	return n
}

// Pad returns values right-padded with zero tokens to the next power of two.
func Pad(values []token.Token) []token.Token {
	size := paddedSize(len(values))
	padded := make([]token.Token, size)
	copy(padded, values)
	return padded
}

func paddedSize(n int) int {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// Levels returns every level of the tree, leaves first and the root last.
func Levels(values []token.Token) ([][]Node, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	padded := Pad(values)
	level := make([]Node, len(padded))
	for i, v := range padded {
		level[i] = Leaf(v)
	}

	levels := [][]Node{level}
	for len(level) > 1 {
		next := make([]Node, len(level)/2)
		for i := range next {
			next[i] = Parent(level[2*i], level[2*i+1])
		}
		levels = append(levels, next)
		level = next
	}
	return levels, nil
}

// Build returns the root of the tree over values.
func Build(values []token.Token) (Node, error) {
	levels, err := Levels(values)
	if err != nil {
		return Node{}, err
	}
	return levels[len(levels)-1][0], nil
}

// Verify reports whether root commits to values.
func Verify(root Node, values []token.Token) bool {
	got, err := Build(values)
	if err != nil {
		return false
	}
	return got == root
}

// String returns the lowercase hex encoding of n.
func (n Node) String() string {
	return hex.EncodeToString(n[:])
}

// ParseNode decodes a node written by String.
func ParseNode(s string) (Node, error) {
	var n Node
	b, err := hex.DecodeString(s)
	if err != nil {
		return n, fmt.Errorf("merkle: parse node: %w", err)
	}
	if len(b) != params.BytesNode {
		return n, fmt.Errorf("merkle: parse node: expected %d bytes, got %d", params.BytesNode, len(b))
	}
	copy(n[:], b)
	return n, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (n Node) MarshalBinary() ([]byte, error) {
	out := make([]byte, params.BytesNode)
	copy(out, n[:])
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (n *Node) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesNode {
		return fmt.Errorf("merkle: expected %d bytes, got %d", params.BytesNode, len(data))
	}
	copy(n[:], data)
	return nil
}
