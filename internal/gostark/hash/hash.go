// Package hash provides the byte-oriented digest functions the Merkle
// commitment layer and transcript consume, plus the Rescue field-friendly
// permutation used by the hash-preimage example AIR.
package hash

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/blake2s"
)

// Digest is the capability interface merkle.Hasher and transcript.Hasher
// are built against: a one-way compression function over a variadic list
// of byte strings, concatenated before hashing.
type Digest interface {
	Hash(data ...[]byte) []byte
	Name() string
}

// SHA256 wraps crypto/sha256 as a Digest.
type SHA256 struct{}

// Hash concatenates data and returns its SHA-256 digest.
func (SHA256) Hash(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Name identifies the algorithm for configuration and error messages.
func (SHA256) Name() string { return "sha256" }

// Blake2s256 wraps golang.org/x/crypto/blake2s as a Digest.
type Blake2s256 struct{}

// Hash concatenates data and returns its BLAKE2s-256 digest.
func (Blake2s256) Hash(data ...[]byte) []byte {
	h, err := blake2s.New256(nil)
	if err != nil {
		// blake2s.New256 only fails for an oversized key, and we pass none.
		panic(fmt.Sprintf("hash: blake2s init: %v", err))
	}
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Name identifies the algorithm for configuration and error messages.
func (Blake2s256) Name() string { return "blake2s256" }

// ByName resolves a Digest from its configuration name (spec §6.6).
func ByName(name string) (Digest, error) {
	switch name {
	case "sha256":
		return SHA256{}, nil
	case "blake2s256":
		return Blake2s256{}, nil
	default:
		return nil, fmt.Errorf("hash: unknown digest %q", name)
	}
}
