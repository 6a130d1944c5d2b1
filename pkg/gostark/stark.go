// Package gostark is the stable public surface of a zkSTARK prover and
// verifier: plug in an AIR describing a computation, and Prove/Verify
// handle domain sizing, commitment, FRI, and Fiat-Shamir transcript
// replay.
//
// # Quick start
//
//	cfg := gostark.DefaultConfig().WithExtensionFactor(32)
//	p, err := gostark.Prove(myAIR, cfg, assertions, inputs, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ok, err := gostark.Verify(myAIR, cfg, assertions, p, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !ok {
//		log.Fatal("proof rejected")
//	}
//
// # Architecture
//
// gostark uses a hybrid public/private architecture:
//
//   - pkg/gostark/: public API (this package)
//   - internal/gostark/: private implementation (not importable)
//
// Everything under internal/ — field arithmetic, domains, the AIR
// trace/zero-polynomial/composition machinery, Merkle commitments, FRI,
// the transcript, and the wire-format proof — can change shape without
// breaking this package's exported surface.
//
// # Example AIRs
//
// internal/gostark/examples holds two complete AIRs usable as a
// reference for implementing your own: a Fibonacci-style accumulator
// and a Rescue hash preimage circuit.
package gostark

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/hash"
	"github.com/vybium/gostark/internal/gostark/proof"
	"github.com/vybium/gostark/internal/gostark/prover"
	"github.com/vybium/gostark/internal/gostark/verifier"
)

// Prove builds a zkSTARK proof that a's execution trace over inputs
// satisfies every one of a's transition constraints and the given
// boundary assertions. cfg may be nil to use DefaultConfig.
// publicAux lets a caller bind arbitrary public data (a program digest,
// a claim hash) into the transcript seed without it being part of the
// AIR itself.
func Prove(a AIR, cfg *Config, assertions []Assertion, inputs [][]*FieldElement, publicAux [][]byte) (*Proof, error) {
	p, err := prover.Prove(a, cfg, assertions, inputs, publicAux)
	if err != nil {
		return nil, classifyProveErr(err)
	}
	return p, nil
}

// Verify checks p against a, the same assertions, cfg, and publicAux
// the prover was given. A (false, nil) result means the proof is
// well-formed but was rejected; a non-nil error means the proof or the
// caller's arguments could not even be checked.
func Verify(a AIR, cfg *Config, assertions []Assertion, p *Proof, publicAux [][]byte) (bool, error) {
	ok, err := verifier.Verify(a, cfg, assertions, p, publicAux)
	if err != nil {
		return false, wrapErr(ErrInvalidProof, "verification could not be completed", err)
	}
	return ok, nil
}

// Serialize encodes a proof to its binary wire format. cfg may be nil to
// use DefaultConfig; only its HashAlgorithm matters here, since that
// determines the width of every root/sibling hash on the wire.
func Serialize(p *Proof, cfg *Config) ([]byte, error) {
	size, err := digestSizeFor(cfg)
	if err != nil {
		return nil, wrapErr(ErrInvalidConfig, "resolving hash algorithm", err)
	}
	b, err := proof.Serialize(p, size)
	if err != nil {
		return nil, wrapErr(ErrProofGeneration, "serializing proof", err)
	}
	return b, nil
}

// Parse decodes a proof from its binary wire format. f must be the same
// field the proof was produced over, and cfg the same configuration (or
// at least the same HashAlgorithm) the prover used.
func Parse(b []byte, f *Field, cfg *Config) (*Proof, error) {
	size, err := digestSizeFor(cfg)
	if err != nil {
		return nil, wrapErr(ErrInvalidConfig, "resolving hash algorithm", err)
	}
	p, err := proof.Decode(b, f, size)
	if err != nil {
		return nil, wrapErr(ErrInvalidProof, "decoding proof", err)
	}
	return p, nil
}

// SizeOf returns the encoded byte size of p, computed by serializing it.
func SizeOf(p *Proof, cfg *Config) (int, error) {
	size, err := digestSizeFor(cfg)
	if err != nil {
		return 0, wrapErr(ErrInvalidConfig, "resolving hash algorithm", err)
	}
	n, err := proof.SizeOf(p, size)
	if err != nil {
		return 0, wrapErr(ErrProofGeneration, "computing proof size", err)
	}
	return n, nil
}

// digestSizeFor resolves cfg's hash algorithm (DefaultConfig's if cfg is
// nil) to its output width in bytes.
func digestSizeFor(cfg *Config) (int, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d, err := hash.ByName(cfg.HashAlgorithm)
	if err != nil {
		return 0, err
	}
	return len(d.Hash()), nil
}

// NewGoldilocksField returns the 64-bit Goldilocks field (p = 2^64 -
// 2^32 + 1), the reference field for the bundled example AIRs.
func NewGoldilocksField() *Field {
	return field.MustGoldilocks()
}

// classifyProveErr picks an ErrorCode for a prover.Prove failure based
// on which stage produced it. prover.Prove always wraps its errors with
// a "prover: <stage>: ..." prefix, so the stage name is inspected via
// Sprintf's already-formatted message rather than re-deriving the stage
// with a second error type.
func classifyProveErr(err error) *VMError {
	msg := fmt.Sprint(err)
	switch {
	case contains(msg, "at least one assertion"):
		return wrapErr(ErrInvalidInput, "at least one assertion is required", err)
	case contains(msg, "references register"), contains(msg, "step") && contains(msg, "out of range"):
		return wrapErr(ErrInvalidInput, "assertion references a nonexistent register or step", err)
	case contains(msg, "constraint violation"), contains(msg, "constraints"), contains(msg, "assertion"):
		return wrapErr(ErrConstraintViolation, "trace does not satisfy its constraints", err)
	case contains(msg, "config:"):
		return wrapErr(ErrInvalidConfig, "invalid configuration", err)
	default:
		return wrapErr(ErrProofGeneration, "proof generation failed", err)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
