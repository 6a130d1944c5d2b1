package gostark

import (
	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/config"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/proof"
)

// FieldElement represents an element of the field an AIR runs over.
type FieldElement = field.Element

// Field represents the finite field an AIR runs over (the reference
// implementation supports the 64-bit Goldilocks field and a 128-bit
// generalized-STARK-friendly field; see field.Goldilocks/field.GenSTARK128).
type Field = field.Field

// AIR is the contract a caller implements to describe a computation:
// per-step transition logic, the constraints that pin it down, and a
// trace builder turning an input stream into the registers those
// constraints run over.
type AIR = air.AIR

// RegisterCounts describes how many state/input/public/secret registers
// an AIR declares.
type RegisterCounts = air.RegisterCounts

// Constraint declares one transition constraint's degree.
type Constraint = air.Constraint

// Assertion pins a state register to a known value at a known step,
// binding the trace to public inputs/outputs.
type Assertion = air.Assertion

// Config collects the tunable parameters of a proof run: extension
// factor, query counts, and hash algorithm. Use DefaultConfig and the
// fluent With* methods rather than constructing one directly.
type Config = config.Config

// Proof is a complete zkSTARK proof: the trace and composition Merkle
// commitments, the FRI folding transcript, and the remainder polynomial.
type Proof = proof.Proof

// DefaultConfig returns the baseline configuration: 80 execution spot
// checks, 40 FRI spot checks, SHA-256 hashing, and an extension factor
// derived from the AIR's constraint degree at Prove/Verify time.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}
