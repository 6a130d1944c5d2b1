// Package domain builds the nested evaluation domains the rest of the
// prover and verifier share: the trace domain D_T, the composition domain
// D_C, and the low-degree-extension evaluation domain D_E, with
// D_T subset D_C subset D_E as multiplicative subgroups, all powers of
// two, and all generated from a single primitive root of unity of order
// |D_E| (spec §3, §4.1).
package domain

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/field"
)

// Context holds the three nested domains for one proof instance.
type Context struct {
	Field *field.Field

	TraceLength       int
	CompositionBlowup int // k1: |D_C| = TraceLength * CompositionBlowup
	ExtensionFactor   int // k2: |D_E| = TraceLength * ExtensionFactor

	TraceGenerator       *field.Element // order TraceLength
	CompositionGenerator *field.Element // order TraceLength*CompositionBlowup
	EvaluationGenerator  *field.Element // order TraceLength*ExtensionFactor, primitive root omega

	TraceDomain       []*field.Element
	CompositionDomain []*field.Element
	EvaluationDomain  []*field.Element
}

// New constructs a Context. traceLength must be a power of two;
// compositionBlowup (k1, the smallest power of two >= max constraint
// degree) and extensionFactor (k2) must each be powers of two, with
// 2*compositionBlowup <= extensionFactor <= 32 as required by spec §3.
func New(f *field.Field, traceLength, compositionBlowup, extensionFactor int) (*Context, error) {
	if !field.IsPowerOfTwo(traceLength) {
		return nil, fmt.Errorf("domain: trace length %d is not a power of two", traceLength)
	}
	if !field.IsPowerOfTwo(compositionBlowup) {
		return nil, fmt.Errorf("domain: composition blowup %d is not a power of two", compositionBlowup)
	}
	if !field.IsPowerOfTwo(extensionFactor) {
		return nil, fmt.Errorf("domain: extension factor %d is not a power of two", extensionFactor)
	}
	if extensionFactor < 2*compositionBlowup || extensionFactor > 32 {
		return nil, fmt.Errorf("domain: extension factor %d must satisfy 2*%d <= k2 <= 32", extensionFactor, compositionBlowup)
	}

	sizeE := traceLength * extensionFactor
	sizeC := traceLength * compositionBlowup

	rootE, err := f.PrimitiveRoot(sizeE)
	if err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	traceGen := rootE.ExpInt(int64(extensionFactor))
	compGen := rootE.ExpInt(int64(extensionFactor / compositionBlowup))

	return &Context{
		Field:                f,
		TraceLength:          traceLength,
		CompositionBlowup:    compositionBlowup,
		ExtensionFactor:      extensionFactor,
		TraceGenerator:       traceGen,
		CompositionGenerator: compGen,
		EvaluationGenerator:  rootE,
		TraceDomain:          field.PowerSeries(traceGen, traceLength),
		CompositionDomain:    field.PowerSeries(compGen, sizeC),
		EvaluationDomain:     field.PowerSeries(rootE, sizeE),
	}, nil
}

// TraceIndexToEvaluationIndex maps a position in the trace domain to its
// corresponding position in the evaluation domain (every ExtensionFactor-th
// point), used when pulling boundary/assertion rows out of an LDE
// codeword.
func (c *Context) TraceIndexToEvaluationIndex(i int) int {
	return i * c.ExtensionFactor
}

// CompositionIndexToEvaluationIndex maps a position in the composition
// domain to its corresponding position in the evaluation domain.
func (c *Context) CompositionIndexToEvaluationIndex(i int) int {
	return i * (c.ExtensionFactor / c.CompositionBlowup)
}

// IsTraceDomainIndex reports whether evaluation-domain position j coincides
// with a trace-domain point (j is a multiple of ExtensionFactor). The zero
// polynomial vanishes there, so C(x_j) cannot be reconstructed at such a
// position. Query positions are drawn over all of the evaluation domain
// and can land on these indices; the verifier skips its composition
// cross-check at them.
func (c *Context) IsTraceDomainIndex(j int) bool {
	return j%c.ExtensionFactor == 0
}
