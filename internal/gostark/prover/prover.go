// Package prover implements the public prove() entry point (spec §6.5):
// build the execution trace, commit to it, build and commit to the
// composition polynomial, run FRI, and assemble the wire-format Proof.
package prover

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/config"
	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/fri"
	"github.com/vybium/gostark/internal/gostark/hash"
	"github.com/vybium/gostark/internal/gostark/logging"
	"github.com/vybium/gostark/internal/gostark/merkle"
	"github.com/vybium/gostark/internal/gostark/proof"
	"github.com/vybium/gostark/internal/gostark/transcript"
)

// minExtensionFactor returns the smallest power of two >= 2*k1 (spec
// §6.6's "default = smallest valid" rule).
func minExtensionFactor(k1 int) int {
	k2 := k1 * 2
	if !field.IsPowerOfTwo(k2) {
		n := 1
		for n < k2 {
			n <<= 1
		}
		k2 = n
	}
	return k2
}

// Prove runs the complete pipeline for AIR a given a set of boundary
// assertions and the input streams BuildTrace consumes. publicAux is
// domain-separation context (e.g. a program digest) absorbed into the
// transcript seed but not committed as trace data; secretAux is additional
// witness data available to a BuildTrace that closes over it (this core
// has no separate channel for it — AIRs needing secret, non-input witness
// data capture it themselves, e.g. via closure, before Prove is called).
func Prove(
	a air.AIR,
	cfg *config.Config,
	assertions []air.Assertion,
	inputs [][]*field.Element,
	publicAux [][]byte,
) (*proof.Proof, error) {
	if len(assertions) == 0 {
		return nil, fmt.Errorf("prover: at least one assertion is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	k1 := air.CompositionBlowup(a)
	minK2 := minExtensionFactor(k1)
	if err := cfg.Validate(minK2); err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	k2 := cfg.ExtensionFactor
	if k2 == 0 {
		k2 = minK2
	}

	digest, err := hash.ByName(cfg.HashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	logging.Stagef("building execution trace for %q", a.Name())
	trace, readonly, _, err := a.BuildTrace(inputs)
	if err != nil {
		return nil, fmt.Errorf("prover: building trace: %w", err)
	}
	if err := air.ValidateTrace(a, trace, readonly); err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	if err := air.CheckTransitions(a, trace, readonly); err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	if err := checkAssertions(a, trace, assertions); err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	ctx, err := domain.New(a.Field(), a.TraceLength(), k1, k2)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	logging.Stage("computing low-degree extensions")
	stateCoeffs, stateLDE_C, stateLDE_E, err := air.LDEMatrix(ctx, trace)
	if err != nil {
		return nil, fmt.Errorf("prover: state LDE: %w", err)
	}
	_, readonlyLDE_C, readonlyLDE_E, err := air.LDEMatrix(ctx, readonly)
	if err != nil {
		return nil, fmt.Errorf("prover: readonly LDE: %w", err)
	}

	counts := a.RegisterCounts()

	// Every readonly register (input, public, and secret alike) is committed
	// in the trace tree, not just the secret ones: the AIR interface has no
	// hook letting a verifier recompute input/public readonly columns from
	// public data alone, so the simplest sound design is to authenticate all
	// of it through the same tree the verifier already opens for the state
	// registers.
	logging.Stage("committing to the execution trace")
	sizeE := len(ctx.EvaluationDomain)
	traceLeaves := make([][]byte, sizeE)
	for j := 0; j < sizeE; j++ {
		var leaf []byte
		for r := range stateLDE_E {
			leaf = append(leaf, stateLDE_E[r][j].Bytes()...)
		}
		for r := range readonlyLDE_E {
			leaf = append(leaf, readonlyLDE_E[r][j].Bytes()...)
		}
		traceLeaves[j] = leaf
	}
	traceTree, err := merkle.Build(digest, traceLeaves)
	if err != nil {
		return nil, fmt.Errorf("prover: building trace tree: %w", err)
	}

	tr := transcript.New(digest)
	seed := seedBytes(a, ctx, k1, k2, assertions, publicAux)
	if err := tr.Seed(seed...); err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	if err := tr.Absorb(traceTree.Root()); err != nil {
		return nil, fmt.Errorf("prover: absorbing trace root: %w", err)
	}

	logging.Stage("building the composition polynomial")
	stateCoeffMap := make(map[int][]*field.Element, len(stateCoeffs))
	for r, c := range stateCoeffs {
		stateCoeffMap[r] = c
	}
	cp, err := air.NewCompositionPolynomial(ctx, a, assertions)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	cEval, err := cp.Build(tr, stateLDE_C, readonlyLDE_C, stateCoeffMap)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	// Spot-check positions are drawn before FRI folding begins rather than
	// after (spec §4.8's canonical ordering would have them drawn once all
	// FRI layer roots are absorbed). Deferring the draw would require
	// separating FRI's "commit every layer" and "reveal the queries" phases,
	// which the folding routine below does not support. Drawing early still
	// ties the positions to the trace root and every composition challenge,
	// so a prover cannot adapt the trace to a known query set; the residual
	// gap is that FRI's own layer commitments are produced after the
	// positions are fixed instead of before.
	//
	// exePositions are the broader execution-trace spot check (cfg.ExeQueryCount);
	// friPositions drive FRI's folding/query phase (cfg.FRIQueryCount). Both
	// sets are unioned into one query set so the composition tree (FRI's
	// layer 0) reveals values at exePositions too, letting the verifier
	// recompute C(x_j) from the opened trace row and compare it against the
	// FRI-revealed composition value at the same position.
	exePositions, err := tr.SqueezeIndices(sizeE, cfg.ExeQueryCount)
	if err != nil {
		return nil, fmt.Errorf("prover: drawing trace query positions: %w", err)
	}
	friPositions, err := tr.SqueezeIndices(sizeE, cfg.FRIQueryCount)
	if err != nil {
		return nil, fmt.Errorf("prover: drawing FRI query positions: %w", err)
	}
	queryPositions := unionSorted(exePositions, friPositions)

	logging.Stage("running FRI")
	fp, err := fri.Prove(tr, a.Field(), digest, cEval, ctx.EvaluationGenerator, queryPositions)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	// Cross-checking C(x_j) against a recomputed value needs the next row
	// (the state registers one trace step ahead of j, i.e. at j+k2 in D_E)
	// as well as the current one, so every exe position's successor is
	// opened in the trace tree too even though it never needs FRI coverage.
	nextPositions := make([]int, len(exePositions))
	for i, j := range exePositions {
		nextPositions[i] = (j + k2) % sizeE
	}
	openPositions := unionSorted(queryPositions, nextPositions)

	openValues := make([]*field.Element, 0, len(openPositions)*(len(stateLDE_E)+len(readonlyLDE_E)))
	for _, j := range openPositions {
		for r := range stateLDE_E {
			openValues = append(openValues, stateLDE_E[r][j])
		}
		for r := range readonlyLDE_E {
			openValues = append(openValues, readonlyLDE_E[r][j])
		}
	}
	traceProof, err := traceTree.Prove(openPositions)
	if err != nil {
		return nil, fmt.Errorf("prover: opening trace tree: %w", err)
	}
	traceWitness, err := proof.FromMerkleProof(openValues, traceProof)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}

	logging.Stage("assembling proof")
	p, err := proof.FromFRIProof(traceTree.Root(), traceWitness, fp, counts)
	if err != nil {
		return nil, fmt.Errorf("prover: %w", err)
	}
	return p, nil
}

func checkAssertions(a air.AIR, trace [][]*field.Element, assertions []air.Assertion) error {
	for _, asn := range assertions {
		if asn.Register < 0 || asn.Register >= len(trace) {
			return fmt.Errorf("assertion references register %d, trace has %d state registers", asn.Register, len(trace))
		}
		if asn.Step < 0 || asn.Step >= a.TraceLength() {
			return fmt.Errorf("air: assertion step %d out of range [0,%d)", asn.Step, a.TraceLength())
		}
		got := trace[asn.Register][asn.Step]
		if !got.Equal(asn.Value) {
			return fmt.Errorf("constraint violation: register %d at step %d is %s, asserted %s", asn.Register, asn.Step, got, asn.Value)
		}
	}
	return nil
}

// seedBytes builds the transcript's domain-separation seed from public
// parameters: the AIR name, the domain sizing, every assertion, and any
// caller-supplied public auxiliary data (spec §4.9: "Seeded by a domain
// separation tag + public parameters").
func seedBytes(a air.AIR, ctx *domain.Context, k1, k2 int, assertions []air.Assertion, publicAux [][]byte) [][]byte {
	var seed [][]byte
	seed = append(seed, []byte(a.Name()))
	seed = append(seed, intBytes(ctx.TraceLength), intBytes(k1), intBytes(k2))
	for _, asn := range assertions {
		seed = append(seed, intBytes(asn.Register), intBytes(asn.Step), asn.Value.Bytes())
	}
	seed = append(seed, publicAux...)
	return seed
}

func intBytes(n int) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(n >> (8 * i))
	}
	return b
}

func unionSorted(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	for _, v := range a {
		seen[v] = true
	}
	for _, v := range b {
		seen[v] = true
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sortInts(out)
	return out
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
