// Package verifier implements the public verify() entry point (spec
// §6.5): replay the prover's transcript, authenticate every opened trace
// and FRI leaf against its committed root, and cross-check the composition
// polynomial's revealed values against an independent reconstruction from
// the opened trace rows.
package verifier

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

// minExtensionFactor mirrors prover.minExtensionFactor: the smallest power
// of two >= 2*k1, so a zero cfg.ExtensionFactor derives the same k2 on
// both sides without the verifier needing the prover's internals.
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

// Verify checks p against AIR a, the same assertions, cfg, and publicAux
// the prover was given. A (false, nil) result means the proof is
// well-formed but rejected; a non-nil error means the proof (or the
// caller's arguments) could not even be checked.
func Verify(
	a air.AIR,
	cfg *config.Config,
	assertions []air.Assertion,
	p *proof.Proof,
	publicAux [][]byte,
) (bool, error) {
	if len(assertions) == 0 {
		return false, fmt.Errorf("verifier: at least one assertion is required")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	k1 := air.CompositionBlowup(a)
	minK2 := minExtensionFactor(k1)
	if err := cfg.Validate(minK2); err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	k2 := cfg.ExtensionFactor
	if k2 == 0 {
		k2 = minK2
	}

	digest, err := hash.ByName(cfg.HashAlgorithm)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}

	ctx, err := domain.New(a.Field(), a.TraceLength(), k1, k2)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	sizeE := len(ctx.EvaluationDomain)

	counts := a.RegisterCounts()
	if p.TraceShape != counts {
		return false, fmt.Errorf("verifier: proof trace shape %+v does not match AIR %+v", p.TraceShape, counts)
	}

	logging.Stagef("replaying the transcript for %q", a.Name())
	tr := transcript.New(digest)
	seed := seedBytes(a, ctx, k1, k2, assertions, publicAux)
	if err := tr.Seed(seed...); err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	if err := tr.Absorb(p.TraceRoot); err != nil {
		return false, fmt.Errorf("verifier: absorbing trace root: %w", err)
	}

	cp, err := air.NewCompositionPolynomial(ctx, a, assertions)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	dCount, bCount := cp.CoefficientCounts()
	coeffs, err := tr.SqueezeElements(a.Field(), dCount+bCount)
	if err != nil {
		return false, fmt.Errorf("verifier: drawing composition coefficients: %w", err)
	}
	alphas, betas := coeffs[:dCount], coeffs[dCount:]

	exePositions, err := tr.SqueezeIndices(sizeE, cfg.ExeQueryCount)
	if err != nil {
		return false, fmt.Errorf("verifier: drawing trace query positions: %w", err)
	}
	friPositions, err := tr.SqueezeIndices(sizeE, cfg.FRIQueryCount)
	if err != nil {
		return false, fmt.Errorf("verifier: drawing FRI query positions: %w", err)
	}
	queryPositions := unionSorted(exePositions, friPositions)

	nextPositions := make([]int, len(exePositions))
	for i, j := range exePositions {
		nextPositions[i] = (j + k2) % sizeE
	}
	openPositions := unionSorted(queryPositions, nextPositions)

	logging.Stage("checking the execution trace opening")
	regsPerLeaf := counts.State + counts.Input + counts.Public + counts.Secret
	rows, err := splitTraceValues(p.TraceProof.Values, len(openPositions), regsPerLeaf)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	rowAt := make(map[int][]*field.Element, len(openPositions))
	leafBytes := make([][]byte, len(openPositions))
	for i, j := range openPositions {
		rowAt[j] = rows[i]
		var leaf []byte
		for _, e := range rows[i] {
			leaf = append(leaf, e.Bytes()...)
		}
		leafBytes[i] = leaf
	}
	traceMerkleProof := p.TraceProof.ToMerkleProof(openPositions)
	ok, err := merkle.Verify(digest, p.TraceRoot, sizeE, openPositions, leafBytes, traceMerkleProof)
	if err != nil {
		return false, fmt.Errorf("verifier: trace opening: %w", err)
	}
	if !ok {
		return false, nil
	}

	logging.Stage("checking FRI")
	fp, err := p.ToFRIProof(queryPositions, sizeE)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	maxRemainderDegree := foldedDegreeBound(cp.CompositionDegree(), sizeE)
	ok, revealed, err := fri.Verify(tr, a.Field(), digest, fp, sizeE, ctx.EvaluationGenerator, queryPositions, maxRemainderDegree)
	if err != nil {
		return false, fmt.Errorf("verifier: %w", err)
	}
	if !ok {
		return false, nil
	}

	logging.Stage("cross-checking the composition value against the opened trace")
	for _, j := range exePositions {
		if ctx.IsTraceDomainIndex(j) {
			// The zero polynomial vanishes on the trace domain itself, so
			// there is no meaningful C(x_j) to reconstruct there; the
			// transition and boundary constraints are already pinned down
			// directly by CheckTransitions/checkAssertions on the prover
			// side, so skipping this particular j costs nothing.
			continue
		}
		row := rowAt[j]
		nextRow := rowAt[(j+k2)%sizeE]
		currentState := row[:counts.State]
		nextState := nextRow[:counts.State]
		readonlyRow := row[counts.State:]

		registerValuesAtJ := make(map[int]*field.Element, counts.State)
		for r := 0; r < counts.State; r++ {
			registerValuesAtJ[r] = currentState[r]
		}

		expected, err := cp.EvaluateAtIndex(j, currentState, nextState, readonlyRow, registerValuesAtJ, alphas, betas)
		if err != nil {
			return false, fmt.Errorf("verifier: reconstructing C(x_%d): %w", j, err)
		}
		got, ok := revealed[j]
		if !ok {
			return false, fmt.Errorf("verifier: FRI proof does not cover queried position %d", j)
		}
		if !got.Equal(expected) {
			return false, nil
		}
	}

	return true, nil
}

// foldedDegreeBound mirrors the fold loop fri.Prove runs: each layer
// divides both the domain size and the degree bound by fri.FoldFactor
// until the codeword is short enough to send as a raw remainder.
func foldedDegreeBound(degree, domainSize int) int {
	for domainSize > fri.RemainderBound {
		degree /= fri.FoldFactor
		domainSize /= fri.FoldFactor
	}
	return degree
}

// splitTraceValues regroups a flat, position-major values list (as
// produced by prover.Prove) back into one row per position.
func splitTraceValues(values []*field.Element, numPositions, regsPerLeaf int) ([][]*field.Element, error) {
	if len(values) != numPositions*regsPerLeaf {
		return nil, fmt.Errorf("trace witness has %d values, want %d (%d positions x %d registers)", len(values), numPositions*regsPerLeaf, numPositions, regsPerLeaf)
	}
	rows := make([][]*field.Element, numPositions)
	for i := range rows {
		rows[i] = values[i*regsPerLeaf : (i+1)*regsPerLeaf]
	}
	return rows, nil
}

// seedBytes must stay byte-for-byte identical to prover.seedBytes: it
// derives the transcript's domain-separation seed from the same public
// parameters (the AIR name, the domain sizing, every assertion, and any
// caller-supplied public auxiliary data).
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
