package air

import (
	"fmt"
	"math/big"

	"github.com/vybium/gostark/internal/gostark/field"
)

// EvaluateAtIndex reconstructs C(x_j) from revealed trace leaf values at
// evaluation-domain position j, following exactly the same degree
// adjustment and coefficient ordering as Build. It is the scalar
// counterpart the verifier uses to check the composition tree leaf
// against the trace tree leaves without recomputing the full LDE (spec
// §4.6 "single-point evaluation path", and the §8 degree-bound property).
//
// alphas and betas must be the same challenge vectors the prover drew
// while building the composition (same transcript absorb/squeeze
// sequence); registerValuesAtJ supplies P_r(x_j) for every asserted
// register r.
func (c *CompositionPolynomial) EvaluateAtIndex(
	j int,
	currentRow, nextRow, readonlyRow []*field.Element,
	registerValuesAtJ map[int]*field.Element,
	alphas, betas []*field.Element,
) (*field.Element, error) {
	groups := c.transitionGroups()
	if len(alphas) != len(groups) {
		return nil, fmt.Errorf("air: expected %d transition coefficients, got %d", len(groups), len(alphas))
	}

	evals, err := c.air.EvaluateConstraints(currentRow, nextRow, readonlyRow)
	if err != nil {
		return nil, fmt.Errorf("air: evaluating constraints at index %d: %w", j, err)
	}

	f := c.ctx.Field
	x := c.ctx.EvaluationDomain[j]

	acc := f.Zero()
	for idx, g := range groups {
		if g.constraintIndex >= len(evals) {
			return nil, fmt.Errorf("air: constraint index %d out of range", g.constraintIndex)
		}
		val := evals[g.constraintIndex]
		if g.adjustExp != nil {
			val = val.Mul(x.Exp(g.adjustExp))
		}
		acc = acc.Add(val.Mul(alphas[idx]))
	}

	zVal, err := c.zero.EvaluateAtIndex(j)
	if err != nil {
		return nil, fmt.Errorf("air: %w", err)
	}
	dVal, err := acc.Div(zVal)
	if err != nil {
		return nil, fmt.Errorf("air: reconstructing D(x): %w", err)
	}

	registers := c.boundary.Registers()
	bCount := len(registers)
	if c.boundaryAdjusted() {
		bCount *= 2
	}
	if len(betas) != bCount {
		return nil, fmt.Errorf("air: expected %d boundary coefficients, got %d", bCount, len(betas))
	}

	bcAcc := f.Zero()
	betaIdx := 0
	adjExp := big.NewInt(int64(c.compositionDegree - c.ctx.TraceLength))
	for _, r := range registers {
		regVal, ok := registerValuesAtJ[r]
		if !ok {
			return nil, fmt.Errorf("air: no revealed value for asserted register %d", r)
		}
		bVal, err := c.boundary.EvaluateRegisterAtIndex(r, j, regVal)
		if err != nil {
			return nil, fmt.Errorf("air: evaluating boundary for register %d at index %d: %w", r, j, err)
		}
		bcAcc = bcAcc.Add(bVal.Mul(betas[betaIdx]))
		betaIdx++
		if c.boundaryAdjusted() {
			adjVal := bVal.Mul(x.Exp(adjExp))
			bcAcc = bcAcc.Add(adjVal.Mul(betas[betaIdx]))
			betaIdx++
		}
	}

	return dVal.Add(bcAcc), nil
}

// CoefficientCounts exposes (dCoefficientCount, bCoefficientCount) so
// callers can draw exactly the right number of transcript challenges.
func (c *CompositionPolynomial) CoefficientCounts() (int, int) {
	return c.coefficientCounts()
}
