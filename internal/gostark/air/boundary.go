package air

import (
	"fmt"
	"sort"

	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
)

// Assertion pins one register's value at one step (spec §3). Assertions
// are supplied by the caller to both prove and verify and are immutable
// for the duration of a proof.
type Assertion struct {
	Register int
	Step     int
	Value    *field.Element
}

type assertionPoint struct {
	x *field.Element
	v *field.Element
}

// BoundaryConstraints builds, per asserted register, a single polynomial
// B_r(x) = (P_r(x) - I_r(x)) / prod(x - g^s) where I_r interpolates the
// asserted (g^s, v) points for that register (spec §4.5). This keeps the
// boundary polynomial count equal to the number of asserted registers, not
// the number of assertions.
type BoundaryConstraints struct {
	ctx        *domain.Context
	byRegister map[int][]assertionPoint
	registers  []int
}

// NewBoundaryConstraints validates and groups assertions by register.
// Requires at least one assertion and rejects steps outside [0, T).
func NewBoundaryConstraints(ctx *domain.Context, assertions []Assertion) (*BoundaryConstraints, error) {
	if len(assertions) == 0 {
		return nil, fmt.Errorf("air: at least one assertion is required")
	}
	byRegister := make(map[int][]assertionPoint)
	for _, a := range assertions {
		if a.Step < 0 || a.Step >= ctx.TraceLength {
			return nil, fmt.Errorf("air: assertion step %d out of range [0,%d)", a.Step, ctx.TraceLength)
		}
		x := ctx.TraceGenerator.ExpInt(int64(a.Step))
		byRegister[a.Register] = append(byRegister[a.Register], assertionPoint{x: x, v: a.Value})
	}
	registers := make([]int, 0, len(byRegister))
	for r := range byRegister {
		registers = append(registers, r)
	}
	sort.Ints(registers)
	return &BoundaryConstraints{ctx: ctx, byRegister: byRegister, registers: registers}, nil
}

// Registers returns the sorted set of registers carrying at least one
// assertion.
func (b *BoundaryConstraints) Registers() []int { return b.registers }

// lagrangeEval evaluates the unique polynomial through points at x via the
// direct O(n^2) Lagrange formula. Boundary assertion counts per register
// are small (typically 1-2), so this is cheap relative to an NTT-based
// interpolation.
func lagrangeEval(f *field.Field, points []assertionPoint, x *field.Element) (*field.Element, error) {
	acc := f.Zero()
	for i, pi := range points {
		term := pi.v
		for j, pj := range points {
			if i == j {
				continue
			}
			num := x.Sub(pj.x)
			den := pi.x.Sub(pj.x)
			frac, err := num.Div(den)
			if err != nil {
				return nil, fmt.Errorf("air: boundary interpolation: duplicate step asserted for same register: %w", err)
			}
			term = term.Mul(frac)
		}
		acc = acc.Add(term)
	}
	return acc, nil
}

// EvaluateRegisterPoly returns B_r's exact coefficient form given the
// register's trace-domain coefficient vector (length T, low-degree first,
// as produced by LDE). B_r = (P_r - I_r) / prod(x - g^s) is computed by
// polynomial long division in coefficient space rather than a pointwise
// ratio: prod(x - g^s) vanishes exactly at the asserted steps, where
// P_r - I_r also vanishes when the assertion holds, which would make a
// pointwise division indeterminate at those positions once P_r is
// extended onto D_E. A nonzero remainder means the trace's values at the
// asserted steps don't match the asserted values (spec §7, constraint
// violation).
func (b *BoundaryConstraints) EvaluateRegisterPoly(register int, registerCoeffs []*field.Element) ([]*field.Element, error) {
	points, ok := b.byRegister[register]
	if !ok {
		return nil, fmt.Errorf("air: register %d has no assertions", register)
	}
	f := b.ctx.Field
	xs := make([]*field.Element, len(points))
	ys := make([]*field.Element, len(points))
	for i, p := range points {
		xs[i] = p.x
		ys[i] = p.v
	}

	iCoeffs, err := field.LagrangeInterpolateCoeffs(f, xs, ys)
	if err != nil {
		return nil, fmt.Errorf("air: interpolating asserted values for register %d: %w", register, err)
	}

	numCoeffs := make([]*field.Element, len(registerCoeffs))
	for i, c := range registerCoeffs {
		if i < len(iCoeffs) {
			numCoeffs[i] = c.Sub(iCoeffs[i])
		} else {
			numCoeffs[i] = c
		}
	}

	denCoeffs := field.VanishingPoly(f, xs)
	quotient, remainder, err := field.DivModPoly(numCoeffs, denCoeffs)
	if err != nil {
		return nil, fmt.Errorf("air: dividing boundary numerator for register %d: %w", register, err)
	}
	if !field.IsZeroPoly(remainder) {
		return nil, fmt.Errorf("air: constraint violation: register %d does not match its asserted values", register)
	}
	return quotient, nil
}

// EvaluateRegisterAtIndex is the single-point counterpart of
// EvaluateRegisterPoly, used by the verifier's scalar reconstruction path.
func (b *BoundaryConstraints) EvaluateRegisterAtIndex(register, j int, registerValue *field.Element) (*field.Element, error) {
	points, ok := b.byRegister[register]
	if !ok {
		return nil, fmt.Errorf("air: register %d has no assertions", register)
	}
	f := b.ctx.Field
	x := b.ctx.EvaluationDomain[j]
	iv, err := lagrangeEval(f, points, x)
	if err != nil {
		return nil, err
	}
	den := f.One()
	for _, p := range points {
		den = den.Mul(x.Sub(p.x))
	}
	if den.IsZero() {
		return nil, fmt.Errorf("air: boundary denominator vanishes at index %d", j)
	}
	return registerValue.Sub(iv).Div(den)
}
