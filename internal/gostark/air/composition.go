package air

import (
	"fmt"
	"math/big"

	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/transcript"
)

// CompositionPolynomial combines degree-adjusted transition constraint
// evaluations and boundary constraint evaluations into a single polynomial
// C(x) whose degree is bounded iff every constraint is satisfied (spec
// §4.6). It is the central object the FRI layer tests for proximity to a
// low-degree polynomial.
type CompositionPolynomial struct {
	ctx      *domain.Context
	air      AIR
	zero     *ZeroPolynomial
	boundary *BoundaryConstraints

	combinationDegree int // D = 2^ceil(log2(maxDegree)) * T
	compositionDegree int // max(D-T, T)
}

// NewCompositionPolynomial derives the degree bookkeeping and boundary
// grouping for a given AIR, domain context, and assertion set.
func NewCompositionPolynomial(ctx *domain.Context, a AIR, assertions []Assertion) (*CompositionPolynomial, error) {
	boundary, err := NewBoundaryConstraints(ctx, assertions)
	if err != nil {
		return nil, err
	}
	D := ctx.CompositionBlowup * ctx.TraceLength
	compDeg := D - ctx.TraceLength
	if compDeg < ctx.TraceLength {
		compDeg = ctx.TraceLength
	}
	return &CompositionPolynomial{
		ctx:               ctx,
		air:               a,
		zero:              NewZeroPolynomial(ctx),
		boundary:          boundary,
		combinationDegree: D,
		compositionDegree: compDeg,
	}, nil
}

// CompositionDegree returns the soundness target FRI tests against.
func (c *CompositionPolynomial) CompositionDegree() int { return c.compositionDegree }

// transitionGroup describes one entry in the degree-adjusted transition
// working set: either an original constraint (adjustExp == nil) or an
// adjusted copy multiplied by x^adjustExp.
type transitionGroup struct {
	constraintIndex int
	adjustExp       *big.Int // nil if no adjustment needed
}

// transitionGroups returns the working-set ordering: every original
// constraint first in declaration order, then one adjusted copy per
// constraint whose effective degree (declared degree * T) falls short of
// D, in ascending constraint index order (spec §9 design note: the
// transcript consumes coefficients in this exact order).
func (c *CompositionPolynomial) transitionGroups() []transitionGroup {
	declared := c.air.DeclaredConstraints()
	T := int64(c.ctx.TraceLength)
	groups := make([]transitionGroup, 0, 2*len(declared))
	for i := range declared {
		groups = append(groups, transitionGroup{constraintIndex: i})
	}
	for i, decl := range declared {
		effective := int64(decl.Degree) * T
		if effective < int64(c.combinationDegree) {
			exp := new(big.Int).SetInt64(int64(c.combinationDegree) - effective)
			groups = append(groups, transitionGroup{constraintIndex: i, adjustExp: exp})
		}
	}
	return groups
}

// boundaryAdjusted reports whether boundary polynomials need the
// x^(compositionDegree-T) adjustment (spec §4.6 step 7).
func (c *CompositionPolynomial) boundaryAdjusted() bool {
	return c.compositionDegree > c.ctx.TraceLength
}

// coefficientCounts returns (dCoefficientCount, bCoefficientCount).
func (c *CompositionPolynomial) coefficientCounts() (int, int) {
	d := len(c.transitionGroups())
	b := len(c.boundary.Registers())
	if c.boundaryAdjusted() {
		b *= 2
	}
	return d, b
}

func columnAt(matrix [][]*field.Element, index int) []*field.Element {
	out := make([]*field.Element, len(matrix))
	for i, row := range matrix {
		out[i] = row[index]
	}
	return out
}

// Build runs the full composition algorithm (spec §4.6 steps 1-9),
// returning C(x) evaluated over D_E. stateLDE_C/readonlyLDE_C are every
// register's low-degree extension evaluated over D_C (needed to evaluate
// transition constraints there); stateCoeffs is every state register's
// trace-domain coefficient vector (length T, as returned by LDE), keyed by
// register index, needed for exact boundary division. tr must already have
// absorbed the trace commitment root.
func (c *CompositionPolynomial) Build(
	tr *transcript.Transcript,
	stateLDE_C, readonlyLDE_C [][]*field.Element,
	stateCoeffs map[int][]*field.Element,
) ([]*field.Element, error) {
	f := c.ctx.Field
	sizeC := len(c.ctx.CompositionDomain)
	sizeE := len(c.ctx.EvaluationDomain)
	k1 := c.ctx.CompositionBlowup

	declared := c.air.DeclaredConstraints()
	m := len(declared)
	Qs := make([][]*field.Element, m)
	for i := range Qs {
		Qs[i] = make([]*field.Element, sizeC)
	}
	for i := 0; i < sizeC; i++ {
		current := columnAt(stateLDE_C, i)
		next := columnAt(stateLDE_C, (i+k1)%sizeC)
		readonly := columnAt(readonlyLDE_C, i)
		evals, err := c.air.EvaluateConstraints(current, next, readonly)
		if err != nil {
			return nil, fmt.Errorf("air: evaluating transition constraints at D_C[%d]: %w", i, err)
		}
		if len(evals) != m {
			return nil, fmt.Errorf("air: constraint evaluator returned %d values, want %d", len(evals), m)
		}
		for j, e := range evals {
			Qs[j][i] = e
		}
	}

	groups := c.transitionGroups()
	working := make([][]*field.Element, len(groups))
	for idx, g := range groups {
		base := Qs[g.constraintIndex]
		if g.adjustExp == nil {
			working[idx] = base
			continue
		}
		shiftRoot := c.ctx.CompositionGenerator.Exp(g.adjustExp)
		powers := field.PowerSeries(shiftRoot, sizeC)
		adjusted, err := field.MulVectors(base, powers)
		if err != nil {
			return nil, fmt.Errorf("air: degree adjustment: %w", err)
		}
		working[idx] = adjusted
	}

	dCount, bCount := c.coefficientCounts()
	coeffs, err := tr.SqueezeElements(f, dCount+bCount)
	if err != nil {
		return nil, fmt.Errorf("air: drawing composition coefficients: %w", err)
	}
	alphas, betas := coeffs[:dCount], coeffs[dCount:]

	scaled := make([][]*field.Element, len(working))
	for i, w := range working {
		scaled[i] = field.ScaleVector(w, alphas[i])
	}
	QC, err := field.CombineManyVectors(scaled)
	if err != nil {
		return nil, fmt.Errorf("air: combining transition groups: %w", err)
	}

	coeffsC, err := field.InterpolateRoots(QC, c.ctx.CompositionGenerator)
	if err != nil {
		return nil, fmt.Errorf("air: interpolating composition combination: %w", err)
	}

	// Divide by Z in coefficient space rather than evaluating both sides
	// pointwise: Z's reduced form vanishes at every trace step except the
	// unconstrained terminator, which would make a pointwise ratio
	// indeterminate (0/0) exactly where QC also vanishes by construction.
	// A nonzero remainder means the trace fails to satisfy the transition
	// constraints (spec §7, constraint violation).
	quotient, remainder, err := field.DivModPoly(coeffsC, c.zero.Coeffs())
	if err != nil {
		return nil, fmt.Errorf("air: dividing composition combination by the zero polynomial: %w", err)
	}
	if !field.IsZeroPoly(remainder) {
		return nil, fmt.Errorf("air: constraint violation: trace does not satisfy the declared transition constraints")
	}

	paddedD := zeroPad(quotient, sizeE, f)
	dEval, err := field.EvalPolyAtRoots(paddedD, c.ctx.EvaluationGenerator)
	if err != nil {
		return nil, fmt.Errorf("air: extending D(x) to D_E: %w", err)
	}

	registers := c.boundary.Registers()
	boundaryWorking := make([][]*field.Element, 0, 2*len(registers))
	for _, r := range registers {
		regCoeffs, ok := stateCoeffs[r]
		if !ok {
			return nil, fmt.Errorf("air: no trace coefficients supplied for asserted register %d", r)
		}
		bCoeffs, err := c.boundary.EvaluateRegisterPoly(r, regCoeffs)
		if err != nil {
			return nil, err
		}
		paddedB := zeroPad(bCoeffs, sizeE, f)
		bEval, err := field.EvalPolyAtRoots(paddedB, c.ctx.EvaluationGenerator)
		if err != nil {
			return nil, fmt.Errorf("air: extending boundary polynomial for register %d to D_E: %w", r, err)
		}
		boundaryWorking = append(boundaryWorking, bEval)

		if c.boundaryAdjusted() {
			exp := int64(c.compositionDegree - c.ctx.TraceLength)
			shiftRoot := c.ctx.EvaluationGenerator.ExpInt(exp)
			powers := field.PowerSeries(shiftRoot, sizeE)
			adjusted, err := field.MulVectors(bEval, powers)
			if err != nil {
				return nil, fmt.Errorf("air: boundary degree adjustment: %w", err)
			}
			boundaryWorking = append(boundaryWorking, adjusted)
		}
	}

	scaledBoundary := make([][]*field.Element, len(boundaryWorking))
	for i, w := range boundaryWorking {
		scaledBoundary[i] = field.ScaleVector(w, betas[i])
	}
	bcEval, err := field.CombineManyVectors(scaledBoundary)
	if err != nil {
		return nil, fmt.Errorf("air: combining boundary groups: %w", err)
	}

	cEval := make([]*field.Element, sizeE)
	for j := 0; j < sizeE; j++ {
		cEval[j] = dEval[j].Add(bcEval[j])
	}
	return cEval, nil
}
