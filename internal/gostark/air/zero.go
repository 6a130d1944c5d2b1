package air

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
)

// ZeroPolynomial represents Z(x) = (x^T - 1) / (x - g^(T-1)) over a domain
// context, where g is the trace generator (spec §4.4).
//
// Two representations are exposed because they serve different callers:
//   - Coeffs gives the exact degree-(T-1) coefficient expansion (valid
//     everywhere, no indeterminate points), which the prover uses to divide
//     the transition combination by Z via polynomial long division rather
//     than a pointwise ratio.
//   - EvaluateAt/EvaluateAtIndex compute the unreduced ratio directly from
//     x^T-1 and x-g^(T-1) at a single point, for the verifier's scalar
//     reconstruction path; per spec this is undefined on all of D_T
//     (queries must and do avoid it entirely).
type ZeroPolynomial struct {
	ctx      *domain.Context
	coeffs   []*field.Element // degree T-1, length T: Z(x) = sum r^(T-1-k) x^k
	gTMinus1 *field.Element   // g^(T-1), the unreduced denominator's root
}

// NewZeroPolynomial precomputes both representations.
func NewZeroPolynomial(ctx *domain.Context) *ZeroPolynomial {
	T := ctx.TraceLength
	r := ctx.TraceGenerator.ExpInt(int64(T - 1))
	coeffs := make([]*field.Element, T)
	for k := 0; k < T; k++ {
		coeffs[k] = r.ExpInt(int64(T - 1 - k))
	}
	return &ZeroPolynomial{ctx: ctx, coeffs: coeffs, gTMinus1: r}
}

// Coeffs returns Z's exact coefficient expansion, low-degree first, length
// TraceLength (one more than its degree).
func (z *ZeroPolynomial) Coeffs() []*field.Element {
	return append([]*field.Element(nil), z.coeffs...)
}

// EvaluateAtIndex returns the unreduced ratio (x^T-1)/(x-g^(T-1)) at
// evaluation-domain position j, erroring if j is a trace-domain index.
func (z *ZeroPolynomial) EvaluateAtIndex(j int) (*field.Element, error) {
	if z.ctx.IsTraceDomainIndex(j) {
		return nil, fmt.Errorf("air: zero polynomial is undefined at trace-domain index %d", j)
	}
	return z.EvaluateAt(z.ctx.EvaluationDomain[j])
}

// EvaluateAt returns Z(x) for an arbitrary field element x via the
// unreduced ratio.
func (z *ZeroPolynomial) EvaluateAt(x *field.Element) (*field.Element, error) {
	num := x.ExpInt(int64(z.ctx.TraceLength)).Sub(z.ctx.Field.One())
	den := x.Sub(z.gTMinus1)
	if den.IsZero() {
		return nil, fmt.Errorf("air: zero polynomial is undefined at x = %s", x)
	}
	return num.Div(den)
}
