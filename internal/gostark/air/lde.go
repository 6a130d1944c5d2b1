package air

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/domain"
	"github.com/vybium/gostark/internal/gostark/field"
)

// LDE interpolates one register's trace-domain row (length T) into its
// unique degree-<T polynomial via inverse NTT, then evaluates that
// polynomial over D_C and D_E via forward NTT after zero-padding the
// coefficient vector (spec §4.3: "interpolation and evaluation must be
// exact in the finite field; no rounding" — NTT guarantees this).
func LDE(ctx *domain.Context, row []*field.Element) (coeffs, onC, onE []*field.Element, err error) {
	if len(row) != ctx.TraceLength {
		return nil, nil, nil, fmt.Errorf("air: row has %d steps, want %d", len(row), ctx.TraceLength)
	}
	coeffs, err = field.InterpolateRoots(row, ctx.TraceGenerator)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("air: interpolating trace row: %w", err)
	}

	sizeC := len(ctx.CompositionDomain)
	paddedC := zeroPad(coeffs, sizeC, ctx.Field)
	onC, err = field.EvalPolyAtRoots(paddedC, ctx.CompositionGenerator)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("air: extending trace row to D_C: %w", err)
	}

	sizeE := len(ctx.EvaluationDomain)
	paddedE := zeroPad(coeffs, sizeE, ctx.Field)
	onE, err = field.EvalPolyAtRoots(paddedE, ctx.EvaluationGenerator)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("air: extending trace row to D_E: %w", err)
	}
	return coeffs, onC, onE, nil
}

func zeroPad(coeffs []*field.Element, size int, f *field.Field) []*field.Element {
	out := make([]*field.Element, size)
	for i := range out {
		if i < len(coeffs) {
			out[i] = coeffs[i]
		} else {
			out[i] = f.Zero()
		}
	}
	return out
}

// LDEMatrix applies LDE to every row of matrix, preserving row order.
func LDEMatrix(ctx *domain.Context, matrix [][]*field.Element) (coeffs, onC, onE [][]*field.Element, err error) {
	coeffs = make([][]*field.Element, len(matrix))
	onC = make([][]*field.Element, len(matrix))
	onE = make([][]*field.Element, len(matrix))
	for i, row := range matrix {
		rc, c, e, err := LDE(ctx, row)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("air: LDE of row %d: %w", i, err)
		}
		coeffs[i] = rc
		onC[i] = c
		onE[i] = e
	}
	return coeffs, onC, onE, nil
}
