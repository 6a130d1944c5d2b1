package field

import "fmt"

// DivModPoly performs schoolbook polynomial long division: numerator and
// denominator are coefficient vectors, low-degree first. It returns the
// quotient and remainder such that numerator = quotient*denominator +
// remainder, with deg(remainder) < deg(denominator). denominator's
// highest-degree coefficient must be nonzero.
func DivModPoly(numerator, denominator []*Element) (quotient, remainder []*Element, err error) {
	if len(denominator) == 0 || denominator[len(denominator)-1].IsZero() {
		return nil, nil, fmt.Errorf("field: poly division by a zero or degenerate divisor")
	}
	f := denominator[0].Field()
	d := len(denominator) - 1

	remainder = append([]*Element(nil), numerator...)
	quotientLen := len(numerator) - d
	if quotientLen < 1 {
		quotientLen = 1
	}
	quotient = make([]*Element, quotientLen)
	for i := range quotient {
		quotient[i] = f.Zero()
	}

	leadInv, err := denominator[d].Inv()
	if err != nil {
		return nil, nil, fmt.Errorf("field: poly division: %w", err)
	}

	for i := len(remainder) - 1; i >= d; i-- {
		coef := remainder[i]
		if coef.IsZero() {
			continue
		}
		qCoef := coef.Mul(leadInv)
		if i-d < len(quotient) {
			quotient[i-d] = qCoef
		}
		for k := 0; k <= d; k++ {
			remainder[i-d+k] = remainder[i-d+k].Sub(qCoef.Mul(denominator[k]))
		}
	}
	return quotient, remainder, nil
}

// EvalPoly evaluates a coefficient vector (low-degree first) at x via
// Horner's method.
func EvalPoly(coeffs []*Element, x *Element) *Element {
	f := x.Field()
	acc := f.Zero()
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(coeffs[i])
	}
	return acc
}

// IsZeroPoly reports whether every coefficient is zero.
func IsZeroPoly(coeffs []*Element) bool {
	for _, c := range coeffs {
		if !c.IsZero() {
			return false
		}
	}
	return true
}
