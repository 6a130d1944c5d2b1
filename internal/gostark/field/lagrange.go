package field

// VanishingPoly expands prod_i (x - xs[i]) into coefficients, low-degree
// first (length len(xs)+1).
func VanishingPoly(f *Field, xs []*Element) []*Element {
	coeffs := []*Element{f.One()}
	for _, x := range xs {
		next := make([]*Element, len(coeffs)+1)
		for i := range next {
			next[i] = f.Zero()
		}
		for i, c := range coeffs {
			next[i] = next[i].Add(c.Mul(x.Neg()))
			next[i+1] = next[i+1].Add(c)
		}
		coeffs = next
	}
	return coeffs
}

// LagrangeInterpolateCoeffs returns the coefficient form (low-degree
// first, length len(xs)) of the unique polynomial of degree < len(xs)
// passing through (xs[i], ys[i]). Intended for small point sets; builds
// each Lagrange basis polynomial's coefficients via repeated
// multiplication by (x - xs[j]) factors, O(n^2) field multiplications.
func LagrangeInterpolateCoeffs(f *Field, xs, ys []*Element) ([]*Element, error) {
	n := len(xs)
	result := make([]*Element, n)
	for i := range result {
		result[i] = f.Zero()
	}

	for i := 0; i < n; i++ {
		others := make([]*Element, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				others = append(others, xs[j])
			}
		}
		basis := VanishingPoly(f, others) // degree n-1, length n

		denom := f.One()
		for _, xj := range others {
			denom = denom.Mul(xs[i].Sub(xj))
		}
		scale, err := ys[i].Div(denom)
		if err != nil {
			return nil, err
		}
		for k, c := range basis {
			result[k] = result[k].Add(c.Mul(scale))
		}
	}
	return result, nil
}
