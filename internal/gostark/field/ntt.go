package field

import (
	"fmt"
	"math/big"
)

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// Log2 returns floor(log2(n)) for a positive power-of-two n.
func Log2(n int) int {
	log := 0
	for n > 1 {
		n >>= 1
		log++
	}
	return log
}

// PrimitiveRoot returns a primitive n-th root of unity in f, where n must be
// a power of two dividing p-1. It searches small candidate generators,
// raises each to (p-1)/n, and verifies the result has exact order n by
// confirming no proper divisor power collapses to one.
func (f *Field) PrimitiveRoot(n int) (*Element, error) {
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("field: order %d is not a power of two", n)
	}
	pMinusOne := new(big.Int).Sub(f.modulus, big.NewInt(1))
	order := big.NewInt(int64(n))
	exp := new(big.Int)
	rem := new(big.Int)
	exp.DivMod(pMinusOne, order, rem)
	if rem.Sign() != 0 {
		return nil, fmt.Errorf("field: order %d does not divide p-1", n)
	}

	for g := int64(2); g < 1000; g++ {
		candidate := f.NewFromInt64(g).Exp(exp)
		if candidate.IsOne() {
			continue
		}
		if hasExactOrder(candidate, n) {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("field: no primitive %d-th root found among small candidates", n)
}

// hasExactOrder reports whether root^n == 1 and root^(n/2) != 1, which for a
// power-of-two n is sufficient to confirm order exactly n.
func hasExactOrder(root *Element, n int) bool {
	if !root.ExpInt(int64(n)).IsOne() {
		return false
	}
	if n == 1 {
		return true
	}
	return !root.ExpInt(int64(n / 2)).IsOne()
}

// PowerSeries returns [1, root, root^2, ..., root^(n-1)].
func PowerSeries(root *Element, n int) []*Element {
	out := make([]*Element, n)
	acc := root.Field().One()
	for i := 0; i < n; i++ {
		out[i] = acc
		acc = acc.Mul(root)
	}
	return out
}

func reverseBits(x, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

// NTT evaluates the polynomial with coefficients values (low-degree first)
// at every power of root, where root is a primitive len(values)-th root of
// unity. len(values) must be a power of two. Implemented as an iterative
// radix-2 Cooley-Tukey transform with bit-reversal permutation.
func NTT(values []*Element, root *Element) ([]*Element, error) {
	n := len(values)
	if !IsPowerOfTwo(n) {
		return nil, fmt.Errorf("field: NTT length %d is not a power of two", n)
	}
	if n == 1 {
		return []*Element{values[0]}, nil
	}

	bits := Log2(n)
	out := make([]*Element, n)
	for i, v := range values {
		out[reverseBits(i, bits)] = v
	}

	f := root.Field()
	for size := 2; size <= n; size <<= 1 {
		halfSize := size / 2
		stepExp := int64(n / size)
		w := root.ExpInt(stepExp)
		for start := 0; start < n; start += size {
			wi := f.One()
			for i := 0; i < halfSize; i++ {
				a := out[start+i]
				b := out[start+i+halfSize].Mul(wi)
				out[start+i] = a.Add(b)
				out[start+i+halfSize] = a.Sub(b)
				wi = wi.Mul(w)
			}
		}
	}
	return out, nil
}

// InverseNTT inverts NTT: given evaluations at powers of root, recovers the
// coefficient vector.
func InverseNTT(values []*Element, root *Element) ([]*Element, error) {
	n := len(values)
	rootInv, err := root.Inv()
	if err != nil {
		return nil, fmt.Errorf("field: inverse NTT: %w", err)
	}
	coeffs, err := NTT(values, rootInv)
	if err != nil {
		return nil, err
	}
	f := root.Field()
	nInv, err := f.NewFromInt64(int64(n)).Inv()
	if err != nil {
		return nil, fmt.Errorf("field: inverse NTT: %w", err)
	}
	out := make([]*Element, n)
	for i, c := range coeffs {
		out[i] = c.Mul(nInv)
	}
	return out, nil
}

// InterpolateRoots recovers the unique polynomial of degree < len(values)
// through (root^i, values[i]) for i in [0, len(values)), returning its
// coefficients low-degree first. Alias of InverseNTT named for readability
// at call sites that think in terms of interpolation over a root-of-unity
// domain rather than transform direction.
func InterpolateRoots(values []*Element, root *Element) ([]*Element, error) {
	return InverseNTT(values, root)
}

// EvalPolyAtRoots evaluates the polynomial with coefficients coeffs
// (low-degree first, zero-padded to a power-of-two length) at every power
// of root.
func EvalPolyAtRoots(coeffs []*Element, root *Element) ([]*Element, error) {
	return NTT(coeffs, root)
}
