package field

import "testing"

func TestVanishingPolyRootsAreZero(t *testing.T) {
	f := MustGoldilocks()
	xs := []*Element{f.NewFromInt64(3), f.NewFromInt64(7), f.NewFromInt64(-2)}
	coeffs := VanishingPoly(f, xs)
	if len(coeffs) != len(xs)+1 {
		t.Fatalf("expected %d coefficients, got %d", len(xs)+1, len(coeffs))
	}
	for _, x := range xs {
		if !EvalPoly(coeffs, x).IsZero() {
			t.Fatalf("vanishing polynomial nonzero at root %s", x)
		}
	}
}

func TestLagrangeInterpolateCoeffsMatchesPoints(t *testing.T) {
	f := MustGoldilocks()
	xs := []*Element{f.NewFromInt64(1), f.NewFromInt64(2), f.NewFromInt64(5)}
	ys := []*Element{f.NewFromInt64(10), f.NewFromInt64(20), f.NewFromInt64(50)}
	coeffs, err := LagrangeInterpolateCoeffs(f, xs, ys)
	if err != nil {
		t.Fatalf("LagrangeInterpolateCoeffs: %v", err)
	}
	for i, x := range xs {
		if got := EvalPoly(coeffs, x); !got.Equal(ys[i]) {
			t.Fatalf("at x=%s: got %s, want %s", x, got, ys[i])
		}
	}
}

func TestLagrangeInterpolateCoeffsSinglePoint(t *testing.T) {
	f := MustGoldilocks()
	xs := []*Element{f.NewFromInt64(9)}
	ys := []*Element{f.NewFromInt64(42)}
	coeffs, err := LagrangeInterpolateCoeffs(f, xs, ys)
	if err != nil {
		t.Fatalf("LagrangeInterpolateCoeffs: %v", err)
	}
	if len(coeffs) != 1 || !coeffs[0].Equal(f.NewFromInt64(42)) {
		t.Fatalf("expected constant 42, got %v", coeffs)
	}
}
