package fri

import (
	"fmt"

	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/merkle"
	"github.com/vybium/gostark/internal/gostark/transcript"
)

// Verify replays the transcript absorb/squeeze sequence Prove used
// (absorbing each column root, drawing the matching folding challenge),
// checks every layer's batched Merkle proofs, confirms each layer's
// folded values agree with the next layer's commitment (or, for the last
// layer, with the remainder polynomial), and checks the remainder has no
// coefficient above maxRemainderDegree (spec §4.8, the FRI degree-bound
// check).
//
// It returns the revealed composition-codeword values at queryPositions
// (layer 0's values at exactly those positions, since layer 0's tree is
// the composition commitment itself) so the caller can cross-check them
// against an independently reconstructed C(x) — FRI alone only proves the
// committed codeword is close to low degree, not that it was
// reconstructed correctly (spec §7, "composition reconstruction
// mismatch").
func Verify(
	tr *transcript.Transcript,
	f *field.Field,
	hasher merkle.Hasher,
	proof *Proof,
	initialDomainSize int,
	initialGenerator *field.Element,
	queryPositions []int,
	maxRemainderDegree int,
) (bool, map[int]*field.Element, error) {
	xs := make([]*field.Element, len(proof.Components))
	for l, comp := range proof.Components {
		if err := tr.Absorb(comp.ColumnRoot); err != nil {
			return false, nil, fmt.Errorf("fri: absorbing column root %d: %w", l, err)
		}
		x, err := tr.SqueezeElement(f)
		if err != nil {
			return false, nil, fmt.Errorf("fri: drawing folding challenge %d: %w", l, err)
		}
		xs[l] = x
	}

	var initialValues map[int]*field.Element
	curN := initialDomainSize
	curGen := initialGenerator

	for l, comp := range proof.Components {
		quarter := curN / FoldFactor

		colLeaves := make([][]byte, len(comp.ColumnValues))
		for i, v := range comp.ColumnValues {
			colLeaves[i] = v.Bytes()
		}
		ok, err := merkle.Verify(hasher, comp.ColumnRoot, curN, comp.ColumnPositions, colLeaves, comp.ColumnProof)
		if err != nil {
			return false, nil, fmt.Errorf("fri: layer %d column proof: %w", l, err)
		}
		if !ok {
			return false, nil, fmt.Errorf("fri: layer %d column proof does not authenticate against its root", l)
		}

		valueAt := make(map[int]*field.Element, len(comp.ColumnPositions))
		for i, p := range comp.ColumnPositions {
			valueAt[p] = comp.ColumnValues[i]
		}

		if l == 0 {
			initialValues = make(map[int]*field.Element, len(queryPositions))
			for _, p := range queryPositions {
				v, ok := valueAt[p]
				if !ok {
					return false, nil, fmt.Errorf("fri: queried position %d not covered by the layer 0 proof", p)
				}
				initialValues[p] = v
			}
		}

		domainR := field.PowerSeries(curGen, quarter)
		eta := curGen.ExpInt(int64(quarter))
		nextGen := curGen.ExpInt(FoldFactor)

		folded := make(map[int]*field.Element, len(comp.PolyPositions))
		for _, r := range comp.PolyPositions {
			a, okA := valueAt[r]
			b, okB := valueAt[r+quarter]
			c, okC := valueAt[r+2*quarter]
			d, okD := valueAt[r+3*quarter]
			if !okA || !okB || !okC || !okD {
				return false, nil, fmt.Errorf("fri: layer %d missing revealed coset value for row %d", l, r)
			}
			coeffs, err := field.InterpolateRoots([]*field.Element{a, b, c, d}, eta)
			if err != nil {
				return false, nil, fmt.Errorf("fri: layer %d folding row %d: %w", l, r, err)
			}
			t, err := xs[l].Div(domainR[r])
			if err != nil {
				return false, nil, fmt.Errorf("fri: layer %d folding row %d: %w", l, r, err)
			}
			folded[r] = field.EvalPoly(coeffs, t)
		}

		if l+1 < len(proof.Components) {
			if len(comp.PolyValues) != len(comp.PolyPositions) {
				return false, nil, fmt.Errorf("fri: layer %d poly value/position count mismatch", l)
			}
			for i, r := range comp.PolyPositions {
				if !folded[r].Equal(comp.PolyValues[i]) {
					return false, nil, fmt.Errorf("fri: layer %d folded value at row %d disagrees with revealed next-layer value", l, r)
				}
			}
			polyLeaves := make([][]byte, len(comp.PolyValues))
			for i, v := range comp.PolyValues {
				polyLeaves[i] = v.Bytes()
			}
			nextRoot := proof.Components[l+1].ColumnRoot
			ok, err := merkle.Verify(hasher, nextRoot, quarter, comp.PolyPositions, polyLeaves, comp.PolyProof)
			if err != nil {
				return false, nil, fmt.Errorf("fri: layer %d poly proof: %w", l, err)
			}
			if !ok {
				return false, nil, fmt.Errorf("fri: layer %d poly proof does not authenticate against the next layer's root", l)
			}
		} else {
			for _, r := range comp.PolyPositions {
				expected := field.EvalPoly(proof.Remainder, nextGen.ExpInt(int64(r)))
				if !folded[r].Equal(expected) {
					return false, nil, fmt.Errorf("fri: final layer folded value at row %d disagrees with the remainder polynomial", r)
				}
			}
		}

		curN, curGen = quarter, nextGen
	}

	if len(proof.Remainder) <= maxRemainderDegree {
		return true, initialValues, nil
	}
	for i := maxRemainderDegree + 1; i < len(proof.Remainder); i++ {
		if !proof.Remainder[i].IsZero() {
			return false, nil, fmt.Errorf("fri: remainder has nonzero coefficient at degree %d > bound %d", i, maxRemainderDegree)
		}
	}
	return true, initialValues, nil
}
