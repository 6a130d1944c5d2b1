// Package fri implements the Fast Reed-Solomon IOP of Proximity the
// prover and verifier use to show a committed codeword is close to the
// evaluation of a bounded-degree polynomial (spec §4.8). Folding uses a
// fold factor of 4: at each layer the codeword is partitioned into cosets
// of the fourth roots of unity, each coset is committed as a batch of
// Merkle leaves, a transcript-drawn challenge collapses each coset to one
// value via a 4-point inverse NTT, and the process repeats on the
// quarter-sized result until it is small enough to ship as a raw
// coefficient vector (the remainder).
package fri

import (
	"fmt"
	"sort"

	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/merkle"
	"github.com/vybium/gostark/internal/gostark/transcript"
)

// FoldFactor is the number of codeword positions collapsed into one at
// every layer (spec §4.8).
const FoldFactor = 4

// RemainderBound is the codeword length at or below which folding stops
// and the remaining polynomial is transmitted directly as coefficients
// (spec §4.8).
const RemainderBound = 256

// Component is one folded layer of the proof: the Merkle commitment to
// that layer's codeword, the revealed values and batched proof needed to
// authenticate the queried positions, and (for every layer but the last)
// the revealed values and batched proof showing the folded result matches
// the next layer's commitment.
//
// Components[0]'s tree is built directly over the codeword handed to
// Prove with no prior folding — this is the same commitment spec §4.7
// calls the "composition tree" and §4.9 calls the "composition root"; FRI
// does not commit to that codeword a second time under a different name.
type Component struct {
	ColumnRoot []byte

	ColumnPositions []int
	ColumnValues    []*field.Element
	ColumnProof     *merkle.Proof

	// PolyPositions/PolyValues/PolyProof authenticate this layer's folded
	// values against the NEXT layer's tree. On the last component only
	// PolyPositions is set (PolyValues/PolyProof are nil): its folded
	// values at those rows are checked directly against the remainder
	// polynomial instead.
	PolyPositions []int
	PolyValues    []*field.Element
	PolyProof     *merkle.Proof
}

// Proof is the full FRI transcript: one Component per folded layer plus
// the final remainder coefficient vector.
type Proof struct {
	Components []Component
	Remainder  []*field.Element
}

type layer struct {
	tree      *merkle.Tree
	codeword  []*field.Element
	generator *field.Element // generates this layer's domain, order = len(codeword)
}

// Prove folds codeword (the evaluation of a composition polynomial over
// its domain, generated by generator) down to a remainder of at most
// RemainderBound entries, absorbing one column root into tr per layer and
// drawing the matching folding challenge, then builds batched
// authentication paths for queryPositions — indices into the *original*
// codeword's domain. tr must already have absorbed everything the
// transcript ordering requires before the first FRI column root (spec
// §4.9: trace root, then the α/β draw).
func Prove(
	tr *transcript.Transcript,
	f *field.Field,
	hasher merkle.Hasher,
	codeword []*field.Element,
	generator *field.Element,
	queryPositions []int,
) (*Proof, error) {
	if len(codeword)&(len(codeword)-1) != 0 || len(codeword) == 0 {
		return nil, fmt.Errorf("fri: codeword length %d is not a power of two", len(codeword))
	}

	var layers []layer
	cw, gen := codeword, generator
	for len(cw) > RemainderBound {
		leaves := make([][]byte, len(cw))
		for i, e := range cw {
			leaves[i] = e.Bytes()
		}
		tree, err := merkle.Build(hasher, leaves)
		if err != nil {
			return nil, fmt.Errorf("fri: building layer tree: %w", err)
		}
		if err := tr.Absorb(tree.Root()); err != nil {
			return nil, fmt.Errorf("fri: absorbing column root: %w", err)
		}
		x, err := tr.SqueezeElement(f)
		if err != nil {
			return nil, fmt.Errorf("fri: drawing folding challenge: %w", err)
		}

		layers = append(layers, layer{tree: tree, codeword: cw, generator: gen})

		next, err := foldLayer(cw, gen, x)
		if err != nil {
			return nil, fmt.Errorf("fri: folding layer: %w", err)
		}
		cw, gen = next, gen.ExpInt(FoldFactor)
	}

	remainder, err := field.InterpolateRoots(cw, gen)
	if err != nil {
		return nil, fmt.Errorf("fri: interpolating remainder: %w", err)
	}

	components := make([]Component, len(layers))
	for l, ly := range layers {
		n := len(ly.codeword)
		quarter := n / FoldFactor

		rows := dedupMod(queryPositions, quarter)

		colPositions := make([]int, 0, len(rows)*FoldFactor)
		for _, r := range rows {
			for k := 0; k < FoldFactor; k++ {
				colPositions = append(colPositions, r+k*quarter)
			}
		}
		sort.Ints(colPositions)

		colValues := make([]*field.Element, len(colPositions))
		for i, p := range colPositions {
			colValues[i] = ly.codeword[p]
		}
		colProof, err := ly.tree.Prove(colPositions)
		if err != nil {
			return nil, fmt.Errorf("fri: proving layer %d columns: %w", l, err)
		}

		comp := Component{
			ColumnRoot:      ly.tree.Root(),
			ColumnPositions: colPositions,
			ColumnValues:    colValues,
			ColumnProof:     colProof,
		}

		if l+1 < len(layers) {
			nextTree := layers[l+1].tree
			nextCodeword := layers[l+1].codeword
			polyValues := make([]*field.Element, len(rows))
			for i, r := range rows {
				polyValues[i] = nextCodeword[r]
			}
			polyProof, err := nextTree.Prove(rows)
			if err != nil {
				return nil, fmt.Errorf("fri: proving layer %d poly consistency: %w", l, err)
			}
			comp.PolyPositions = rows
			comp.PolyValues = polyValues
			comp.PolyProof = polyProof
		} else {
			comp.PolyPositions = rows
		}
		components[l] = comp
	}

	return &Proof{Components: components, Remainder: remainder}, nil
}

// foldLayer collapses a length-N codeword generated by generator into a
// length-N/4 codeword: row r (0 <= r < N/4) folds the coset {r, r+N/4,
// r+2N/4, r+3N/4} into a single value at challenge x, by inverse-NTT-ing
// the coset's 4 values with the layer's 4th root of unity to recover the
// degree-<4 polynomial through them, then evaluating that polynomial at
// x/generator^r (spec §4.8, "inverse-of-NTT-on-4-points").
func foldLayer(codeword []*field.Element, generator, x *field.Element) ([]*field.Element, error) {
	n := len(codeword)
	quarter := n / FoldFactor
	eta := generator.ExpInt(int64(quarter))
	domainR := field.PowerSeries(generator, quarter)

	next := make([]*field.Element, quarter)
	for r := 0; r < quarter; r++ {
		vals := []*field.Element{codeword[r], codeword[r+quarter], codeword[r+2*quarter], codeword[r+3*quarter]}
		coeffs, err := field.InterpolateRoots(vals, eta)
		if err != nil {
			return nil, err
		}
		t, err := x.Div(domainR[r])
		if err != nil {
			return nil, err
		}
		next[r] = field.EvalPoly(coeffs, t)
	}
	return next, nil
}

// ColumnPositions reduces queryPositions modulo quarter (a layer's folded
// domain size) and expands each resulting row into its full FoldFactor-way
// coset, exactly as Prove does when it builds a layer's batched Merkle
// proof. A verifier reconstructing a Component from the wire format has no
// other way to recover which positions a layer's MerkleWitness covers,
// since the wire format never serializes them.
func ColumnPositions(queryPositions []int, quarter int) (rows, colPositions []int) {
	rows = dedupMod(queryPositions, quarter)
	colPositions = make([]int, 0, len(rows)*FoldFactor)
	for _, r := range rows {
		for k := 0; k < FoldFactor; k++ {
			colPositions = append(colPositions, r+k*quarter)
		}
	}
	sort.Ints(colPositions)
	return rows, colPositions
}

// dedupMod reduces every position modulo m and returns the sorted, deduped
// result.
func dedupMod(positions []int, m int) []int {
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		seen[((p%m)+m)%m] = true
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}
