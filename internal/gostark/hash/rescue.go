package hash

import (
	"math/big"

	"github.com/vybium/gostark/internal/gostark/field"
)

// Rescue is a field-friendly permutation in the Rescue family: alternating
// rounds of a forward S-box (x -> x^alpha) and its inverse, each sandwiched
// between an MDS mixing matrix and round-constant addition. Its low-degree
// algebraic structure is what makes it cheap to express as AIR transition
// constraints, which is why the hash-preimage example AIR uses it instead
// of a bit-oriented hash like SHA-256 or BLAKE2s.
type Rescue struct {
	f         *field.Field
	width     int
	rounds    int
	alpha     int64
	alphaInv  *big.Int
	mds       [][]*field.Element
	constants [][]*field.Element // 2*rounds rows, width columns
}

// NewRescue builds a Rescue permutation over f with the given state width
// and round count, using the default S-box exponent 7. The MDS matrix and
// round constants are derived deterministically from a fixed
// domain-separation seed via the field's PRNG, so every caller
// constructing a Rescue instance over the same field and parameters gets
// an identical permutation.
func NewRescue(f *field.Field, width, rounds int) *Rescue {
	return NewRescueWithAlpha(f, width, rounds, 7)
}

// NewRescueWithAlpha is NewRescue with an explicit S-box exponent. alpha
// must be coprime to f's multiplicative group order (p-1): Goldilocks'
// p-1 is divisible by 3, so alpha=3 only works over a field like
// GenSTARK128 whose p-1 is not.
func NewRescueWithAlpha(f *field.Field, width, rounds int, alpha int64) *Rescue {
	pMinusOne := new(big.Int).Sub(f.Modulus(), big.NewInt(1))
	alphaInv := new(big.Int).ModInverse(big.NewInt(alpha), pMinusOne)
	if alphaInv == nil {
		panic("hash: rescue alpha has no inverse mod p-1; choose a different alpha")
	}

	mdsSeed := f.PRNG([]byte("rescue-mds"), width*width)
	mds := make([][]*field.Element, width)
	for i := range mds {
		mds[i] = mdsSeed[i*width : (i+1)*width]
	}

	constants := f.PRNG([]byte("rescue-round-constants"), 2*rounds*width)
	rows := make([][]*field.Element, 2*rounds)
	for i := range rows {
		rows[i] = constants[i*width : (i+1)*width]
	}

	return &Rescue{
		f:         f,
		width:     width,
		rounds:    rounds,
		alpha:     alpha,
		alphaInv:  alphaInv,
		mds:       mds,
		constants: rows,
	}
}

// Width returns the permutation's state size.
func (r *Rescue) Width() int { return r.width }

// Rounds returns the number of full Rescue rounds (each with a forward and
// an inverse S-box layer).
func (r *Rescue) Rounds() int { return r.rounds }

// Alpha returns the forward S-box exponent.
func (r *Rescue) Alpha() int64 { return r.alpha }

// MDS returns the width x width mixing matrix shared by every round.
func (r *Rescue) MDS() [][]*field.Element { return r.mds }

// RoundConstants returns the constant row added after sub-round half (0 <=
// half < 2*Rounds()): even halves are a round's forward-S-box layer, odd
// halves its inverse-S-box layer, matching Permute's round loop.
func (r *Rescue) RoundConstants(half int) []*field.Element { return r.constants[half] }

// MulMDS left-multiplies state by the MDS matrix; exported so a caller
// building its own round function out of Rescue's parameters (e.g. an AIR
// using only the forward half-rounds) can reuse the exact same mixing step
// Permute uses.
func (r *Rescue) MulMDS(state []*field.Element) []*field.Element { return r.mulMDS(state) }

func (r *Rescue) mulMDS(state []*field.Element) []*field.Element {
	out := make([]*field.Element, r.width)
	for i := 0; i < r.width; i++ {
		acc := r.f.Zero()
		for j := 0; j < r.width; j++ {
			acc = acc.Add(r.mds[i][j].Mul(state[j]))
		}
		out[i] = acc
	}
	return out
}

func addConstants(state, row []*field.Element) []*field.Element {
	out := make([]*field.Element, len(state))
	for i := range state {
		out[i] = state[i].Add(row[i])
	}
	return out
}

// Permute applies the full Rescue permutation to state in place, returning
// the final state. len(state) must equal Width().
func (r *Rescue) Permute(state []*field.Element) []*field.Element {
	if len(state) != r.width {
		panic("hash: rescue state width mismatch")
	}
	current := append([]*field.Element(nil), state...)

	for round := 0; round < r.rounds; round++ {
		forward := make([]*field.Element, r.width)
		for i, s := range current {
			forward[i] = s.ExpInt(r.alpha)
		}
		current = addConstants(r.mulMDS(forward), r.constants[2*round])

		inverse := make([]*field.Element, r.width)
		for i, s := range current {
			inverse[i] = s.Exp(r.alphaInv)
		}
		current = addConstants(r.mulMDS(inverse), r.constants[2*round+1])
	}
	return current
}

// Hash sponges an arbitrary-length sequence of field elements through the
// permutation (rate = width-1, capacity = 1) and returns the single
// capacity-adjacent element as the digest. The hash-preimage example AIR
// does not use Hash: it builds its own forward-only round function from
// MulMDS and RoundConstants.
func (r *Rescue) Hash(input []*field.Element) *field.Element {
	rate := r.width - 1
	state := make([]*field.Element, r.width)
	for i := range state {
		state[i] = r.f.Zero()
	}

	for i := 0; i < len(input); i += rate {
		end := i + rate
		if end > len(input) {
			end = len(input)
		}
		for j := i; j < end; j++ {
			state[j-i] = state[j-i].Add(input[j])
		}
		state = r.Permute(state)
	}
	return state[0]
}
