// Package merkle implements the batched multi-proof Merkle commitment
// layer the prover and verifier use to commit to LDE codewords and FRI
// layers (spec §4.7, §6.3). A single proof authenticates an arbitrary set
// of leaf positions against one root, sharing internal sibling hashes
// across the whole batch instead of repeating a full authentication path
// per position.
package merkle

import (
	"bytes"
	"fmt"
	"sort"
)

// Hasher is the capability the tree needs from the hashing layer: a single
// one-way compression function over concatenated byte strings.
type Hasher interface {
	Hash(data ...[]byte) []byte
}

// Tree is a binary Merkle tree over a power-of-two number of leaves.
type Tree struct {
	hasher Hasher
	layers [][][]byte // layers[0] = leaf hashes, layers[len-1] = [root]
}

// Build hashes leaves and constructs every layer up to the root. len(leaves)
// must be a power of two and at least 1.
func Build(hasher Hasher, leaves [][]byte) (*Tree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, fmt.Errorf("merkle: cannot build a tree with no leaves")
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("merkle: leaf count %d is not a power of two", n)
	}

	leafHashes := make([][]byte, n)
	for i, l := range leaves {
		leafHashes[i] = hasher.Hash(l)
	}

	layers := [][][]byte{leafHashes}
	current := leafHashes
	for len(current) > 1 {
		next := make([][]byte, len(current)/2)
		for i := range next {
			next[i] = hasher.Hash(current[2*i], current[2*i+1])
		}
		layers = append(layers, next)
		current = next
	}
	return &Tree{hasher: hasher, layers: layers}, nil
}

// Root returns the tree's root hash.
func (t *Tree) Root() []byte {
	top := t.layers[len(t.layers)-1]
	return append([]byte(nil), top[0]...)
}

// Depth returns the number of layers above the leaves.
func (t *Tree) Depth() int { return len(t.layers) - 1 }

// Proof is a batched authentication path for a sorted set of leaf
// positions: the minimal set of sibling hashes, layer by layer, that are
// not already implied by another position in the same batch.
type Proof struct {
	Positions []int
	Siblings  [][]byte // flattened, layer-major; see Verify for the consumption order
	Depth     int

	// ColumnCounts[i] is the number of sibling hashes contributed by
	// layer i, so Siblings can be re-split into its per-layer columns
	// (spec §6.4's "nodes matrix") without replaying Prove.
	ColumnCounts []int
}

// Prove authenticates every position in positions in a single batched
// proof. positions need not be sorted; duplicates are rejected.
func (t *Tree) Prove(positions []int) (*Proof, error) {
	n := len(t.layers[0])
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	for i, p := range sorted {
		if p < 0 || p >= n {
			return nil, fmt.Errorf("merkle: position %d out of range [0,%d)", p, n)
		}
		if i > 0 && sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("merkle: duplicate position %d", p)
		}
	}

	var siblings [][]byte
	var columnCounts []int
	known := make(map[int]bool, len(sorted))
	for _, p := range sorted {
		known[p] = true
	}

	for layer := 0; layer < len(t.layers)-1; layer++ {
		current := t.layers[layer]
		nextKnown := make(map[int]bool)
		indices := make([]int, 0, len(known))
		for idx := range known {
			indices = append(indices, idx)
		}
		sort.Ints(indices)
		before := len(siblings)
		for _, idx := range indices {
			sibling := idx ^ 1
			if !known[sibling] {
				siblings = append(siblings, current[sibling])
			}
			nextKnown[idx/2] = true
		}
		columnCounts = append(columnCounts, len(siblings)-before)
		known = nextKnown
	}

	return &Proof{Positions: sorted, Siblings: siblings, Depth: len(t.layers) - 1, ColumnCounts: columnCounts}, nil
}

// Verify checks that leaves (keyed by the same sorted positions used to
// build proof) are consistent with root under the given total leaf count
// and hasher. It reconstructs exactly the sibling consumption order Prove
// used, so the flattened Siblings slice must be walked in lockstep.
func Verify(hasher Hasher, root []byte, totalLeaves int, positions []int, leaves [][]byte, proof *Proof) (bool, error) {
	if len(positions) != len(leaves) {
		return false, fmt.Errorf("merkle: positions/leaves length mismatch")
	}
	sortedPositions := append([]int(nil), positions...)
	sort.Ints(sortedPositions)
	for i := range sortedPositions {
		if sortedPositions[i] != proof.Positions[i] {
			return false, fmt.Errorf("merkle: proof positions do not match requested positions")
		}
	}
	if totalLeaves&(totalLeaves-1) != 0 || totalLeaves <= 0 {
		return false, fmt.Errorf("merkle: total leaf count %d is not a power of two", totalLeaves)
	}

	depth := Log2(totalLeaves)
	if proof.Depth != depth {
		return false, fmt.Errorf("merkle: proof depth %d does not match expected %d", proof.Depth, depth)
	}

	posToLeaf := make(map[int][]byte, len(positions))
	for i, p := range positions {
		posToLeaf[p] = leaves[i]
	}

	known := make(map[int][]byte, len(sortedPositions))
	for _, p := range sortedPositions {
		known[p] = hasher.Hash(posToLeaf[p])
	}

	siblingIdx := 0
	for layer := 0; layer < depth; layer++ {
		indices := make([]int, 0, len(known))
		for idx := range known {
			indices = append(indices, idx)
		}
		sort.Ints(indices)

		next := make(map[int][]byte)
		consumed := make(map[int]bool)
		for _, idx := range indices {
			if consumed[idx] {
				continue
			}
			sibling := idx ^ 1
			var left, right []byte
			if h, ok := known[sibling]; ok {
				consumed[sibling] = true
				if idx < sibling {
					left, right = known[idx], h
				} else {
					left, right = h, known[idx]
				}
			} else {
				if siblingIdx >= len(proof.Siblings) {
					return false, fmt.Errorf("merkle: proof ran out of sibling hashes")
				}
				s := proof.Siblings[siblingIdx]
				siblingIdx++
				if idx%2 == 0 {
					left, right = known[idx], s
				} else {
					left, right = s, known[idx]
				}
			}
			parent := idx / 2
			next[parent] = hasher.Hash(left, right)
		}
		known = next
	}

	if siblingIdx != len(proof.Siblings) {
		return false, fmt.Errorf("merkle: proof has unconsumed sibling hashes")
	}

	computedRoot, ok := known[0]
	if !ok {
		return false, fmt.Errorf("merkle: verification did not converge to a single root")
	}
	return bytes.Equal(computedRoot, root), nil
}

// Log2 returns floor(log2(n)) for a positive power-of-two n.
func Log2(n int) int {
	log := 0
	for n > 1 {
		n >>= 1
		log++
	}
	return log
}
