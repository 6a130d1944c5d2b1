package merkle

import (
	"crypto/sha256"
	"testing"
)

type sha256Hasher struct{}

func (sha256Hasher) Hash(data ...[]byte) []byte {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

func leavesOf(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte{byte(i)}
	}
	return out
}

func TestBuildRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := Build(sha256Hasher{}, leavesOf(3)); err == nil {
		t.Fatalf("expected error for non-power-of-two leaf count")
	}
}

func TestSingleLeafProofRoundTrip(t *testing.T) {
	leaves := leavesOf(8)
	tree, err := Build(sha256Hasher{}, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	positions := []int{3}
	proof, err := tree.Prove(positions)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(sha256Hasher{}, tree.Root(), 8, positions, [][]byte{leaves[3]}, proof)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected proof to verify")
	}
}

func TestBatchedProofAcrossManyPositions(t *testing.T) {
	leaves := leavesOf(16)
	tree, err := Build(sha256Hasher{}, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	positions := []int{1, 2, 5, 9, 15}
	queried := make([][]byte, len(positions))
	for i, p := range positions {
		queried[i] = leaves[p]
	}

	proof, err := tree.Prove(positions)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	ok, err := Verify(sha256Hasher{}, tree.Root(), 16, positions, queried, proof)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected batched proof to verify")
	}
}

func TestTamperedLeafFailsVerification(t *testing.T) {
	leaves := leavesOf(8)
	tree, err := Build(sha256Hasher{}, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	positions := []int{4}
	proof, err := tree.Prove(positions)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	tampered := [][]byte{{0xFF}}
	ok, err := Verify(sha256Hasher{}, tree.Root(), 8, positions, tampered, proof)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered leaf to fail verification")
	}
}

func TestDuplicatePositionRejected(t *testing.T) {
	tree, err := Build(sha256Hasher{}, leavesOf(4))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := tree.Prove([]int{1, 1}); err == nil {
		t.Fatalf("expected error for duplicate position")
	}
}
