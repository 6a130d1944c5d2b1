package field

import (
	"crypto/sha256"
	"encoding/binary"
)

// PRNG derives n deterministic field elements from seed by hash-chaining:
// element i is drawn from sha256(seed || i), reduced into the field. This
// gives a reproducible source of "random" field elements derived purely
// from the seed bytes (hash.NewRescue draws its MDS matrix and round
// constants this way), without needing a stateful generator object.
func (f *Field) PRNG(seed []byte, n int) []*Element {
	out := make([]*Element, n)
	counter := make([]byte, 8)
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint64(counter, uint64(i))
		h := sha256.New()
		h.Write(seed)
		h.Write(counter)
		digest := h.Sum(nil)
		out[i] = f.FromBytes(digest)
	}
	return out
}
