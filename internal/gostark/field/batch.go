package field

import (
	"fmt"
	"sync"
)

// parallelThreshold is the minimum slice length below which the parallel
// batch helpers fall back to a serial loop; goroutine dispatch overhead
// dominates for short inputs.
const parallelThreshold = 1000

// BatchInversion inverts every element of elements in a single pass using
// Montgomery's trick: accumulate running products, invert the final
// product once, then back-substitute. Cheaper than len(elements)
// independent extended-Euclidean inversions.
func BatchInversion(elements []*Element) ([]*Element, error) {
	n := len(elements)
	if n == 0 {
		return nil, nil
	}
	f := elements[0].Field()
	for _, e := range elements {
		if e.IsZero() {
			return nil, fmt.Errorf("field: batch inversion of zero element")
		}
	}

	prefix := make([]*Element, n)
	acc := f.One()
	for i, e := range elements {
		prefix[i] = acc
		acc = acc.Mul(e)
	}

	accInv, err := acc.Inv()
	if err != nil {
		return nil, fmt.Errorf("field: batch inversion: %w", err)
	}

	out := make([]*Element, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = prefix[i].Mul(accInv)
		accInv = accInv.Mul(elements[i])
	}
	return out, nil
}

// ParallelBatchInversion behaves like BatchInversion but splits work across
// numWorkers goroutines when the input is large enough to amortize the
// dispatch cost. Each chunk is inverted independently (Montgomery's trick
// does not need cross-chunk state), so results are deterministic and
// identical to the serial computation regardless of worker count.
func ParallelBatchInversion(elements []*Element, numWorkers int) ([]*Element, error) {
	n := len(elements)
	if n < parallelThreshold || numWorkers <= 1 {
		return BatchInversion(elements)
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	out := make([]*Element, n)
	var wg sync.WaitGroup
	errCh := make(chan error, numWorkers)

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			chunk, err := BatchInversion(elements[start:end])
			if err != nil {
				errCh <- err
				return
			}
			copy(out[start:end], chunk)
		}(start, end)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

func runParallel(n, numWorkers int, apply func(i int)) {
	if n < parallelThreshold || numWorkers <= 1 {
		for i := 0; i < n; i++ {
			apply(i)
		}
		return
	}
	chunkSize := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				apply(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// CombineVectors returns the element-wise sum of a and b.
func CombineVectors(a, b []*Element) ([]*Element, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make([]*Element, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out, nil
}

// CombineManyVectors returns the element-wise sum of an arbitrary number of
// equal-length vectors, as used to assemble a random linear combination of
// constraint evaluations into the composition polynomial.
func CombineManyVectors(vectors [][]*Element) ([]*Element, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("field: no vectors to combine")
	}
	n := len(vectors[0])
	for _, v := range vectors {
		if len(v) != n {
			return nil, fmt.Errorf("field: vector length mismatch")
		}
	}
	out := make([]*Element, n)
	for i := 0; i < n; i++ {
		acc := vectors[0][i]
		for _, v := range vectors[1:] {
			acc = acc.Add(v[i])
		}
		out[i] = acc
	}
	return out, nil
}

// ScaleVector multiplies every element of a by scalar.
func ScaleVector(a []*Element, scalar *Element) []*Element {
	out := make([]*Element, len(a))
	for i, e := range a {
		out[i] = e.Mul(scalar)
	}
	return out
}

// MulVectors returns the element-wise product of a and b.
func MulVectors(a, b []*Element) ([]*Element, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make([]*Element, len(a))
	for i := range a {
		out[i] = a[i].Mul(b[i])
	}
	return out, nil
}

// ParallelMulVectors multiplies two equal-length vectors element-wise,
// chunking the work across numWorkers goroutines for large inputs. Grounded
// on the worker-chunked pattern used for batch field operations: the output
// slice is pre-sized and each goroutine writes only its own index range, so
// results are deterministic regardless of scheduling.
func ParallelMulVectors(a, b []*Element, numWorkers int) ([]*Element, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("field: vector length mismatch %d != %d", len(a), len(b))
	}
	out := make([]*Element, len(a))
	runParallel(len(a), numWorkers, func(i int) {
		out[i] = a[i].Mul(b[i])
	})
	return out, nil
}
