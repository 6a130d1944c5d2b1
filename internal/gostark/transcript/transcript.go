// Package transcript implements the Fiat-Shamir transcript the prover and
// verifier use to turn interactive randomness into a deterministic,
// replayable sequence of challenges (spec §4.6). A transcript is seeded
// once, then alternates between absorbing prover messages and squeezing
// verifier challenges; absorbing and squeezing the same sequence of
// messages on both sides yields identical challenges, which is what lets
// the verifier recompute everything the prover claims to have sampled.
package transcript

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vybium/gostark/internal/gostark/field"
)

// Digest is the capability this package needs from the hashing layer.
type Digest interface {
	Hash(data ...[]byte) []byte
}

type state int

const (
	stateUninitialized state = iota
	stateSeeded
)

// Transcript is a stateful Fiat-Shamir absorb/squeeze channel.
type Transcript struct {
	digest    Digest
	state     state
	running   []byte
	squeezeCt uint64
}

// New constructs an unseeded transcript over digest.
func New(digest Digest) *Transcript {
	return &Transcript{digest: digest, state: stateUninitialized}
}

// Seed initializes the transcript's running state from public data (e.g.
// the AIR's name, trace length, and public assertions), moving it out of
// the Uninitialized state. Seed may only be called once.
func (t *Transcript) Seed(publicData ...[]byte) error {
	if t.state != stateUninitialized {
		return fmt.Errorf("transcript: Seed called after transcript was already seeded")
	}
	t.running = t.digest.Hash(publicData...)
	t.state = stateSeeded
	t.squeezeCt = 0
	return nil
}

func (t *Transcript) requireSeeded() error {
	if t.state != stateSeeded {
		return fmt.Errorf("transcript: operation requires a seeded transcript")
	}
	return nil
}

// Absorb mixes prover-supplied bytes (e.g. a Merkle root) into the running
// state. Resets the squeeze counter so that challenges drawn after this
// point depend on everything absorbed so far.
func (t *Transcript) Absorb(data ...[]byte) error {
	if err := t.requireSeeded(); err != nil {
		return err
	}
	args := append([][]byte{t.running}, data...)
	t.running = t.digest.Hash(args...)
	t.squeezeCt = 0
	return nil
}

// AbsorbElements absorbs a sequence of field elements, e.g. a batch of
// queried codeword values.
func (t *Transcript) AbsorbElements(elements []*field.Element) error {
	data := make([][]byte, len(elements))
	for i, e := range elements {
		data[i] = e.Bytes()
	}
	return t.Absorb(data...)
}

// Squeeze draws n pseudorandom bytes from the current running state
// without mutating it beyond advancing an internal counter, so repeated
// Squeeze calls after the same Absorb sequence yield a deterministic
// stream of distinct outputs.
func (t *Transcript) Squeeze(n int) ([]byte, error) {
	if err := t.requireSeeded(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, n)
	for len(out) < n {
		counter := make([]byte, 8)
		binary.BigEndian.PutUint64(counter, t.squeezeCt)
		t.squeezeCt++
		out = append(out, t.digest.Hash(t.running, counter)...)
	}
	return out[:n], nil
}

// SqueezeElement draws a single challenge element in f.
func (t *Transcript) SqueezeElement(f *field.Field) (*field.Element, error) {
	b, err := t.Squeeze(f.ByteLen())
	if err != nil {
		return nil, err
	}
	return f.FromBytes(b), nil
}

// SqueezeElements draws n challenge elements in f.
func (t *Transcript) SqueezeElements(f *field.Field, n int) ([]*field.Element, error) {
	out := make([]*field.Element, n)
	for i := range out {
		e, err := t.SqueezeElement(f)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// SqueezeIndices draws n pseudorandom indices in [0, bound), used to choose
// FRI query positions. bound need not be a power of two; rejection
// sampling over a byte stream keeps the distribution unbiased.
func (t *Transcript) SqueezeIndices(bound, n int) ([]int, error) {
	if bound <= 0 {
		return nil, fmt.Errorf("transcript: bound must be positive")
	}
	boundBig := big.NewInt(int64(bound))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		b, err := t.Squeeze(8)
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(b)
		out[i] = int(new(big.Int).Mod(v, boundBig).Int64())
	}
	return out, nil
}
