// Package proof defines the Proof object the prover emits and the
// verifier consumes, and its exact binary wire format (spec §6.4).
package proof

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/gostark/internal/gostark/air"
	"github.com/vybium/gostark/internal/gostark/field"
	"github.com/vybium/gostark/internal/gostark/fri"
	"github.com/vybium/gostark/internal/gostark/merkle"
)

// MaxArrayLen and MaxMatrixColumnLen are the hard caps spec §6.4 places on
// every length-prefixed array and matrix column: a count of 256 is encoded
// as the byte 0, and anything larger is a hard rejection.
const (
	MaxArrayLen        = 256
	MaxMatrixColumnLen = 127
)

// MerkleWitness is a batched Merkle authentication path together with the
// leaf values it authenticates (the "values array" + "nodes matrix" +
// depth byte shape spec §6.4 item 2 defines once and reuses for every
// later Merkle proof in the format). Positions are not carried on the
// wire: the verifier redraws the same query positions independently from
// its own transcript replay (spec §4.9), so transmitting them again would
// be redundant and would let a malicious prover desynchronize them from
// the transcript.
type MerkleWitness struct {
	Values []*field.Element

	// SiblingCounts[i] and Siblings[i] are layer i's entry count and its
	// raw concatenated hash bytes (SiblingCounts[i]*digestSize bytes).
	SiblingCounts []int
	Siblings      [][]byte
	Depth         int
}

// FromMerkleProof builds a MerkleWitness from a merkle.Proof and the leaf
// values it authenticates, splitting the proof's flat sibling list back
// into its per-layer columns using the proof's recorded column counts.
func FromMerkleProof(values []*field.Element, p *merkle.Proof) (*MerkleWitness, error) {
	if len(p.ColumnCounts) != p.Depth {
		return nil, fmt.Errorf("proof: merkle proof has %d column counts for depth %d", len(p.ColumnCounts), p.Depth)
	}
	siblings := make([][]byte, p.Depth)
	offset := 0
	for i, n := range p.ColumnCounts {
		var col []byte
		for j := 0; j < n; j++ {
			col = append(col, p.Siblings[offset+j]...)
		}
		siblings[i] = col
		offset += n
	}
	return &MerkleWitness{
		Values:        values,
		SiblingCounts: append([]int(nil), p.ColumnCounts...),
		Siblings:      siblings,
		Depth:         p.Depth,
	}, nil
}

// ToMerkleProof reconstructs a merkle.Proof from a decoded witness, given
// the query positions the verifier independently drew.
func (w *MerkleWitness) ToMerkleProof(positions []int) *merkle.Proof {
	var flat [][]byte
	for i, col := range w.Siblings {
		n := w.SiblingCounts[i]
		if n == 0 {
			continue
		}
		size := len(col) / n
		for j := 0; j < n; j++ {
			flat = append(flat, col[j*size:(j+1)*size])
		}
	}
	return &merkle.Proof{Positions: positions, Siblings: flat, Depth: w.Depth, ColumnCounts: w.SiblingCounts}
}

// FRIComponentWire is one entry of the componentCount section: the
// commitment to a folded FRI layer, the witness authenticating the queried
// coset values against it, and the witness showing the *previous* layer's
// folded values agree with this one. FromFRIProof fills PolyProof on every
// entry; the final layer's own folded values have no poly witness and are
// instead checked directly against the remainder polynomial.
type FRIComponentWire struct {
	ColumnRoot  []byte
	ColumnProof *MerkleWitness
	PolyProof   *MerkleWitness
}

// Proof is the complete object a prove() call produces and a verify() call
// consumes (spec §6.5).
type Proof struct {
	TraceRoot  []byte
	TraceProof *MerkleWitness

	// CompositionRoot/CompositionProof are fri.Proof.Components[0]: the
	// tree built directly over the composition codeword before any
	// folding doubles as the composition commitment (see
	// internal/gostark/fri's design notes), so it is not committed a
	// second time under a separate name.
	CompositionRoot  []byte
	CompositionProof *MerkleWitness

	Components []FRIComponentWire
	Remainder  []*field.Element

	// TraceShape holds the AIR's register counts (state, input, public,
	// secret), serialized as four counts. The loop-nesting shape
	// BuildTrace returns is not carried in the proof.
	TraceShape air.RegisterCounts
}

// FromFRIProof converts an internal fri.Proof plus the trace's batched
// Merkle witness into the wire Proof object.
func FromFRIProof(
	traceRoot []byte,
	traceWitness *MerkleWitness,
	fp *fri.Proof,
	traceShape air.RegisterCounts,
) (*Proof, error) {
	if len(fp.Components) == 0 {
		return nil, fmt.Errorf("proof: FRI proof has no layers")
	}
	first := fp.Components[0]
	compWitness, err := FromMerkleProof(first.ColumnValues, first.ColumnProof)
	if err != nil {
		return nil, fmt.Errorf("proof: composition witness: %w", err)
	}

	components := make([]FRIComponentWire, 0, len(fp.Components)-1)
	for i := 1; i < len(fp.Components); i++ {
		cur := fp.Components[i]
		prev := fp.Components[i-1]

		columnWitness, err := FromMerkleProof(cur.ColumnValues, cur.ColumnProof)
		if err != nil {
			return nil, fmt.Errorf("proof: FRI component %d column witness: %w", i, err)
		}
		var polyWitness *MerkleWitness
		if prev.PolyProof != nil {
			polyWitness, err = FromMerkleProof(prev.PolyValues, prev.PolyProof)
			if err != nil {
				return nil, fmt.Errorf("proof: FRI component %d poly witness: %w", i, err)
			}
		}
		components = append(components, FRIComponentWire{
			ColumnRoot:  cur.ColumnRoot,
			ColumnProof: columnWitness,
			PolyProof:   polyWitness,
		})
	}

	return &Proof{
		TraceRoot:        traceRoot,
		TraceProof:       traceWitness,
		CompositionRoot:  first.ColumnRoot,
		CompositionProof: compWitness,
		Components:       components,
		Remainder:        fp.Remainder,
		TraceShape:       traceShape,
	}, nil
}

// ToFRIProof reconstructs an internal fri.Proof from the wire Proof so
// fri.Verify can replay it. queryPositions must be the exact positions the
// verifier independently drew from its own transcript, and
// initialDomainSize the size of the evaluation domain the composition
// codeword was built over — neither is carried on the wire (spec §4.9's
// "redraw independently" rule applies here too), so every layer's column
// and poly-consistency positions are recomputed with fri.ColumnPositions
// rather than read back.
func (p *Proof) ToFRIProof(queryPositions []int, initialDomainSize int) (*fri.Proof, error) {
	total := len(p.Components) + 1
	components := make([]fri.Component, total)
	size := initialDomainSize

	rows, colPositions := fri.ColumnPositions(queryPositions, size/fri.FoldFactor)
	if len(colPositions) != len(p.CompositionProof.Values) {
		return nil, fmt.Errorf("proof: composition witness has %d values, want %d", len(p.CompositionProof.Values), len(colPositions))
	}
	components[0] = fri.Component{
		ColumnRoot:      p.CompositionRoot,
		ColumnPositions: colPositions,
		ColumnValues:    p.CompositionProof.Values,
		ColumnProof:     p.CompositionProof.ToMerkleProof(colPositions),
		PolyPositions:   rows,
	}
	size /= fri.FoldFactor

	for i, c := range p.Components {
		rows, colPositions = fri.ColumnPositions(queryPositions, size/fri.FoldFactor)
		if len(colPositions) != len(c.ColumnProof.Values) {
			return nil, fmt.Errorf("proof: FRI component %d witness has %d values, want %d", i, len(c.ColumnProof.Values), len(colPositions))
		}
		components[i+1] = fri.Component{
			ColumnRoot:      c.ColumnRoot,
			ColumnPositions: colPositions,
			ColumnValues:    c.ColumnProof.Values,
			ColumnProof:     c.ColumnProof.ToMerkleProof(colPositions),
			PolyPositions:   rows,
		}
		if c.PolyProof != nil {
			prevRows := components[i].PolyPositions
			if len(prevRows) != len(c.PolyProof.Values) {
				return nil, fmt.Errorf("proof: FRI component %d poly witness has %d values, want %d", i, len(c.PolyProof.Values), len(prevRows))
			}
			components[i].PolyValues = c.PolyProof.Values
			components[i].PolyProof = c.PolyProof.ToMerkleProof(prevRows)
		}
		size /= fri.FoldFactor
	}

	return &fri.Proof{Components: components, Remainder: p.Remainder}, nil
}

// Serialize encodes p in the little-endian byte layout of spec §6.4, with
// one addition: each FRI component's poly witness is preceded by a one-byte
// presence flag (1 = present, 0 = absent). digestSize is the root/sibling-hash width in bytes (the configured
// hash algorithm's output size).
func Serialize(p *Proof, digestSize int) ([]byte, error) {
	var buf []byte

	buf = append(buf, p.TraceRoot...)
	encoded, err := encodeWitness(p.TraceProof)
	if err != nil {
		return nil, fmt.Errorf("proof: trace witness: %w", err)
	}
	buf = append(buf, encoded...)

	buf = append(buf, p.CompositionRoot...)
	encoded, err = encodeWitness(p.CompositionProof)
	if err != nil {
		return nil, fmt.Errorf("proof: composition witness: %w", err)
	}
	buf = append(buf, encoded...)

	if len(p.Components) > MaxArrayLen {
		return nil, fmt.Errorf("proof: %d FRI components exceeds the %d-entry limit", len(p.Components), MaxArrayLen)
	}
	buf = append(buf, encodeCount(len(p.Components)))
	for i, c := range p.Components {
		buf = append(buf, c.ColumnRoot...)
		encoded, err = encodeWitness(c.ColumnProof)
		if err != nil {
			return nil, fmt.Errorf("proof: FRI component %d column witness: %w", i, err)
		}
		buf = append(buf, encoded...)

		hasPoly := byte(0)
		if c.PolyProof != nil {
			hasPoly = 1
		}
		buf = append(buf, hasPoly)
		if c.PolyProof != nil {
			encoded, err = encodeWitness(c.PolyProof)
			if err != nil {
				return nil, fmt.Errorf("proof: FRI component %d poly witness: %w", i, err)
			}
			buf = append(buf, encoded...)
		}
	}

	if len(p.Remainder) > MaxArrayLen {
		return nil, fmt.Errorf("proof: remainder length %d exceeds the %d-entry limit", len(p.Remainder), MaxArrayLen)
	}
	buf = append(buf, encodeCount(len(p.Remainder)))
	for _, e := range p.Remainder {
		buf = append(buf, e.Bytes()...)
	}

	shape := []int{p.TraceShape.State, p.TraceShape.Input, p.TraceShape.Public, p.TraceShape.Secret}
	buf = append(buf, byte(len(shape)))
	for _, n := range shape {
		var width [4]byte
		binary.LittleEndian.PutUint32(width[:], uint32(n))
		buf = append(buf, width[:]...)
	}

	return buf, nil
}

// Decode parses bytes produced by Serialize. f supplies the field-element
// byte width, digestSize the root/sibling-hash byte width.
func Decode(data []byte, f *field.Field, digestSize int) (*Proof, error) {
	r := &reader{data: data}

	traceRoot, err := r.bytes(digestSize)
	if err != nil {
		return nil, fmt.Errorf("proof: trace root: %w", err)
	}
	traceWitness, err := decodeWitness(r, f, digestSize)
	if err != nil {
		return nil, fmt.Errorf("proof: trace witness: %w", err)
	}

	compRoot, err := r.bytes(digestSize)
	if err != nil {
		return nil, fmt.Errorf("proof: composition root: %w", err)
	}
	compWitness, err := decodeWitness(r, f, digestSize)
	if err != nil {
		return nil, fmt.Errorf("proof: composition witness: %w", err)
	}

	componentCountByte, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("proof: component count: %w", err)
	}
	componentCount := decodeCount(componentCountByte)

	components := make([]FRIComponentWire, componentCount)
	for i := 0; i < componentCount; i++ {
		root, err := r.bytes(digestSize)
		if err != nil {
			return nil, fmt.Errorf("proof: FRI component %d root: %w", i, err)
		}
		colWitness, err := decodeWitness(r, f, digestSize)
		if err != nil {
			return nil, fmt.Errorf("proof: FRI component %d column witness: %w", i, err)
		}
		hasPoly, err := r.byte()
		if err != nil {
			return nil, fmt.Errorf("proof: FRI component %d poly flag: %w", i, err)
		}
		var polyWitness *MerkleWitness
		if hasPoly != 0 {
			polyWitness, err = decodeWitness(r, f, digestSize)
			if err != nil {
				return nil, fmt.Errorf("proof: FRI component %d poly witness: %w", i, err)
			}
		}
		components[i] = FRIComponentWire{ColumnRoot: root, ColumnProof: colWitness, PolyProof: polyWitness}
	}

	remLenByte, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("proof: remainder length: %w", err)
	}
	remLen := decodeCount(remLenByte)
	remainder := make([]*field.Element, remLen)
	for i := 0; i < remLen; i++ {
		b, err := r.bytes(f.ByteLen())
		if err != nil {
			return nil, fmt.Errorf("proof: remainder element %d: %w", i, err)
		}
		remainder[i] = f.FromBytes(b)
	}

	shapeDepth, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("proof: trace shape depth: %w", err)
	}
	shape := make([]int, shapeDepth)
	for i := 0; i < int(shapeDepth); i++ {
		b, err := r.bytes(4)
		if err != nil {
			return nil, fmt.Errorf("proof: trace shape entry %d: %w", i, err)
		}
		shape[i] = int(binary.LittleEndian.Uint32(b))
	}
	var traceShape air.RegisterCounts
	if len(shape) > 0 {
		traceShape.State = shape[0]
	}
	if len(shape) > 1 {
		traceShape.Input = shape[1]
	}
	if len(shape) > 2 {
		traceShape.Public = shape[2]
	}
	if len(shape) > 3 {
		traceShape.Secret = shape[3]
	}

	if !r.exhausted() {
		return nil, fmt.Errorf("proof: %d trailing bytes after a complete proof", len(r.data)-r.pos)
	}

	return &Proof{
		TraceRoot:        traceRoot,
		TraceProof:       traceWitness,
		CompositionRoot:  compRoot,
		CompositionProof: compWitness,
		Components:       components,
		Remainder:        remainder,
		TraceShape:       traceShape,
	}, nil
}

// SizeOf reports the exact serialized byte length of p by serializing it
// and measuring the result (spec §6.5 sizeOf).
func SizeOf(p *Proof, digestSize int) (int, error) {
	encoded, err := Serialize(p, digestSize)
	if err != nil {
		return 0, err
	}
	return len(encoded), nil
}

func encodeCount(n int) byte {
	if n == MaxArrayLen {
		return 0
	}
	return byte(n)
}

func decodeCount(b byte) int {
	if b == 0 {
		return MaxArrayLen
	}
	return int(b)
}

func encodeWitness(w *MerkleWitness) ([]byte, error) {
	var buf []byte
	if len(w.Values) > MaxArrayLen {
		return nil, fmt.Errorf("proof: %d leaf values exceeds the %d-entry limit", len(w.Values), MaxArrayLen)
	}
	buf = append(buf, encodeCount(len(w.Values)))
	for _, v := range w.Values {
		buf = append(buf, v.Bytes()...)
	}

	if w.Depth > MaxMatrixColumnLen {
		return nil, fmt.Errorf("proof: witness depth %d exceeds the %d-column limit", w.Depth, MaxMatrixColumnLen)
	}
	buf = append(buf, byte(w.Depth))
	for i, col := range w.Siblings {
		n := w.SiblingCounts[i]
		if n > MaxMatrixColumnLen {
			return nil, fmt.Errorf("proof: matrix column of %d entries exceeds the %d limit", n, MaxMatrixColumnLen)
		}
		buf = append(buf, byte(n))
		buf = append(buf, col...)
	}
	return buf, nil
}

func decodeWitness(r *reader, f *field.Field, digestSize int) (*MerkleWitness, error) {
	valueCountByte, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("value count: %w", err)
	}
	valueCount := decodeCount(valueCountByte)
	values := make([]*field.Element, valueCount)
	for i := 0; i < valueCount; i++ {
		b, err := r.bytes(f.ByteLen())
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = f.FromBytes(b)
	}

	depthByte, err := r.byte()
	if err != nil {
		return nil, fmt.Errorf("depth: %w", err)
	}
	depth := int(depthByte)

	counts := make([]int, depth)
	siblings := make([][]byte, depth)
	for i := 0; i < depth; i++ {
		n, err := r.byte()
		if err != nil {
			return nil, fmt.Errorf("column %d count: %w", i, err)
		}
		counts[i] = int(n)
		col, err := r.bytes(int(n) * digestSize)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		siblings[i] = col
	}

	return &MerkleWitness{Values: values, SiblingCounts: counts, Siblings: siblings, Depth: depth}, nil
}

// reader is a minimal forward-only byte cursor shared by every Decode step.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) byte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("unexpected end of proof data")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("unexpected end of proof data, wanted %d bytes", n)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) exhausted() bool { return r.pos == len(r.data) }
