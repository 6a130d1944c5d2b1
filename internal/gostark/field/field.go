// Package field implements the finite-field capability interface the prover
// and verifier core consume (spec §6.2): scalar and vector arithmetic,
// batch inversion, NTT/iNTT over roots of unity, and a deterministic
// field-element PRNG. Two concrete moduli are exposed by moduli.go.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Field is a prime field F_p. The modulus is fixed at construction.
type Field struct {
	modulus *big.Int
	// byteLen is the fixed width used by Element.Bytes, so that every leaf
	// serialized into a Merkle tree has the same length regardless of the
	// element's numeric value (design note: big-endian fixed-width leaves).
	byteLen int
}

// Element is a value in [0, p).
type Element struct {
	field *Field
	value *big.Int
}

// New constructs a field with the given modulus. byteLen is the fixed
// serialization width in bytes (must be large enough to hold modulus-1).
func New(modulus *big.Int, byteLen int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("field: modulus must be greater than 2")
	}
	needed := (modulus.BitLen() + 7) / 8
	if byteLen < needed {
		return nil, fmt.Errorf("field: byteLen %d too small for modulus (needs %d)", byteLen, needed)
	}
	return &Field{modulus: new(big.Int).Set(modulus), byteLen: byteLen}, nil
}

// Modulus returns a copy of the field modulus.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.modulus) }

// ByteLen returns the fixed element serialization width.
func (f *Field) ByteLen() int { return f.byteLen }

// Equals reports whether two fields share the same modulus.
func (f *Field) Equals(other *Field) bool { return f.modulus.Cmp(other.modulus) == 0 }

// NewElement reduces value mod p and wraps it.
func (f *Field) NewElement(value *big.Int) *Element {
	v := new(big.Int).Mod(value, f.modulus)
	return &Element{field: f, value: v}
}

// NewFromInt64 is a convenience constructor.
func (f *Field) NewFromInt64(v int64) *Element { return f.NewElement(big.NewInt(v)) }

// NewFromUint64 is a convenience constructor.
func (f *Field) NewFromUint64(v uint64) *Element {
	return f.NewElement(new(big.Int).SetUint64(v))
}

// Zero returns the additive identity.
func (f *Field) Zero() *Element { return &Element{field: f, value: big.NewInt(0)} }

// One returns the multiplicative identity.
func (f *Field) One() *Element { return &Element{field: f, value: big.NewInt(1)} }

// RandomElement draws a uniformly random element using crypto/rand.
func (f *Field) RandomElement() (*Element, error) {
	v, err := rand.Int(rand.Reader, f.modulus)
	if err != nil {
		return nil, fmt.Errorf("field: random element: %w", err)
	}
	return &Element{field: f, value: v}, nil
}

// Field returns the field this element belongs to.
func (e *Element) Field() *Field { return e.field }

// Big returns a copy of the element's value as a big.Int.
func (e *Element) Big() *big.Int { return new(big.Int).Set(e.value) }

func (e *Element) requireSameField(other *Element) {
	if !e.field.Equals(other.field) {
		panic("field: operands from different fields")
	}
}

// Add returns e + other.
func (e *Element) Add(other *Element) *Element {
	e.requireSameField(other)
	return e.field.NewElement(new(big.Int).Add(e.value, other.value))
}

// Sub returns e - other.
func (e *Element) Sub(other *Element) *Element {
	e.requireSameField(other)
	return e.field.NewElement(new(big.Int).Sub(e.value, other.value))
}

// Neg returns -e.
func (e *Element) Neg() *Element {
	return e.field.NewElement(new(big.Int).Neg(e.value))
}

// Mul returns e * other.
func (e *Element) Mul(other *Element) *Element {
	e.requireSameField(other)
	return e.field.NewElement(new(big.Int).Mul(e.value, other.value))
}

// Square returns e * e.
func (e *Element) Square() *Element { return e.Mul(e) }

// Inv returns the multiplicative inverse of e. Errors on zero.
func (e *Element) Inv() (*Element, error) {
	if e.value.Sign() == 0 {
		return nil, fmt.Errorf("field: inverse of zero")
	}
	inv := new(big.Int).ModInverse(e.value, e.field.modulus)
	if inv == nil {
		return nil, fmt.Errorf("field: no inverse exists")
	}
	return &Element{field: e.field, value: inv}, nil
}

// Div returns e / other.
func (e *Element) Div(other *Element) (*Element, error) {
	e.requireSameField(other)
	inv, err := other.Inv()
	if err != nil {
		return nil, fmt.Errorf("field: division: %w", err)
	}
	return e.Mul(inv), nil
}

// Exp returns e^exponent via modular exponentiation.
func (e *Element) Exp(exponent *big.Int) *Element {
	if exponent.Sign() < 0 {
		inv, err := e.Inv()
		if err != nil {
			panic(err)
		}
		return inv.Exp(new(big.Int).Neg(exponent))
	}
	return e.field.NewElement(new(big.Int).Exp(e.value, exponent, e.field.modulus))
}

// ExpInt is a convenience wrapper around Exp for small exponents.
func (e *Element) ExpInt(exponent int64) *Element { return e.Exp(big.NewInt(exponent)) }

// Equal reports value equality within the same field.
func (e *Element) Equal(other *Element) bool {
	if !e.field.Equals(other.field) {
		return false
	}
	return e.value.Cmp(other.value) == 0
}

// IsZero reports whether e is the additive identity.
func (e *Element) IsZero() bool { return e.value.Sign() == 0 }

// IsOne reports whether e is the multiplicative identity.
func (e *Element) IsOne() bool { return e.value.Cmp(big.NewInt(1)) == 0 }

// String renders the element's decimal value.
func (e *Element) String() string { return e.value.String() }

// Bytes serializes the element big-endian, zero-padded to the field's fixed
// byte width. Design note: leaf bytes must be big-endian and fixed-width so
// Merkle roots are stable across implementations (spec §9 open question).
func (e *Element) Bytes() []byte {
	out := make([]byte, e.field.byteLen)
	b := e.value.Bytes()
	copy(out[len(out)-len(b):], b)
	return out
}

// FromBytes reconstructs an element from a big-endian byte slice produced by
// Bytes.
func (f *Field) FromBytes(b []byte) *Element {
	return f.NewElement(new(big.Int).SetBytes(b))
}
