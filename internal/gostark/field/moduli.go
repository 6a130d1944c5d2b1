package field

import "math/big"

// Goldilocks returns the field F_p with p = 2^64 - 2^32 + 1, the prime used
// by the fast-arithmetic pipeline (64-bit values, 2-adicity 32: p-1 is
// divisible by 2^32, so the field has roots of unity of any power-of-two
// order up to 2^32).
func Goldilocks() (*Field, error) {
	p := new(big.Int).SetUint64(18446744069414584321)
	return New(p, 8)
}

// GenSTARK128 returns the field F_p with p = 2^128 - 9*2^64 + 1, the prime
// used by the wide-arithmetic pipeline (128-bit values, 2-adicity 64).
func GenSTARK128() (*Field, error) {
	p, ok := new(big.Int).SetString("340282366920938463463374607393113505793", 10)
	if !ok {
		panic("field: malformed genSTARK-128 modulus literal")
	}
	return New(p, 16)
}

// MustGoldilocks panics on construction failure; used in tests and example
// wiring where the modulus is known-good at compile time.
func MustGoldilocks() *Field {
	f, err := Goldilocks()
	if err != nil {
		panic(err)
	}
	return f
}

// MustGenSTARK128 panics on construction failure; see MustGoldilocks.
func MustGenSTARK128() *Field {
	f, err := GenSTARK128()
	if err != nil {
		panic(err)
	}
	return f
}
