package algebra

import (
	"errors"
	"fmt"
	"math/bits"
)

// The field is fixed to GF(p) with p = 2^61 - 1, a Mersenne prime. Fixing the
// modulus lets every element fit in a single machine word and gives the
// reduction a fast split-and-fold form: 2^61 ≡ 1 (mod p), so any value can be
// reduced by adding its high and low 61-bit halves.
const (
	// Power is the exponent k in p = 2^k - 1.
	Power = 61

	// P is the field modulus.
	P uint64 = 1<<Power - 1
)

// ErrDivisionByZero signifies that the multiplicative inverse of the additive
// identity was requested.
var ErrDivisionByZero = errors.New("division by zero")

// An Element of GF(2^61 - 1). The zero value of the type is the additive
// identity of the field. Elements are immutable; operations return new
// Elements. Every Element is stored fully reduced, in [0, p).
type Element uint64

// NewElement returns the canonical representative of x modulo p.
func NewElement(x uint64) Element {
	return Element(Reduce(x))
}

// Reduce returns the canonical representative of x modulo p. It accepts any
// uint64, including values in [p, 2^64).
func Reduce(x uint64) uint64 {
	// x = hi*2^61 + lo ≡ hi + lo (mod p), with hi < 2^3.
	x = (x >> Power) + (x & P)
	if x >= P {
		x -= P
	}
	return x
}

// ReduceWide returns the canonical representative of hi*2^64 + lo modulo p.
// It accepts the full 128-bit range, so the product of any two 64-bit values
// reduces without precision loss.
func ReduceWide(hi, lo uint64) uint64 {
	// 2^64 ≡ 2^3 (mod p) since 2^61 ≡ 1.
	h := Reduce(hi)
	h = Reduce(h << 3)
	l := Reduce(lo)

	s := h + l
	if s >= P {
		s -= P
	}
	return s
}

// Uint64 returns the canonical value of the element.
func (a Element) Uint64() uint64 {
	return uint64(a)
}

// IsZero returns true if the element is the additive identity.
func (a Element) IsZero() bool {
	return a == 0
}

// Add returns a + b in the field.
func (a Element) Add(b Element) Element {
	s := uint64(a) + uint64(b)
	if s >= P {
		s -= P
	}
	return Element(s)
}

// Sub returns a - b in the field. The modulus is added before reduction so
// the intermediate never wraps below zero.
func (a Element) Sub(b Element) Element {
	s := uint64(a) + (P - uint64(b))
	if s >= P {
		s -= P
	}
	return Element(s)
}

// Neg returns the additive inverse of a.
func (a Element) Neg() Element {
	if a == 0 {
		return 0
	}
	return Element(P - uint64(a))
}

// Mul returns a * b in the field. The 122-bit product is folded back into the
// field via ReduceWide.
func (a Element) Mul(b Element) Element {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return Element(ReduceWide(hi, lo))
}

// Exp returns a^e in the field by square-and-multiply.
func (a Element) Exp(e uint64) Element {
	result := Element(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		e >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a, computed as a^(p-2) by
// Fermat's little theorem. It returns ErrDivisionByZero when a is the
// additive identity.
func (a Element) Inv() (Element, error) {
	if a == 0 {
		return 0, ErrDivisionByZero
	}
	return a.Exp(P - 2), nil
}

func (a Element) String() string {
	return fmt.Sprintf("%d", uint64(a))
}
