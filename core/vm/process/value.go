package process

import (
	"fmt"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

// Kind distinguishes plaintext memory entries from secret-shared ones.
type Kind uint8

const (
	// KindPublic marks a plaintext field element.
	KindPublic Kind = iota + 1

	// KindSecret marks an additive share of a secret.
	KindSecret
)

func (kind Kind) String() string {
	switch kind {
	case KindPublic:
		return "public"
	case KindSecret:
		return "secret"
	default:
		return fmt.Sprintf("kind(%d)", uint8(kind))
	}
}

// Value is the interface of anything that can be stored in a Memory.
type Value interface {
	IsValue()
	Kind() Kind
}

// ValuePublic is a plaintext field element. Private inputs are also stored as
// ValuePublic in the memory of the party that knows them; "public" describes
// the representation, not who holds it.
type ValuePublic struct {
	Value algebra.Element
}

// NewValuePublic returns a plaintext Value.
func NewValuePublic(value algebra.Element) ValuePublic {
	return ValuePublic{value}
}

// IsValue implements the Value interface for ValuePublic.
func (lhs ValuePublic) IsValue() {
}

// Kind implements the Value interface for ValuePublic.
func (lhs ValuePublic) Kind() Kind {
	return KindPublic
}

// ValueSecret is one party's additive share of a secret.
type ValueSecret struct {
	Share additive.Share
}

// NewValueSecret returns a secret-shared Value.
func NewValueSecret(share additive.Share) ValueSecret {
	return ValueSecret{share}
}

// IsValue implements the Value interface for ValueSecret.
func (lhs ValueSecret) IsValue() {
}

// Kind implements the Value interface for ValueSecret.
func (lhs ValueSecret) Kind() Kind {
	return KindSecret
}

// Add returns the sum of two Values. Mixed-kind addition folds the public
// constant into the sharing: in an additive scheme the parties' fragments of
// a public constant c are c at party zero and zero everywhere else, so only
// the party with index zero adjusts its share.
func Add(lhs, rhs Value) (Value, error) {
	switch lhs := lhs.(type) {
	case ValuePublic:
		switch rhs := rhs.(type) {
		case ValuePublic:
			return NewValuePublic(lhs.Value.Add(rhs.Value)), nil
		case ValueSecret:
			return addPublic(rhs.Share, lhs.Value), nil
		}
	case ValueSecret:
		switch rhs := rhs.(type) {
		case ValuePublic:
			return addPublic(lhs.Share, rhs.Value), nil
		case ValueSecret:
			share, err := lhs.Share.Add(rhs.Share)
			if err != nil {
				return nil, err
			}
			return NewValueSecret(share), nil
		}
	}
	panic(fmt.Sprintf("unexpected value types %T and %T", lhs, rhs))
}

// Sub returns the difference of two Values, following the same mixed-kind
// rules as Add.
func Sub(lhs, rhs Value) (Value, error) {
	return Add(lhs, Neg(rhs))
}

// Neg returns the additive inverse of a Value.
func Neg(value Value) Value {
	switch value := value.(type) {
	case ValuePublic:
		return NewValuePublic(value.Value.Neg())
	case ValueSecret:
		return NewValueSecret(value.Share.Neg())
	default:
		panic(fmt.Sprintf("unexpected value type %T", value))
	}
}

// Scale returns the product of a Value with a public scalar. Scaling a secret
// value is local: every party multiplies its fragment.
func Scale(value Value, scalar algebra.Element) Value {
	switch value := value.(type) {
	case ValuePublic:
		return NewValuePublic(value.Value.Mul(scalar))
	case ValueSecret:
		return NewValueSecret(value.Share.Scale(scalar))
	default:
		panic(fmt.Sprintf("unexpected value type %T", value))
	}
}

func addPublic(share additive.Share, constant algebra.Element) ValueSecret {
	if share.Index == 0 {
		return NewValueSecret(additive.New(share.Index, share.Value.Add(constant)))
	}
	return NewValueSecret(share)
}
