package process

import (
	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
)

// An Inst is one step of a circuit description. The same instruction sequence
// is executed by every party; instructions that mention a party index behave
// differently on the owning party than on its peers.
type Inst interface {
	IsInst()
}

// A Program is an ordered instruction sequence shared by all parties.
type Program []Inst

// Validate checks that every party index mentioned by the Program is below
// the party count.
func (prog Program) Validate(n uint64) error {
	for pc, inst := range prog {
		switch inst := inst.(type) {
		case instInput:
			if inst.party >= n {
				return xerrors.Errorf("inst %d: input party %d out of range for %d parties", pc, inst.party, n)
			}
		case instShare:
			if inst.owner >= n {
				return xerrors.Errorf("inst %d: share owner %d out of range for %d parties", pc, inst.owner, n)
			}
		}
	}
	return nil
}

type instInput struct {
	dst   Ref
	party uint64
}

// InstInput records a private input at `dst` in the memory of `party`. Only
// the owning party learns the value; the input itself is supplied out of band
// when the session starts, never through the shared Program.
func InstInput(dst Ref, party uint64) Inst {
	return instInput{dst, party}
}

// IsInst implements the Inst interface.
func (inst instInput) IsInst() {
}

type instPublic struct {
	dst   Ref
	value algebra.Element
}

// InstPublic records a public constant at `dst` in the memory of every party.
func InstPublic(dst Ref, value algebra.Element) Inst {
	return instPublic{dst, value}
}

// IsInst implements the Inst interface.
func (inst instPublic) IsInst() {
}

type instShare struct {
	dst   Ref
	src   Ref
	owner uint64
}

// InstShare splits the plaintext held by `owner` at `src` into one additive
// share per party. The owner keeps its fragment and sends one fragment to
// each peer; every party stores its fragment at `dst`. This is the only
// instruction that communicates during the input phase.
func InstShare(dst, src Ref, owner uint64) Inst {
	return instShare{dst, src, owner}
}

// IsInst implements the Inst interface.
func (inst instShare) IsInst() {
}

type instAdd struct {
	dst Ref
	lhs Ref
	rhs Ref
}

// InstAdd stores the sum of the values at `lhs` and `rhs` at `dst`. Purely
// local; no communication.
func InstAdd(dst, lhs, rhs Ref) Inst {
	return instAdd{dst, lhs, rhs}
}

// IsInst implements the Inst interface.
func (inst instAdd) IsInst() {
}

type instSub struct {
	dst Ref
	lhs Ref
	rhs Ref
}

// InstSub stores the difference of the values at `lhs` and `rhs` at `dst`.
// Purely local; no communication.
func InstSub(dst, lhs, rhs Ref) Inst {
	return instSub{dst, lhs, rhs}
}

// IsInst implements the Inst interface.
func (inst instSub) IsInst() {
}

type instNeg struct {
	dst Ref
	src Ref
}

// InstNeg stores the additive inverse of the value at `src` at `dst`. Purely
// local; no communication.
func InstNeg(dst, src Ref) Inst {
	return instNeg{dst, src}
}

// IsInst implements the Inst interface.
func (inst instNeg) IsInst() {
}

type instScalarMul struct {
	dst    Ref
	src    Ref
	scalar algebra.Element
}

// InstScalarMul stores the product of the value at `src` with a public scalar
// at `dst`. Purely local; no communication.
func InstScalarMul(dst, src Ref, scalar algebra.Element) Inst {
	return instScalarMul{dst, src, scalar}
}

// IsInst implements the Inst interface.
func (inst instScalarMul) IsInst() {
}

type instOpen struct {
	dst Ref
	src Ref
}

// InstOpen reconstructs the secret shared at `src` and stores the plaintext
// at `dst` in every party's memory. Every party sends its share to every
// other party, and no party proceeds until it holds all contributions: this
// is the sole reconstruction primitive and the sole synchronization barrier.
func InstOpen(dst, src Ref) Inst {
	return instOpen{dst, src}
}

// IsInst implements the Inst interface.
func (inst instOpen) IsInst() {
}

type instOutput struct {
	src Ref
}

// InstOutput returns the plaintext at `src` to the calling context.
func InstOutput(src Ref) Inst {
	return instOutput{src}
}

// IsInst implements the Inst interface.
func (inst instOutput) IsInst() {
}
