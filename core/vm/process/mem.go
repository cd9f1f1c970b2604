package process

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

var (
	// ErrUndefinedVariable signifies that a Ref was read before it was ever
	// written.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrTypeMismatch signifies that a Ref written with one Kind was later
	// written or read with the other. The kind of a Ref is fixed at its
	// first write.
	ErrTypeMismatch = errors.New("type mismatch")
)

// A Ref is an opaque handle addressing one entry of a Memory. Refs are agreed
// between parties: a value secret-shared under a Ref occupies the same Ref in
// every party's Memory.
type Ref uint32

func (ref Ref) String() string {
	return fmt.Sprintf("%%%d", uint32(ref))
}

// Memory is an ID-addressed store owned by exactly one virtual machine. It
// maps Refs to plaintext elements or shares, with last-write-wins overwrite
// semantics within a Kind. Entries are never evicted; the Memory lives
// exactly as long as its owning machine.
type Memory struct {
	cells map[Ref]Value
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{cells: map[Ref]Value{}}
}

// Write inserts or overwrites the entry at a Ref. Overwriting an entry with a
// Value of a different Kind is a programming error and fails with
// ErrTypeMismatch.
func (mem *Memory) Write(ref Ref, value Value) error {
	if existing, ok := mem.cells[ref]; ok && existing.Kind() != value.Kind() {
		return xerrors.Errorf("writing %v value at %v previously written as %v: %w", value.Kind(), ref, existing.Kind(), ErrTypeMismatch)
	}
	mem.cells[ref] = value
	return nil
}

// Read returns the entry at a Ref, failing with ErrUndefinedVariable if the
// Ref was never written.
func (mem *Memory) Read(ref Ref) (Value, error) {
	value, ok := mem.cells[ref]
	if !ok {
		return nil, xerrors.Errorf("reading %v: %w", ref, ErrUndefinedVariable)
	}
	return value, nil
}

// ReadPublic returns the plaintext element at a Ref, failing with
// ErrTypeMismatch if the entry holds a share.
func (mem *Memory) ReadPublic(ref Ref) (algebra.Element, error) {
	value, err := mem.Read(ref)
	if err != nil {
		return 0, err
	}
	public, ok := value.(ValuePublic)
	if !ok {
		return 0, xerrors.Errorf("reading %v as public but it holds a %v value: %w", ref, value.Kind(), ErrTypeMismatch)
	}
	return public.Value, nil
}

// ReadSecret returns the share at a Ref, failing with ErrTypeMismatch if the
// entry holds a plaintext element.
func (mem *Memory) ReadSecret(ref Ref) (additive.Share, error) {
	value, err := mem.Read(ref)
	if err != nil {
		return additive.Share{}, err
	}
	secret, ok := value.(ValueSecret)
	if !ok {
		return additive.Share{}, xerrors.Errorf("reading %v as secret but it holds a %v value: %w", ref, value.Kind(), ErrTypeMismatch)
	}
	return secret.Share, nil
}
