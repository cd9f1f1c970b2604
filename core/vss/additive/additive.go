// Package additive implements n-of-n additive secret sharing over
// GF(2^61 - 1).
//
// A secret s is split into n fragments that sum to s modulo p. Any proper
// subset of fragments is distributed independently of s, so a secret stays
// hidden unless every fragment is combined. Addition and multiplication by a
// public scalar are local operations on fragments; multiplication of two
// secret-shared values needs correlated randomness (Beaver triples) and is
// deliberately not supported by this scheme.
package additive

import (
	"errors"

	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/prg"
)

var (
	// ErrIncompleteShareSet signifies that fewer shares were supplied to Join
	// than the party count of the scheme. Reconstruction from a partial set
	// would silently produce a wrong-but-plausible value, so it is rejected.
	ErrIncompleteShareSet = errors.New("incomplete share set")

	// ErrUnsupportedOperation signifies that an operation outside the scheme
	// was attempted, such as multiplying two secret-shared values without a
	// triple-generation protocol.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrIndexMismatch signifies that a local operation combined shares that
	// do not belong to the same party.
	ErrIndexMismatch = errors.New("share index mismatch")
)

// A Share is one party's additive fragment of a secret. The value held by a
// Share is not the secret itself; it is the fragment the party with the given
// index stores after distribution.
type Share struct {
	// Index of the party holding this share.
	Index uint64

	// Value of the fragment.
	Value algebra.Element
}

// New returns a Share held by the party with the given index.
func New(index uint64, value algebra.Element) Share {
	return Share{index, value}
}

// Shares is a slice of Share structs.
type Shares []Share

// Split a secret into n additive shares, indexed 0..n-1. The first n-1 share
// values are drawn from the generator and the last is chosen so that all n
// values sum to the secret modulo p. Split panics if n < 2; a single-party
// "sharing" would be the secret itself.
func Split(secret algebra.Element, n int, gen *prg.PRG) Shares {
	if n < 2 {
		panic("cannot split a secret between fewer than two parties")
	}

	shares := make(Shares, n)
	sum := algebra.Element(0)
	for i := 0; i < n-1; i++ {
		r := gen.NextElement()
		sum = sum.Add(r)
		shares[i] = New(uint64(i), r)
	}
	shares[n-1] = New(uint64(n-1), secret.Sub(sum))

	return shares
}

// Join reconstructs a secret by summing the values of exactly n shares. It
// returns ErrIncompleteShareSet when fewer than n shares are supplied, or
// when two shares carry the same party index, since either way at least one
// party's fragment is missing from the sum.
func Join(shares Shares, n int) (algebra.Element, error) {
	if len(shares) < n {
		return 0, xerrors.Errorf("joining %d of %d shares: %w", len(shares), n, ErrIncompleteShareSet)
	}

	seen := make(map[uint64]struct{}, len(shares))
	secret := algebra.Element(0)
	for _, share := range shares {
		if _, ok := seen[share.Index]; ok {
			return 0, xerrors.Errorf("duplicate share from party %d: %w", share.Index, ErrIncompleteShareSet)
		}
		seen[share.Index] = struct{}{}
		secret = secret.Add(share.Value)
	}

	return secret, nil
}

// Add returns the share of the sum of two secrets, computed locally. Both
// shares must be held by the same party.
func (share Share) Add(other Share) (Share, error) {
	if share.Index != other.Index {
		return Share{}, xerrors.Errorf("adding shares of parties %d and %d: %w", share.Index, other.Index, ErrIndexMismatch)
	}
	return New(share.Index, share.Value.Add(other.Value)), nil
}

// Sub returns the share of the difference of two secrets, computed locally.
// Both shares must be held by the same party.
func (share Share) Sub(other Share) (Share, error) {
	if share.Index != other.Index {
		return Share{}, xerrors.Errorf("subtracting shares of parties %d and %d: %w", share.Index, other.Index, ErrIndexMismatch)
	}
	return New(share.Index, share.Value.Sub(other.Value)), nil
}

// Scale returns the share of the product of the secret with a public scalar,
// computed locally.
func (share Share) Scale(scalar algebra.Element) Share {
	return New(share.Index, share.Value.Mul(scalar))
}

// Neg returns the share of the negated secret, computed locally.
func (share Share) Neg() Share {
	return New(share.Index, share.Value.Neg())
}

// Mul always fails with ErrUnsupportedOperation. Multiplying two
// secret-shared values requires a correlated-randomness preprocessing step
// (Beaver triples) that this scheme does not provide.
func Mul(lhs, rhs Share) (Share, error) {
	return Share{}, xerrors.Errorf("multiplying shares of parties %d and %d: %w", lhs.Index, rhs.Index, ErrUnsupportedOperation)
}
