package vm

import (
	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/vm/process"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

// An opener buffers the share contributions of a reconstruction barrier.
// Broadcasts for a round are accepted before the Machine itself reaches that
// round, but a secret is only joined once the Machine has registered the
// barrier and every party's contribution is present.
type opener struct {
	n int

	dsts   map[uint64]process.Ref
	shares map[uint64]map[uint64]additive.Share
}

func newOpener(n int) *opener {
	return &opener{
		n:      n,
		dsts:   map[uint64]process.Ref{},
		shares: map[uint64]map[uint64]additive.Share{},
	}
}

// open registers the barrier of a round along with the Machine's own
// contribution.
func (opener *opener) open(round uint64, dst process.Ref, own additive.Share) {
	opener.dsts[round] = dst
	opener.collect(round, own.Index, own)
}

// collect stores one party's contribution for a round.
func (opener *opener) collect(round, from uint64, share additive.Share) {
	if _, ok := opener.shares[round]; !ok {
		opener.shares[round] = map[uint64]additive.Share{}
	}
	opener.shares[round][from] = share
}

// ready returns true once the barrier of a round is registered and all n
// contributions are present.
func (opener *opener) ready(round uint64) bool {
	if _, ok := opener.dsts[round]; !ok {
		return false
	}
	return len(opener.shares[round]) >= opener.n
}

// join reconstructs the secret of a round and releases the barrier state.
func (opener *opener) join(round uint64) (process.Ref, algebra.Element, error) {
	dst := opener.dsts[round]

	contributions := make(additive.Shares, 0, opener.n)
	for _, share := range opener.shares[round] {
		contributions = append(contributions, share)
	}

	value, err := additive.Join(contributions, opener.n)
	if err != nil {
		return dst, 0, err
	}

	delete(opener.dsts, round)
	delete(opener.shares, round)

	return dst, value, nil
}
