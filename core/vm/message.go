package vm

import (
	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/vm/process"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

// A Step message instructs a Machine to execute the instruction of the given
// round. Rounds coincide with program counters: instruction r is executed in
// round r, and the session dispatches round r+1 only once every Machine has
// acknowledged round r.
type Step struct {
	Round uint64
}

// NewStep returns a new Step message.
func NewStep(round uint64) Step {
	return Step{round}
}

// IsMessage implements the Message interface.
func (message Step) IsMessage() {
}

// A ShareDelivery message carries one fragment of a freshly split secret from
// the owning party to a single peer. The peer stores the fragment at Ref in
// its own memory.
type ShareDelivery struct {
	Round uint64
	From  uint64
	To    uint64
	Ref   process.Ref
	Share additive.Share
}

// NewShareDelivery returns a new ShareDelivery message.
func NewShareDelivery(round, from, to uint64, ref process.Ref, share additive.Share) ShareDelivery {
	return ShareDelivery{round, from, to, ref, share}
}

// IsMessage implements the Message interface.
func (message ShareDelivery) IsMessage() {
}

// An OpenBroadcast message carries one party's share of a secret being
// reconstructed. It is delivered to every other party; a Machine joins the
// secret once it holds a broadcast from all peers alongside its own share.
type OpenBroadcast struct {
	Round uint64
	From  uint64
	Share additive.Share
}

// NewOpenBroadcast returns a new OpenBroadcast message.
func NewOpenBroadcast(round, from uint64, share additive.Share) OpenBroadcast {
	return OpenBroadcast{round, from, share}
}

// IsMessage implements the Message interface.
func (message OpenBroadcast) IsMessage() {
}

// A RoundDone message acknowledges that a Machine has completed the
// instruction of a round, including any communication the instruction
// required.
type RoundDone struct {
	Round uint64
	Index uint64
}

// NewRoundDone returns a new RoundDone message.
func NewRoundDone(round, index uint64) RoundDone {
	return RoundDone{round, index}
}

// IsMessage implements the Message interface.
func (message RoundDone) IsMessage() {
}

// An Output message returns a plaintext result to the session.
type Output struct {
	Index uint64
	Ref   process.Ref
	Value algebra.Element
}

// NewOutput returns a new Output message.
func NewOutput(index uint64, ref process.Ref, value algebra.Element) Output {
	return Output{index, ref, value}
}

// IsMessage implements the Message interface.
func (message Output) IsMessage() {
}

// A Fault message reports a fatal error at one Machine. A Fault aborts the
// whole protocol run; there is no retry.
type Fault struct {
	Index uint64
	Round uint64
	Err   error
}

// NewFault returns a new Fault message.
func NewFault(index, round uint64, err error) Fault {
	return Fault{index, round, err}
}

// IsMessage implements the Message interface.
func (message Fault) IsMessage() {
}
