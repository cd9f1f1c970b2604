// Package vm implements one simulated party of a secure multiparty
// computation.
//
// A Machine owns exactly one memory and one pseudorandom generator, holds a
// stable party index, and executes a shared instruction sequence one
// instruction per round. It is a task.Reducer: the session drives it with
// Step messages and routes the ShareDelivery and OpenBroadcast messages that
// Machines exchange. A Machine never touches another Machine's state; all
// communication is explicit message passing.
package vm

import (
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/prg"
	"github.com/hashcloak/smol-mpc/core/task"
	"github.com/hashcloak/smol-mpc/core/vm/process"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

// State of a Machine. Machines start Idle, enter Executing at the first Step,
// and Halted is terminal: either the program completed or a fatal error or
// abort occurred.
type State uint8

const (
	// StateIdle means no instruction has been dispatched yet.
	StateIdle State = iota

	// StateExecuting means the Machine is stepping through the program.
	StateExecuting

	// StateHalted is terminal.
	StateHalted
)

func (state State) String() string {
	switch state {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", uint8(state))
	}
}

// A Machine is one simulated party. It implements task.Reducer so it can be
// run as an actor by the session.
type Machine struct {
	index uint64
	n     int

	proc   process.Process
	gen    *prg.PRG
	opener *opener

	// Fragments delivered before the Machine reached the round expecting
	// them, keyed by round.
	earlyDeliveries map[uint64]additive.Share

	// Set while the Machine is parked on an InstShare waiting for the
	// owner's fragment.
	awaiting    bool
	awaitingDst process.Ref

	state  State
	err    error
	logger zerolog.Logger
}

// New returns a Machine for the party with the given index. The inputs map
// holds the party's private inputs; it is never shared with peers. The
// generator is the party's exclusive randomness source.
func New(index uint64, n int, code process.Program, inputs map[process.Ref]algebra.Element, gen *prg.PRG, logger zerolog.Logger) *Machine {
	return &Machine{
		index: index,
		n:     n,

		proc:   process.New(index, n, code, inputs),
		gen:    gen,
		opener: newOpener(n),

		earlyDeliveries: map[uint64]additive.Share{},

		state:  StateIdle,
		logger: logger.With().Uint64("party", index).Logger(),
	}
}

// Index returns the stable party index of the Machine.
func (machine *Machine) Index() uint64 {
	return machine.index
}

// State returns the current state of the Machine. It must only be called
// while the Machine is not running.
func (machine *Machine) State() State {
	return machine.state
}

// Err returns the fatal error that halted the Machine, or nil. It must only
// be called while the Machine is not running.
func (machine *Machine) Err() error {
	return machine.err
}

// Memory returns the Machine's memory. It must only be accessed while the
// Machine is not running.
func (machine *Machine) Memory() *process.Memory {
	return machine.proc.Mem
}

// Halt forces the Machine into its terminal state. The session uses it to
// abort every Machine after a peer faults. The first error recorded wins.
func (machine *Machine) Halt(err error) {
	if machine.state == StateHalted {
		return
	}
	machine.state = StateHalted
	if machine.err == nil {
		machine.err = err
	}
}

// Reduce implements the task.Reducer interface. It consumes Step messages
// from the session and peer messages routed by the session, and produces
// deliveries, broadcasts, acknowledgements, outputs and faults.
func (machine *Machine) Reduce(message task.Message) task.Message {
	if machine.state == StateHalted {
		return nil
	}

	switch message := message.(type) {
	case Step:
		return machine.step(message)
	case ShareDelivery:
		return machine.recvShareDelivery(message)
	case OpenBroadcast:
		return machine.recvOpenBroadcast(message)
	default:
		panic(fmt.Sprintf("unexpected message type %T", message))
	}
}

func (machine *Machine) step(message Step) task.Message {
	if machine.state == StateIdle {
		machine.state = StateExecuting
	}
	if round := uint64(machine.proc.PC); round != message.Round {
		return machine.fault(message.Round, xerrors.Errorf("stepped to round %d while at round %d", message.Round, round))
	}

	machine.logger.Debug().Uint64("round", message.Round).Msg("step")

	ret := machine.proc.Exec()
	if ret.IsReady() {
		return machine.done(message.Round)
	}

	switch intent := ret.Intent().(type) {
	case process.IntentToShare:
		return machine.share(message.Round, intent)
	case process.IntentToRecvShare:
		return machine.awaitShare(message.Round, intent)
	case process.IntentToOpen:
		return machine.openSecret(message.Round, intent)
	case process.IntentToOutput:
		return machine.output(message.Round, intent)
	case process.IntentToError:
		return machine.fault(message.Round, intent)
	default:
		panic(fmt.Sprintf("unexpected intent type %T", intent))
	}
}

// share splits the plaintext, keeps this party's fragment, and delivers one
// fragment to every peer. The input phase communicates nowhere else.
func (machine *Machine) share(round uint64, intent process.IntentToShare) task.Message {
	shares := additive.Split(intent.Secret, machine.n, machine.gen)

	if err := machine.proc.Mem.Write(intent.Dst, process.NewValueSecret(shares[machine.index])); err != nil {
		return machine.fault(round, err)
	}
	machine.proc.Advance()

	messages := make([]task.Message, 0, machine.n)
	for to := uint64(0); to < uint64(machine.n); to++ {
		if to == machine.index {
			continue
		}
		messages = append(messages, NewShareDelivery(round, machine.index, to, intent.Dst, shares[to]))
	}
	messages = append(messages, machine.done(round))

	return task.NewMessageBatch(messages...)
}

func (machine *Machine) awaitShare(round uint64, intent process.IntentToRecvShare) task.Message {
	if share, ok := machine.earlyDeliveries[round]; ok {
		delete(machine.earlyDeliveries, round)
		return machine.storeDeliveredShare(round, intent.Dst, share)
	}

	machine.awaiting = true
	machine.awaitingDst = intent.Dst
	return nil
}

func (machine *Machine) recvShareDelivery(message ShareDelivery) task.Message {
	if message.To != machine.index {
		panic(fmt.Sprintf("share delivery for party %d routed to party %d", message.To, machine.index))
	}

	if machine.awaiting && uint64(machine.proc.PC) == message.Round {
		machine.awaiting = false
		return machine.storeDeliveredShare(message.Round, machine.awaitingDst, message.Share)
	}

	// The owner ran ahead of this Machine within the round; park the
	// fragment until the Machine reaches the instruction expecting it.
	machine.earlyDeliveries[message.Round] = message.Share
	return nil
}

func (machine *Machine) storeDeliveredShare(round uint64, dst process.Ref, share additive.Share) task.Message {
	if err := machine.proc.Mem.Write(dst, process.NewValueSecret(share)); err != nil {
		return machine.fault(round, err)
	}
	machine.proc.Advance()
	return machine.done(round)
}

// openSecret broadcasts this party's share and completes the barrier if every
// contribution is already buffered.
func (machine *Machine) openSecret(round uint64, intent process.IntentToOpen) task.Message {
	machine.opener.open(round, intent.Dst, intent.Share)

	messages := []task.Message{NewOpenBroadcast(round, machine.index, intent.Share)}
	if completion := machine.tryCompleteOpen(round); completion != nil {
		messages = append(messages, completion)
	}

	return task.NewMessageBatch(messages...)
}

func (machine *Machine) recvOpenBroadcast(message OpenBroadcast) task.Message {
	machine.opener.collect(message.Round, message.From, message.Share)
	return machine.tryCompleteOpen(message.Round)
}

func (machine *Machine) tryCompleteOpen(round uint64) task.Message {
	if !machine.opener.ready(round) {
		return nil
	}

	dst, value, err := machine.opener.join(round)
	if err != nil {
		return machine.fault(round, err)
	}
	if err := machine.proc.Mem.Write(dst, process.NewValuePublic(value)); err != nil {
		return machine.fault(round, err)
	}

	machine.logger.Debug().Uint64("round", round).Str("value", value.String()).Msg("opened")

	machine.proc.Advance()
	return machine.done(round)
}

func (machine *Machine) output(round uint64, intent process.IntentToOutput) task.Message {
	machine.proc.Advance()
	return task.NewMessageBatch(
		NewOutput(machine.index, intent.Src, intent.Value),
		machine.done(round),
	)
}

func (machine *Machine) done(round uint64) task.Message {
	if machine.proc.Terminated() {
		machine.state = StateHalted
	}
	return NewRoundDone(round, machine.index)
}

func (machine *Machine) fault(round uint64, err error) task.Message {
	machine.logger.Error().Uint64("round", round).Err(err).Msg("fault")

	machine.state = StateHalted
	machine.err = err
	return NewFault(machine.index, round, err)
}
