// Package mpc orchestrates a simulated multiparty computation session.
//
// A Session owns one Machine per party and drives them through a shared
// Program in lock-step rounds: instruction r+1 is dispatched only after every
// Machine has acknowledged instruction r. The Session is the only channel
// between Machines; it routes point-to-point share deliveries and all-to-all
// open broadcasts over buffered in-process channels, delivering each message
// exactly once and in order. A fault at any Machine aborts the whole run.
package mpc

import (
	"errors"

	"github.com/republicprotocol/co-go"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/prg"
	"github.com/hashcloak/smol-mpc/core/task"
	"github.com/hashcloak/smol-mpc/core/vm"
	"github.com/hashcloak/smol-mpc/core/vm/process"
)

var (
	// ErrProtocolAbort signifies that a party failed to contribute to the
	// protocol and the run was terminated. The simulated channel is assumed
	// reliable, so an abort indicates a caller or programming error, not a
	// transient fault; runs are never retried.
	ErrProtocolAbort = errors.New("protocol abort")

	// ErrInvalidPartyCount signifies that a Session was requested for fewer
	// than two parties.
	ErrInvalidPartyCount = errors.New("party count must be at least two")
)

// Inputs holds the private inputs of all parties, keyed by party index and
// then by Ref. Each party's Machine only ever sees its own entry.
type Inputs map[uint64]map[process.Ref]algebra.Element

// Outputs holds the plaintext results produced by InstOutput, keyed by party
// index and then by Ref.
type Outputs map[uint64]map[process.Ref]algebra.Element

// An Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used by the Session and its Machines. The
// default logger is disabled.
func WithLogger(logger zerolog.Logger) Option {
	return func(session *Session) {
		session.logger = logger
	}
}

// WithCapacity overrides the channel capacity used between the Session and
// its Machines. The default is computed from the Program so that routing can
// never block.
func WithCapacity(cap int) Option {
	return func(session *Session) {
		session.cap = cap
	}
}

// A Session simulates one network of non-colluding parties. Cryptographic
// parameters are fixed per Session and never ambient: the modulus is a
// compile-time field constant and the PRG seed is explicit, so independent
// Sessions cannot interfere.
type Session struct {
	id   xid.ID
	n    int
	seed []byte

	cap      int
	logger   zerolog.Logger
	machines []*vm.Machine
}

// NewSession returns a Session for n parties. The seed deterministically
// derives every party's private randomness, so a Session with a fixed seed is
// fully reproducible.
func NewSession(n int, seed []byte, options ...Option) (*Session, error) {
	if n < 2 {
		return nil, xerrors.Errorf("creating session for %d parties: %w", n, ErrInvalidPartyCount)
	}

	session := &Session{
		id:     xid.New(),
		n:      n,
		seed:   seed,
		logger: zerolog.Nop(),
	}
	for _, option := range options {
		option(session)
	}
	session.logger = session.logger.With().Str("session", session.id.String()).Logger()

	return session, nil
}

// ID returns the unique identifier of the Session.
func (session *Session) ID() xid.ID {
	return session.id
}

// Machines returns the Machines of the most recent run. It must only be
// called after Run has returned.
func (session *Session) Machines() []*vm.Machine {
	return session.machines
}

// Run executes a Program against the private Inputs and returns the Outputs
// of every party. Closing the done channel aborts the run. Run returns an
// error wrapping ErrProtocolAbort when any Machine faults; in that case every
// Machine is halted and no outputs are returned.
func (session *Session) Run(done <-chan struct{}, program process.Program, inputs Inputs) (Outputs, error) {
	if err := program.Validate(uint64(session.n)); err != nil {
		return nil, err
	}

	// The capacity bounds every channel so that no send can ever block
	// indefinitely: a Machine receives at most one Step, one delivery and
	// n-1 broadcasts per round.
	capacity := session.cap
	if capacity <= 0 {
		capacity = (len(program) + 1) * (session.n + 2)
	}

	session.machines = make([]*vm.Machine, session.n)
	tasks := make(task.Tasks, session.n)
	root := prg.New(session.seed)
	for i := 0; i < session.n; i++ {
		gen := prg.New(root.NextBytes(prg.SeedLen))
		session.machines[i] = vm.New(uint64(i), session.n, program, inputs[uint64(i)], gen, session.logger)
		tasks[i] = task.New(task.NewIO(capacity), session.machines[i])
	}

	innerDone := make(chan struct{})
	control := make(chan task.Message, capacity*session.n)

	outputs := Outputs{}
	var err error

	co.ParBegin(
		func() {
			co.ParForAll(tasks, func(i int) {
				tasks[i].Run(innerDone)
			})
		},
		func() {
			co.ParForAll(tasks, func(i int) {
				session.route(innerDone, tasks, i, control)
			})
		},
		func() {
			defer close(innerDone)
			err = session.drive(done, program, tasks, control, outputs)
		})

	if err != nil {
		for _, machine := range session.machines {
			machine.Halt(err)
		}
		return nil, err
	}
	return outputs, nil
}

// route forwards the messages produced by one Machine: share deliveries go to
// a single peer, open broadcasts go to every peer, and everything else goes
// to the control loop.
func (session *Session) route(done <-chan struct{}, tasks task.Tasks, i int, control chan<- task.Message) {
	for {
		var message task.Message
		var ok bool

		select {
		case <-done:
			return
		case message, ok = <-tasks[i].IO().OutputReader():
			if !ok {
				return
			}
		}

		switch message := message.(type) {
		case vm.ShareDelivery:
			tasks[message.To].Send(message)
		case vm.OpenBroadcast:
			for to := range tasks {
				if uint64(to) != message.From {
					tasks[to].Send(message)
				}
			}
		default:
			control <- message
		}
	}
}

// drive dispatches one instruction per round and waits for every Machine to
// acknowledge it before moving on. Open barriers need no special handling
// here: a Machine only acknowledges an open round once it holds every peer's
// contribution.
func (session *Session) drive(done <-chan struct{}, program process.Program, tasks task.Tasks, control <-chan task.Message, outputs Outputs) error {
	for i := 0; i < session.n; i++ {
		outputs[uint64(i)] = map[process.Ref]algebra.Element{}
	}

	for round := uint64(0); round < uint64(len(program)); round++ {
		session.logger.Debug().Uint64("round", round).Msg("dispatch")
		for i := range tasks {
			tasks[i].Send(vm.NewStep(round))
		}

		acked := map[uint64]struct{}{}
		for len(acked) < session.n {
			select {
			case <-done:
				return xerrors.Errorf("session cancelled at round %d: %w", round, ErrProtocolAbort)

			case message := <-control:
				switch message := message.(type) {
				case vm.RoundDone:
					if message.Round == round {
						acked[message.Index] = struct{}{}
					}
				case vm.Output:
					outputs[message.Index][message.Ref] = message.Value
				case vm.Fault:
					session.logger.Error().Uint64("party", message.Index).Uint64("round", message.Round).Err(message.Err).Msg("abort")
					return xerrors.Errorf("party %d faulted at round %d: %v: %w", message.Index, message.Round, message.Err, ErrProtocolAbort)
				}
			}
		}
	}

	return nil
}
