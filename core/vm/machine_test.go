package vm_test

import (
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/hashcloak/smol-mpc/core/vm"

	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/prg"
	"github.com/hashcloak/smol-mpc/core/task"
	"github.com/hashcloak/smol-mpc/core/vm/process"
)

var _ = Describe("Machine", func() {

	// A network drives a set of Machines synchronously: it routes the
	// deliveries and broadcasts the Machines produce and records the
	// acknowledgements, outputs and faults.
	type network struct {
		machines []*Machine

		dones   []RoundDone
		outputs []Output
		faults  []Fault
	}

	var dispatch func(net *network, to *Machine, message task.Message)
	dispatch = func(net *network, to *Machine, message task.Message) {
		switch message := message.(type) {
		case nil:

		case task.MessageBatch:
			for _, inner := range message {
				dispatch(net, to, inner)
			}

		case ShareDelivery:
			peer := net.machines[message.To]
			dispatch(net, peer, peer.Reduce(message))

		case OpenBroadcast:
			for _, peer := range net.machines {
				if peer.Index() == message.From {
					continue
				}
				dispatch(net, peer, peer.Reduce(message))
			}

		case RoundDone:
			net.dones = append(net.dones, message)

		case Output:
			net.outputs = append(net.outputs, message)

		case Fault:
			net.faults = append(net.faults, message)

		default:
			panic("unexpected message type")
		}
	}

	step := func(net *network, round uint64) {
		for _, machine := range net.machines {
			dispatch(net, machine, machine.Reduce(NewStep(round)))
		}
	}

	newNetwork := func(code process.Program, inputs map[uint64]map[process.Ref]algebra.Element) *network {
		net := &network{}
		n := len(inputs)
		for index := uint64(0); index < uint64(n); index++ {
			gen := prg.New([]byte{byte(index)})
			net.machines = append(net.machines, New(index, n, code, inputs[index], gen, zerolog.Nop()))
		}
		return net
	}

	Context("when running a program to completion", func() {
		code := process.Program{
			process.InstInput(process.Ref(0), 0),
			process.InstShare(process.Ref(1), process.Ref(0), 0),
			process.InstOpen(process.Ref(2), process.Ref(1)),
			process.InstOutput(process.Ref(2)),
		}
		inputs := map[uint64]map[process.Ref]algebra.Element{
			0: {process.Ref(0): algebra.NewElement(35)},
			1: nil,
		}

		It("should transition from idle through executing to halted", func() {
			net := newNetwork(code, inputs)

			for _, machine := range net.machines {
				Expect(machine.State()).To(Equal(StateIdle))
			}

			step(net, 0)
			for _, machine := range net.machines {
				Expect(machine.State()).To(Equal(StateExecuting))
			}

			for round := uint64(1); round < uint64(len(code)); round++ {
				step(net, round)
			}
			for _, machine := range net.machines {
				Expect(machine.State()).To(Equal(StateHalted))
				Expect(machine.Err()).ToNot(HaveOccurred())
			}
		})

		It("should acknowledge every round at every party", func() {
			net := newNetwork(code, inputs)
			for round := uint64(0); round < uint64(len(code)); round++ {
				step(net, round)

				acks := 0
				for _, done := range net.dones {
					if done.Round == round {
						acks++
					}
				}
				Expect(acks).To(Equal(len(net.machines)))
			}
		})

		It("should output the opened value at every party", func() {
			net := newNetwork(code, inputs)
			for round := uint64(0); round < uint64(len(code)); round++ {
				step(net, round)
			}

			Expect(net.outputs).To(HaveLen(len(net.machines)))
			for _, output := range net.outputs {
				Expect(output.Ref).To(Equal(process.Ref(2)))
				Expect(output.Value).To(Equal(algebra.NewElement(35)))
			}
			Expect(net.faults).To(BeEmpty())
		})

		It("should ignore messages after halting", func() {
			net := newNetwork(code, inputs)
			for round := uint64(0); round < uint64(len(code)); round++ {
				step(net, round)
			}

			Expect(net.machines[0].Reduce(NewStep(4))).To(BeNil())
		})
	})

	Context("when a fragment arrives before the receiver steps", func() {
		It("should park the fragment and consume it at the step", func() {
			code := process.Program{
				process.InstInput(process.Ref(0), 0),
				process.InstShare(process.Ref(1), process.Ref(0), 0),
			}
			inputs := map[uint64]map[process.Ref]algebra.Element{
				0: {process.Ref(0): algebra.NewElement(7)},
				1: nil,
			}
			net := newNetwork(code, inputs)
			owner, peer := net.machines[0], net.machines[1]

			step(net, 0)

			// The owner executes round 1 first; its delivery reaches the
			// peer before the peer has stepped.
			dispatch(net, owner, owner.Reduce(NewStep(1)))
			Expect(peer.State()).To(Equal(StateExecuting))

			dispatch(net, peer, peer.Reduce(NewStep(1)))
			Expect(peer.State()).To(Equal(StateHalted))
			Expect(peer.Err()).ToNot(HaveOccurred())

			share, err := peer.Memory().ReadSecret(process.Ref(1))
			Expect(err).ToNot(HaveOccurred())
			Expect(share.Index).To(Equal(uint64(1)))
			Expect(net.faults).To(BeEmpty())
		})
	})

	Context("when a machine misbehaves", func() {
		It("should fault when stepped to the wrong round", func() {
			machine := New(0, 2, process.Program{process.InstOutput(process.Ref(0))}, nil, prg.New([]byte("skew")), zerolog.Nop())

			message := machine.Reduce(NewStep(3))
			fault, ok := message.(Fault)
			Expect(ok).To(BeTrue())
			Expect(fault.Index).To(Equal(uint64(0)))
			Expect(machine.State()).To(Equal(StateHalted))
			Expect(machine.Err()).To(HaveOccurred())
		})

		It("should fault when an instruction fails", func() {
			machine := New(0, 2, process.Program{process.InstOpen(process.Ref(1), process.Ref(0))}, nil, prg.New([]byte("undef")), zerolog.Nop())

			message := machine.Reduce(NewStep(0))
			fault, ok := message.(Fault)
			Expect(ok).To(BeTrue())
			Expect(xerrors.Is(fault.Err, process.ErrUndefinedVariable)).To(BeTrue())
			Expect(machine.State()).To(Equal(StateHalted))
		})

		It("should fault when the owning party is missing its input", func() {
			machine := New(0, 2, process.Program{process.InstInput(process.Ref(0), 0)}, nil, prg.New([]byte("missing")), zerolog.Nop())

			message := machine.Reduce(NewStep(0))
			fault, ok := message.(Fault)
			Expect(ok).To(BeTrue())
			Expect(xerrors.Is(fault.Err, process.ErrUndefinedVariable)).To(BeTrue())
		})

		It("should keep the first error after a forced halt", func() {
			machine := New(0, 2, process.Program{process.InstOpen(process.Ref(1), process.Ref(0))}, nil, prg.New([]byte("halt")), zerolog.Nop())

			machine.Reduce(NewStep(0))
			first := machine.Err()
			Expect(first).To(HaveOccurred())

			machine.Halt(xerrors.New("aborted by peer"))
			Expect(machine.Err()).To(Equal(first))
		})
	})
})
