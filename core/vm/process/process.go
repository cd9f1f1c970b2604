package process

import (
	"golang.org/x/xerrors"

	"github.com/hashcloak/smol-mpc/core/algebra"
)

// PC is a program counter. One instruction is executed per protocol round, so
// the PC also identifies the current round.
type PC uint64

// Return is the result of executing one instruction. A ready Return means the
// instruction completed locally and the Process advanced; otherwise the
// Return carries the Intent that must be fulfilled before the Process can
// advance.
type Return struct {
	intent Intent
	ready  bool
}

// Ready returns a Return signifying local completion.
func Ready() Return {
	return Return{intent: nil, ready: true}
}

// NotReady returns a Return carrying an unfulfilled Intent.
func NotReady(intent Intent) Return {
	return Return{intent: intent, ready: false}
}

// Intent returns the Intent carried by the Return, or nil.
func (ret Return) Intent() Intent {
	return ret.intent
}

// IsReady returns true if the instruction completed locally.
func (ret Return) IsReady() bool {
	return ret.ready
}

// A Process is one party's view of a shared Program: the code, a program
// counter, the party's exclusively owned Memory, and the party's private
// inputs. Every party executes the same code in the same order; the Process
// never communicates, it only raises Intents for its machine to fulfil.
type Process struct {
	// Party index of the owner, in [0, N).
	Party uint64

	// N is the party count of the session.
	N int

	// Mem is the owner's ID-addressed store.
	Mem *Memory

	// Inputs holds the owner's private input values, keyed by Ref. Peers
	// never see this map.
	Inputs map[Ref]algebra.Element

	// Code is the shared instruction sequence.
	Code Program

	// PC indexes the next instruction to execute.
	PC PC
}

// New returns a Process with an empty Memory and the PC at the start of the
// Program.
func New(party uint64, n int, code Program, inputs map[Ref]algebra.Element) Process {
	return Process{
		Party:  party,
		N:      n,
		Mem:    NewMemory(),
		Inputs: inputs,
		Code:   code,
		PC:     0,
	}
}

// Terminated returns true once the PC has moved past the final instruction.
func (proc *Process) Terminated() bool {
	return proc.PC >= PC(len(proc.Code))
}

// Advance moves the PC past the current instruction. It is called by the
// machine after fulfilling the Intent raised by Exec.
func (proc *Process) Advance() {
	proc.PC++
}

// Exec executes the single instruction at the PC. On local completion the PC
// is advanced and a ready Return is produced. If the instruction needs
// coordination, the PC stays on the instruction and the Return carries the
// Intent to fulfil. Failures are returned as an IntentToError.
func (proc *Process) Exec() Return {
	if proc.Terminated() {
		return NotReady(NewIntentToError(xerrors.Errorf("executing %v beyond program of %d insts", proc.PC, len(proc.Code))))
	}

	switch inst := proc.Code[proc.PC].(type) {
	case instInput:
		return proc.execInstInput(inst)
	case instPublic:
		return proc.execInstPublic(inst)
	case instShare:
		return proc.execInstShare(inst)
	case instAdd:
		return proc.execInstAdd(inst)
	case instSub:
		return proc.execInstSub(inst)
	case instNeg:
		return proc.execInstNeg(inst)
	case instScalarMul:
		return proc.execInstScalarMul(inst)
	case instOpen:
		return proc.execInstOpen(inst)
	case instOutput:
		return proc.execInstOutput(inst)
	default:
		return NotReady(NewIntentToError(xerrors.Errorf("unexpected instruction type %T at %v", inst, proc.PC)))
	}
}

func (proc *Process) execInstInput(inst instInput) Return {
	if inst.party != proc.Party {
		proc.Advance()
		return Ready()
	}

	value, ok := proc.Inputs[inst.dst]
	if !ok {
		return NotReady(NewIntentToError(xerrors.Errorf("no private input at %v for party %d: %w", inst.dst, proc.Party, ErrUndefinedVariable)))
	}
	if err := proc.Mem.Write(inst.dst, NewValuePublic(value)); err != nil {
		return NotReady(NewIntentToError(err))
	}

	proc.Advance()
	return Ready()
}

func (proc *Process) execInstPublic(inst instPublic) Return {
	if err := proc.Mem.Write(inst.dst, NewValuePublic(inst.value)); err != nil {
		return NotReady(NewIntentToError(err))
	}

	proc.Advance()
	return Ready()
}

func (proc *Process) execInstShare(inst instShare) Return {
	if inst.owner != proc.Party {
		return NotReady(IntentToRecvShare{Dst: inst.dst})
	}

	secret, err := proc.Mem.ReadPublic(inst.src)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	return NotReady(IntentToShare{Dst: inst.dst, Secret: secret})
}

func (proc *Process) execInstAdd(inst instAdd) Return {
	return proc.execBinaryOp(inst.dst, inst.lhs, inst.rhs, Add)
}

func (proc *Process) execInstSub(inst instSub) Return {
	return proc.execBinaryOp(inst.dst, inst.lhs, inst.rhs, Sub)
}

func (proc *Process) execBinaryOp(dst, lhs, rhs Ref, op func(Value, Value) (Value, error)) Return {
	lhsValue, err := proc.Mem.Read(lhs)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	rhsValue, err := proc.Mem.Read(rhs)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}

	result, err := op(lhsValue, rhsValue)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	if err := proc.Mem.Write(dst, result); err != nil {
		return NotReady(NewIntentToError(err))
	}

	proc.Advance()
	return Ready()
}

func (proc *Process) execInstNeg(inst instNeg) Return {
	value, err := proc.Mem.Read(inst.src)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	if err := proc.Mem.Write(inst.dst, Neg(value)); err != nil {
		return NotReady(NewIntentToError(err))
	}

	proc.Advance()
	return Ready()
}

func (proc *Process) execInstScalarMul(inst instScalarMul) Return {
	value, err := proc.Mem.Read(inst.src)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	if err := proc.Mem.Write(inst.dst, Scale(value, inst.scalar)); err != nil {
		return NotReady(NewIntentToError(err))
	}

	proc.Advance()
	return Ready()
}

func (proc *Process) execInstOpen(inst instOpen) Return {
	share, err := proc.Mem.ReadSecret(inst.src)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	return NotReady(IntentToOpen{Dst: inst.dst, Share: share})
}

func (proc *Process) execInstOutput(inst instOutput) Return {
	value, err := proc.Mem.ReadPublic(inst.src)
	if err != nil {
		return NotReady(NewIntentToError(err))
	}
	return NotReady(IntentToOutput{Src: inst.src, Value: value})
}
