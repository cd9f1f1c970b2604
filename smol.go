// Package smol is a tiny toolkit for learning secure multiparty computation.
//
// It simulates several non-colluding parties jointly evaluating a function
// over private inputs: each party is a small virtual machine with an
// ID-addressed memory, inputs are hidden with additive secret sharing over
// GF(2^61 - 1), and a session drives every machine through a shared circuit,
// routing the share exchanges between them. No networking is involved; all
// communication is in-process message passing, which keeps the protocols
// legible without the transport noise of a real deployment.
package smol

import (
	"github.com/hashcloak/smol-mpc/core/mpc"
	"github.com/hashcloak/smol-mpc/core/task"
)

type (
	IO = task.IO

	Message = task.Message

	Reducer = task.Reducer

	Task = task.Task

	Session = mpc.Session

	Inputs = mpc.Inputs

	Outputs = mpc.Outputs
)

var (
	New = task.New

	NewIO = task.NewIO

	NewSession = mpc.NewSession
)
