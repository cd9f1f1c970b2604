package process

import (
	"github.com/hashcloak/smol-mpc/core/algebra"
	"github.com/hashcloak/smol-mpc/core/vss/additive"
)

// An Intent is produced by a Process when an instruction cannot complete
// locally. The owning machine fulfils the Intent, usually by communicating
// with its peers, and then advances the Process past the instruction.
type Intent interface {
	IsIntent()
}

// IntentToShare is produced by the party that owns the plaintext of an
// InstShare. The machine splits the secret, keeps its own fragment at Dst,
// and delivers one fragment per peer.
type IntentToShare struct {
	Dst    Ref
	Secret algebra.Element
}

// IsIntent implements the Intent interface.
func (intent IntentToShare) IsIntent() {
}

// IntentToRecvShare is produced by every party other than the owner of an
// InstShare. The machine waits for the owner's fragment and stores it at
// Dst.
type IntentToRecvShare struct {
	Dst Ref
}

// IsIntent implements the Intent interface.
func (intent IntentToRecvShare) IsIntent() {
}

// IntentToOpen is produced by every party at an InstOpen. The machine
// broadcasts the party's Share, collects every peer's contribution, and
// stores the reconstructed plaintext at Dst.
type IntentToOpen struct {
	Dst   Ref
	Share additive.Share
}

// IsIntent implements the Intent interface.
func (intent IntentToOpen) IsIntent() {
}

// IntentToOutput is produced at an InstOutput. The machine reports the
// plaintext to the session and advances immediately.
type IntentToOutput struct {
	Src   Ref
	Value algebra.Element
}

// IsIntent implements the Intent interface.
func (intent IntentToOutput) IsIntent() {
}

// IntentToError is produced when an instruction fails. It is fatal to the
// run; the machine surfaces it to the session, which aborts the protocol.
type IntentToError struct {
	error
}

// NewIntentToError returns an IntentToError wrapping an error.
func NewIntentToError(err error) IntentToError {
	return IntentToError{err}
}

// IsIntent implements the Intent interface.
func (intent IntentToError) IsIntent() {
}

// Unwrap returns the wrapped error.
func (intent IntentToError) Unwrap() error {
	return intent.error
}
