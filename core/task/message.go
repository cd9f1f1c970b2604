package task

import (
	"github.com/hashcloak/smol-mpc/core/buffer"
)

// A Message is the unit of communication between Tasks. It is an alias of
// buffer.Message so that Messages can be queued without conversion.
type Message = buffer.Message

// A MessageBatch is a Message containing multiple Messages. When a Task
// produces a MessageBatch, the batch is flattened and its Messages are output
// individually, in order. Nil Messages inside a batch are skipped.
type MessageBatch []Message

// NewMessageBatch returns a MessageBatch that contains a slice of Messages.
func NewMessageBatch(messages ...Message) Message {
	return MessageBatch(messages)
}

// IsMessage implements the Message interface for MessageBatch.
func (message MessageBatch) IsMessage() {
}
