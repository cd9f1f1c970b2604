package task

import (
	"log"

	"github.com/hashcloak/smol-mpc/core/buffer"
)

// IO couples the input channel of a Task with its output channel, and buffers
// output Messages until they can be flushed. A Task involves two views of its
// IO: the Task itself consumes from the input and pushes to the output
// buffer, and the external user writes to the input and drains the output.
type IO struct {
	buf *buffer.Buffer
	in  buffer.ReaderWriter
	out buffer.ReaderWriter
}

// NewIO returns a new IO where the input channel, the output channel, and the
// output buffer all have a capacity of `cap`.
func NewIO(cap int) IO {
	buf := buffer.New(cap)
	return IO{
		buf: &buf,
		in:  buffer.NewReaderWriter(cap),
		out: buffer.NewReaderWriter(cap),
	}
}

// InputWriter returns the Writer used to send Messages to the Task that owns
// this IO.
func (io IO) InputWriter() buffer.Writer {
	return io.in.Writer()
}

// OutputReader returns the Reader used to receive Messages produced by the
// Task that owns this IO.
func (io IO) OutputReader() buffer.Reader {
	return io.out.Reader()
}

// Send a Message to the output of the IO. The Message is buffered and will
// not be written to the output channel until it is flushed by the run loop of
// the owning Task.
func (io IO) Send(message Message) {
	if !io.buf.Push(message) {
		log.Printf("[error] (io) buffer overflow")
	}
}

// flush writes at most one buffered Message to the output channel, blocking
// alongside reads of the input channel. It returns false when the done
// channel is closed or the input channel is closed.
func (io IO) flush(done <-chan struct{}, reduce func(Message)) bool {
	top, ok := io.buf.Top()
	if !ok {
		select {
		case <-done:
			return false
		case message, ok := <-io.in.Reader():
			if !ok {
				return false
			}
			reduce(message)
		}
		return true
	}

	select {
	case <-done:
		return false
	case message, ok := <-io.in.Reader():
		if !ok {
			return false
		}
		reduce(message)
	case io.out.Writer() <- top:
		if !io.buf.Pop() {
			log.Printf("[error] (io) buffer underflow")
		}
	}
	return true
}
