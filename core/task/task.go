package task

// A Task is an independently executing actor. It can only communicate with
// other Tasks, and can only do so by consuming and producing Messages. A Task
// receives Messages from its parent, and all Messages produced by its Reducer
// are returned to the parent through its IO.
type Task interface {

	// Run the Task until it terminates. The done channel can be closed to
	// signal to the Task that it should terminate. Running a Task drives all
	// input/output with its parent. This blocks the current goroutine.
	Run(done <-chan struct{})

	// Send a Message to the Task. Sending a Message to a Task should only be
	// done by the parent. This blocks when the input channel of the Task is
	// full.
	Send(Message)

	// IO returns the IO object used by the Task to handle input/output with
	// its parent.
	IO() IO
}

// Tasks is a slice.
type Tasks []Task

type task struct {
	io      IO
	reducer Reducer
}

// New returns a Task that uses a Reducer to handle Messages sent by its
// parent. All Messages returned from the Reducer will be output to the
// parent.
func New(io IO, reducer Reducer) Task {
	return &task{io, reducer}
}

func (task *task) Run(done <-chan struct{}) {
	for task.io.flush(done, task.reduce) {
	}
}

func (task *task) Send(message Message) {
	task.io.in.Writer() <- message
}

func (task *task) IO() IO {
	return task.io
}

func (task *task) reduce(message Message) {
	task.produce(task.reducer.Reduce(message))
}

// produce flattens MessageBatches and buffers the individual Messages for
// output.
func (task *task) produce(message Message) {
	switch message := message.(type) {
	case nil:
	case MessageBatch:
		for _, m := range message {
			task.produce(m)
		}
	default:
		task.io.Send(message)
	}
}
