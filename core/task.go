package core

// Task is the unit of work executed by a Queue.
//
// Run is invoked at most once, on the queue's worker goroutine. The
// return value settles ownership:
//   - true: the task is done and the queue destroys it after Run returns.
//   - false: ownership has been transferred elsewhere (for example the
//     task re-posted itself to another queue); the queue must never
//     touch the task again.
//
// Lifecycle: Created -> Queued -> Running -> Destroyed, or
// Created -> Queued -> Destroyed when the queue discards the task
// without running it (capacity overflow, queue teardown), or
// ... -> Running -> Detached when Run returns false.
type Task interface {
	Run() bool
}

// Finalizer is implemented by tasks that must release resources or
// signal callers when they are destroyed. Finalize is called exactly
// once by whichever queue destroys the task: after Run returns true, or
// when the task is discarded without running. A detached task (Run
// returned false) is never finalized by the queue it detached from.
type Finalizer interface {
	Finalize()
}

// destroyTask runs a task's destruction path.
func destroyTask(t Task) {
	if f, ok := t.(Finalizer); ok {
		f.Finalize()
	}
}

// =============================================================================
// Priority: scheduling hint for a queue's worker
// =============================================================================

// Priority is a scheduling weight hint attached to a queue at
// construction. Goroutines carry no OS-level scheduling priority, so
// the hint never affects ordering correctness; it is carried through
// logs and metrics labels for diagnostics.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	default:
		return "normal"
	}
}
