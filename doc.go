// Package taskqueue provides serialized, FIFO task execution contexts
// for Go, modeled after the task queue threading pattern used by
// real-time media engines.
//
// A Queue owns one dedicated worker goroutine. Producers on any
// goroutine post units of work (tasks and delayed tasks) to the queue;
// the worker executes them one at a time, giving single-threaded
// semantics for any state owned by the queue without explicit locking.
//
// # Quick Start
//
//	q := taskqueue.New("network", taskqueue.PriorityNormal)
//	defer q.Stop()
//
//	q.PostTask(taskqueue.NewClosure(func() {
//		// Runs on q's worker; q.IsCurrent() is true here.
//	}))
//
//	q.PostDelayedTask(taskqueue.NewClosure(func() {
//		// Runs no earlier than 250ms from now.
//	}), 250*time.Millisecond)
//
// # Key Concepts
//
// Task: a unit of work with a run-once contract. Run returns true to
// hand the task back to the queue for destruction, or false to signal
// that ownership moved elsewhere (for example, the task re-posted
// itself to another queue).
//
// Closures: NewClosure wraps a plain func; NewClosureWithCleanup pairs
// it with a cleanup func that runs exactly once when the task is
// destroyed — the mechanism by which callers observe work that was
// dropped on overflow or queue teardown.
//
// SendTask: post-and-block-until-complete. When called from the
// queue's own worker the task runs inline, so synchronous re-entry
// never deadlocks.
//
// Current / IsCurrent: any code, including a running task, can ask
// which queue the calling goroutine executes for.
//
// # Ordering Guarantees
//
// Tasks posted by one caller to one queue run in submission order. A
// task posted from within task A on the same queue never starts before
// A returns. Delayed tasks become runnable in (fire time, submission)
// order, interleaved with immediate tasks as they come due. No
// cross-queue total order is provided.
//
// # Shutdown
//
// Stop accepts no new work, lets an in-flight task finish, destroys
// every not-yet-started pending and delayed task (cleanup hooks fire),
// and joins the worker before returning.
package taskqueue
