package core

import "sync/atomic"

// =============================================================================
// Closure adapters: wrap plain funcs into Tasks
// =============================================================================

type closureTask struct {
	fn func()
}

// NewClosure wraps a zero-argument func into a Task. Run invokes fn
// exactly once and hands the task back to the queue for destruction.
//
// Go funcs are reference values, so the adapter captures exactly one
// copy of fn; no implicit copies are introduced during wrapping.
func NewClosure(fn func()) Task {
	return &closureTask{fn: fn}
}

func (t *closureTask) Run() bool {
	t.fn()
	return true
}

type cleanupClosureTask struct {
	fn        func()
	cleanup   func()
	finalized atomic.Bool
}

// NewClosureWithCleanup wraps a run func and a paired cleanup func into
// a Task. The cleanup func is the task's destruction hook: it runs
// exactly once when the task is destroyed, whether that happens after a
// completed run or because the task was discarded without running
// (capacity overflow, queue teardown). Observing the cleanup side
// effect without the run side effect is how callers detect dropped
// work.
func NewClosureWithCleanup(fn, cleanup func()) Task {
	return &cleanupClosureTask{fn: fn, cleanup: cleanup}
}

func (t *cleanupClosureTask) Run() bool {
	t.fn()
	return true
}

func (t *cleanupClosureTask) Finalize() {
	// Guarded so a task that ends up on two destruction paths (caller
	// bug) still runs cleanup exactly once.
	if t.finalized.CompareAndSwap(false, true) {
		t.cleanup()
	}
}
