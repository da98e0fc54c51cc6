package core

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrQueueStopped is returned by blocking helpers when the queue has
// already been stopped.
var ErrQueueStopped = errors.New("task queue is stopped")

// Reasons recorded when a task is destroyed without running.
const (
	DropReasonOverflow = "overflow"
	DropReasonStopped  = "stopped"
)

// Queue is a named serial execution context backed by one dedicated
// worker goroutine. All posted tasks execute on that goroutine, one at
// a time: tasks posted by the same caller run in submission order, and
// a task posted from within a running task is appended after everything
// already queued, never interleaved mid-task. Multiple queues run fully
// concurrently with respect to each other.
//
// Use cases:
// 1. Serializing access to state without locks (the queue owns the state)
// 2. Replacing a dedicated thread + message loop
// 3. Deferring work off latency-sensitive paths via PostDelayedTask
type Queue struct {
	name     string
	id       string
	priority Priority

	// pending is the bounded immediate-task transport. Posting never
	// blocks; a full channel drops the task.
	pending chan Task
	sched   *DelayScheduler
	wake    chan struct{}

	// Lifecycle control
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once

	// closeMu serializes posts against Stop so that no task can slip
	// into the transport after teardown has drained it.
	closeMu sync.RWMutex
	closed  bool

	workerGID atomic.Uint64
	dropped   atomic.Uint64

	log          zerolog.Logger
	metrics      Metrics
	panicHandler PanicHandler
}

// NewQueue creates a queue with default configuration and starts its
// worker. The name is diagnostic; the priority is a scheduling hint
// (see Priority).
func NewQueue(name string, priority Priority) *Queue {
	return NewQueueWithConfig(name, priority, DefaultQueueConfig())
}

// NewQueueWithConfig creates a queue with explicit configuration and
// starts its worker. A nil config behaves like DefaultQueueConfig().
func NewQueueWithConfig(name string, priority Priority, config *QueueConfig) *Queue {
	if config == nil {
		config = DefaultQueueConfig()
	}
	config = config.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:         name,
		id:           uuid.NewString(),
		priority:     priority,
		pending:      make(chan Task, config.Capacity),
		sched:        NewDelayScheduler(),
		wake:         make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		stopped:      make(chan struct{}),
		metrics:      config.Metrics,
		panicHandler: config.PanicHandler,
	}
	q.log = config.Logger.With().
		Str("queue", name).
		Str("queue_id", q.id).
		Str("priority", priority.String()).
		Logger()

	go q.workerLoop()

	q.log.Debug().Int("capacity", config.Capacity).Msg("task queue started")
	return q
}

// Name returns the diagnostic name given at construction.
func (q *Queue) Name() string {
	return q.name
}

// ID returns the unique instance id used in log correlation.
func (q *Queue) ID() string {
	return q.id
}

// Priority returns the scheduling hint given at construction.
func (q *Queue) Priority() Priority {
	return q.priority
}

// PostTask enqueues task for asynchronous FIFO execution and returns
// immediately; it never blocks. When the pending transport is full or
// the queue has been stopped, the task is destroyed without running
// (its cleanup hook fires) and the drop is recorded.
func (q *Queue) PostTask(task Task) {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()

	if q.closed {
		q.drop(task, DropReasonStopped)
		return
	}
	select {
	case q.pending <- task:
	default:
		q.drop(task, DropReasonOverflow)
	}
}

// PostDelayedTask schedules task to become eligible for execution no
// earlier than now + delay. A zero delay still passes through the delay
// scheduler. Delayed tasks become runnable interleaved with immediate
// tasks as they come due.
func (q *Queue) PostDelayedTask(task Task, delay time.Duration) {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()

	if q.closed {
		q.drop(task, DropReasonStopped)
		return
	}
	if q.sched.Schedule(task, delay) {
		// New earliest entry; the worker must re-arm its timer.
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
}

// SendTask runs task synchronously. When called from the queue's own
// worker the task runs inline (the reentrant case; no deadlock).
// Otherwise the task is posted and the caller blocks until it has run,
// or until it is destroyed unrun because the queue stopped or the
// transport overflowed.
func (q *Queue) SendTask(task Task) {
	if q.IsCurrent() {
		q.runTask(task)
		return
	}

	st := &sendTask{inner: task, done: make(chan struct{})}
	q.PostTask(st)
	<-st.done
}

// IsCurrent reports whether the caller is running on this queue's
// worker goroutine.
func (q *Queue) IsCurrent() bool {
	gid := q.workerGID.Load()
	return gid != 0 && gid == goroutineID()
}

// IsClosed reports whether Stop has been called.
func (q *Queue) IsClosed() bool {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	return q.closed
}

// Stop destroys the queue: no new posts are accepted, the worker exits
// after finishing any in-flight task, and every not-yet-started pending
// and delayed task is destroyed without running (cleanup hooks fire).
// All of that completes before Stop returns. Stop is idempotent and
// must not be called from the queue's own worker.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		q.closeMu.Lock()
		q.closed = true
		q.closeMu.Unlock()

		q.cancel()
		<-q.stopped

		// The worker is gone and closed blocks new posts, so nothing
		// races with the drain.
	drain:
		for {
			select {
			case t := <-q.pending:
				q.drop(t, DropReasonStopped)
			default:
				break drain
			}
		}
		for _, t := range q.sched.Drain() {
			q.drop(t, DropReasonStopped)
		}

		q.log.Debug().Msg("task queue stopped")
	})
}

// WaitIdle blocks until every task queued before the call has finished
// executing. It is implemented with a barrier task whose destruction
// hook signals completion, so it also returns when the barrier itself
// is dropped. Tasks posted after WaitIdle are not waited for.
func (q *Queue) WaitIdle(ctx context.Context) error {
	if q.IsClosed() {
		return ErrQueueStopped
	}

	done := make(chan struct{})
	q.PostTask(NewClosureWithCleanup(func() {}, func() { close(done) }))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueStats is a point-in-time snapshot for observability pollers.
type QueueStats struct {
	Pending int
	Delayed int
	Dropped uint64
	Closed  bool
}

// Stats returns a snapshot of the queue's current state.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Pending: len(q.pending),
		Delayed: q.sched.Len(),
		Dropped: q.dropped.Load(),
		Closed:  q.IsClosed(),
	}
}

// =============================================================================
// Worker loop
// =============================================================================

// workerLoop is the queue's dedicated goroutine. It registers itself in
// the current-queue registry for its whole lifetime, then serializes
// execution: immediate tasks in FIFO order, delayed tasks in
// (fire time, sequence) order as they come due, interleaved at run
// time. The blocking wait is bounded by the earliest pending fire time
// so the loop never busy-polls.
func (q *Queue) workerLoop() {
	gid := goroutineID()
	q.workerGID.Store(gid)
	registerWorker(gid, q)
	defer func() {
		unregisterWorker(gid)
		close(q.stopped)
	}()

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		// Checked first so that once teardown is signaled the loop
		// exits instead of racing Done against a ready pending task.
		select {
		case <-q.ctx.Done():
			drainTimer(timer)
			return
		default:
		}

		var timerC <-chan time.Time
		if wait, ok := q.sched.TimeUntilNext(time.Now()); ok {
			if wait < 0 {
				wait = 0
			}
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-q.ctx.Done():
			drainTimer(timer)
			return
		case t := <-q.pending:
			drainTimer(timer)
			q.runTask(t)
			q.metrics.RecordQueueDepth(q.name, len(q.pending))
		case <-timerC:
			for _, t := range q.sched.NextDue(time.Now()) {
				q.runTask(t)
			}
		case <-q.wake:
			// Earliest fire time changed; recompute the wait.
			drainTimer(timer)
		}
	}
}

// runTask executes one task on the worker goroutine and settles
// ownership: the task is destroyed when Run returns true (or panics),
// and left alone when it detaches by returning false.
func (q *Queue) runTask(t Task) {
	start := time.Now()
	done := q.safeRun(t)
	q.metrics.RecordTaskDuration(q.name, q.priority, time.Since(start))
	if done {
		destroyTask(t)
	}
}

// safeRun invokes t.Run, converting a panic into a completed run so the
// worker survives. A panicked task is treated as done and destroyed.
func (q *Queue) safeRun(t Task) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			done = true
			q.metrics.RecordTaskPanic(q.name, r)
			q.panicHandler.HandlePanic(q.name, r, debug.Stack())
		}
	}()
	return t.Run()
}

func (q *Queue) drop(t Task, reason string) {
	q.dropped.Add(1)
	q.metrics.RecordTaskDropped(q.name, reason)
	q.log.Debug().Str("reason", reason).Msg("task dropped")
	destroyTask(t)
}

// drainTimer stops a timer and empties its channel if it already fired.
func drainTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// =============================================================================
// sendTask: completion relay for SendTask
// =============================================================================

// sendTask relays completion of a wrapped task to a blocked SendTask
// caller. Both the run path and the destruction path signal done, so
// the caller cannot hang when the queue drops the wrapper instead of
// running it.
type sendTask struct {
	inner Task
	done  chan struct{}
	once  sync.Once
	ran   bool
}

func (s *sendTask) Run() bool {
	s.ran = true
	if s.inner.Run() {
		destroyTask(s.inner)
	}
	s.signal()
	return true
}

func (s *sendTask) Finalize() {
	if !s.ran {
		destroyTask(s.inner)
	}
	s.signal()
}

func (s *sendTask) signal() {
	s.once.Do(func() { close(s.done) })
}
