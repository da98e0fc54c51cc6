package core

import (
	"container/heap"
	"sync"
	"time"
)

// delayedEntry binds a task to its target fire time. seq is a
// monotonically increasing tie-breaker so entries with equal fire times
// drain in submission order.
type delayedEntry struct {
	fireAt time.Time
	seq    uint64
	task   Task
	index  int // for heap interface
}

// delayedHeap implements heap.Interface ordered by (fireAt, seq).
type delayedHeap []*delayedEntry

func (h delayedHeap) Len() int { return len(h) }

func (h delayedHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h delayedHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayedEntry)
	item.index = n
	*h = append(*h, item)
}

func (h *delayedHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayedHeap) peek() *delayedEntry {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// DelayScheduler orders pending delayed tasks by (fire time, sequence)
// and hands them out as they become due. It owns no goroutine; the
// queue's worker drives it through TimeUntilNext and NextDue. Schedule
// may be called from any goroutine.
type DelayScheduler struct {
	mu      sync.Mutex
	pq      delayedHeap
	nextSeq uint64
}

func NewDelayScheduler() *DelayScheduler {
	s := &DelayScheduler{pq: make(delayedHeap, 0)}
	heap.Init(&s.pq)
	return s
}

// Schedule inserts task with a fire time of now + delay. It reports
// whether the new entry became the earliest pending one, in which case
// the worker's timer must be re-armed.
func (s *DelayScheduler) Schedule(task Task, delay time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &delayedEntry{
		fireAt: time.Now().Add(delay),
		seq:    s.nextSeq,
		task:   task,
	}
	s.nextSeq++
	heap.Push(&s.pq, item)

	return item.index == 0
}

// NextDue removes and returns every task whose fire time has been
// reached at now, in ascending (fire time, sequence) order.
func (s *DelayScheduler) NextDue(now time.Time) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Task
	for s.pq.Len() > 0 {
		item := s.pq.peek()
		if item.fireAt.After(now) {
			break
		}
		heap.Pop(&s.pq)
		due = append(due, item.task)
	}
	return due
}

// TimeUntilNext returns the wait until the earliest pending entry
// fires. ok is false when no entries are pending; a non-positive
// duration means an entry is already due.
func (s *DelayScheduler) TimeUntilNext(now time.Time) (wait time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.pq.peek()
	if item == nil {
		return 0, false
	}
	return item.fireAt.Sub(now), true
}

// Drain removes and returns every pending task regardless of fire time,
// in (fire time, sequence) order. Queue teardown uses it to destroy
// tasks that will never run.
func (s *DelayScheduler) Drain() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []Task
	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(*delayedEntry)
		all = append(all, item.task)
	}
	return all
}

func (s *DelayScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pq)
}
