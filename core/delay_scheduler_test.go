package core

import (
	"container/heap"
	"testing"
	"time"
)

type recordTask struct {
	id int
}

func (r *recordTask) Run() bool { return true }

// TestDelayScheduler_FireTimeOrder tests due-task ordering
// Main test items:
// 1. NextDue returns tasks in ascending fire-time order
// 2. Tasks not yet due stay queued
func TestDelayScheduler_FireTimeOrder(t *testing.T) {
	s := NewDelayScheduler()

	s.Schedule(&recordTask{id: 2}, 20*time.Millisecond)
	s.Schedule(&recordTask{id: 0}, 0)
	s.Schedule(&recordTask{id: 1}, 10*time.Millisecond)
	s.Schedule(&recordTask{id: 3}, time.Hour)

	due := s.NextDue(time.Now().Add(time.Second))
	if len(due) != 3 {
		t.Fatalf("expected 3 due tasks, got %d", len(due))
	}
	for i, task := range due {
		if got := task.(*recordTask).id; got != i {
			t.Errorf("due[%d] = task %d, want %d", i, got, i)
		}
	}
	if s.Len() != 1 {
		t.Errorf("one far-future task should remain, got %d", s.Len())
	}
}

// TestDelayScheduler_SequenceTieBreak tests FIFO ordering at equal fire times
// Main test items:
// 1. Entries with identical fire times drain in submission order
func TestDelayScheduler_SequenceTieBreak(t *testing.T) {
	s := NewDelayScheduler()
	fireAt := time.Now()

	// Inject entries directly so the fire times are exactly equal,
	// which Schedule cannot guarantee.
	s.mu.Lock()
	for i := 0; i < 5; i++ {
		entry := &delayedEntry{fireAt: fireAt, seq: s.nextSeq, task: &recordTask{id: i}}
		s.nextSeq++
		heap.Push(&s.pq, entry)
	}
	s.mu.Unlock()

	due := s.NextDue(fireAt)
	if len(due) != 5 {
		t.Fatalf("expected 5 due tasks, got %d", len(due))
	}
	for i, task := range due {
		if got := task.(*recordTask).id; got != i {
			t.Errorf("due[%d] = task %d, want %d (submission order)", i, got, i)
		}
	}
}

// TestDelayScheduler_TimeUntilNext tests the worker wait computation
// Main test items:
// 1. No pending entries reports ok == false
// 2. The wait tracks the earliest entry
// 3. Scheduling a new earliest entry is reported for timer re-arming
func TestDelayScheduler_TimeUntilNext(t *testing.T) {
	s := NewDelayScheduler()

	if _, ok := s.TimeUntilNext(time.Now()); ok {
		t.Error("empty scheduler should report no pending entries")
	}

	if !s.Schedule(&recordTask{}, time.Hour) {
		t.Error("first entry should become the earliest")
	}
	wait, ok := s.TimeUntilNext(time.Now())
	if !ok || wait <= 59*time.Minute {
		t.Errorf("wait = %v, ok = %v; want ~1h", wait, ok)
	}

	if !s.Schedule(&recordTask{}, time.Minute) {
		t.Error("an earlier entry should be reported as the new earliest")
	}
	if s.Schedule(&recordTask{}, 2*time.Hour) {
		t.Error("a later entry should not be reported as the new earliest")
	}

	wait, ok = s.TimeUntilNext(time.Now())
	if !ok || wait > time.Minute {
		t.Errorf("wait = %v, ok = %v; want <= 1m", wait, ok)
	}
}

// TestDelayScheduler_Drain tests teardown draining
// Main test items:
// 1. Drain returns every entry regardless of fire time, in order
// 2. The scheduler is empty afterwards
func TestDelayScheduler_Drain(t *testing.T) {
	s := NewDelayScheduler()
	s.Schedule(&recordTask{id: 0}, 10*time.Millisecond)
	s.Schedule(&recordTask{id: 1}, time.Hour)
	s.Schedule(&recordTask{id: 2}, 24*time.Hour)

	all := s.Drain()
	if len(all) != 3 {
		t.Fatalf("expected 3 drained tasks, got %d", len(all))
	}
	for i, task := range all {
		if got := task.(*recordTask).id; got != i {
			t.Errorf("drained[%d] = task %d, want %d", i, got, i)
		}
	}
	if s.Len() != 0 {
		t.Errorf("scheduler should be empty after Drain, got %d", s.Len())
	}
}
