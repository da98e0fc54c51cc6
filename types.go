package taskqueue

import "github.com/serialworks/go-task-queue/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the taskqueue package for most use cases.

// Task is the unit of work with a run-once, ownership-settling contract.
type Task = core.Task

// Finalizer marks tasks that must release resources when destroyed.
type Finalizer = core.Finalizer

// Queue is a serial execution context with one dedicated worker.
type Queue = core.Queue

// QueueConfig holds construction options for a Queue.
type QueueConfig = core.QueueConfig

// QueueStats is a point-in-time observability snapshot.
type QueueStats = core.QueueStats

// Priority is the scheduling weight hint given at queue construction.
type Priority = core.Priority

// Metrics is the sink interface for execution metrics.
type Metrics = core.Metrics

// NilMetrics is the no-op metrics sink.
type NilMetrics = core.NilMetrics

// PanicHandler reports task panics recovered by the worker.
type PanicHandler = core.PanicHandler

// Priority constants
const (
	PriorityLow    Priority = core.PriorityLow
	PriorityNormal Priority = core.PriorityNormal
	PriorityHigh   Priority = core.PriorityHigh
)

// New creates a queue with default configuration and starts its worker.
func New(name string, priority Priority) *Queue {
	return core.NewQueue(name, priority)
}

// NewWithConfig creates a queue with explicit configuration.
func NewWithConfig(name string, priority Priority, config *QueueConfig) *Queue {
	return core.NewQueueWithConfig(name, priority, config)
}

// Closure adapters and the current-queue lookup, re-exported from core.
var (
	NewClosure            = core.NewClosure
	NewClosureWithCleanup = core.NewClosureWithCleanup
	Current               = core.Current
	DefaultQueueConfig    = core.DefaultQueueConfig
)

// ErrQueueStopped is returned by blocking helpers on a stopped queue.
var ErrQueueStopped = core.ErrQueueStopped
