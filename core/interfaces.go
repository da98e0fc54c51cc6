package core

import (
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution. The
// worker recovers, destroys the task, and keeps running; the handler
// decides how the event is reported.
//
// Implementations must be safe for concurrent use: several queues may
// share one handler.
type PanicHandler interface {
	// HandlePanic is called with the name of the queue whose worker
	// recovered the panic, the recovered value, and the stack trace at
	// the time of the panic.
	HandlePanic(queueName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler reports panics through a zerolog logger.
type DefaultPanicHandler struct {
	Log zerolog.Logger
}

func (h *DefaultPanicHandler) HandlePanic(queueName string, panicInfo any, stackTrace []byte) {
	h.Log.Error().
		Str("queue", queueName).
		Interface("panic", panicInfo).
		Bytes("stack", stackTrace).
		Msg("task panicked")
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics collects queue execution metrics. Implementations can send
// them to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods must be non-blocking and fast; they run on the queue's worker
// goroutine between tasks.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(queueName string, priority Priority, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(queueName string, panicInfo any)

	// RecordTaskDropped records a task destroyed without running.
	// reason is "overflow" or "stopped".
	RecordTaskDropped(queueName string, reason string)

	// RecordQueueDepth records the current number of pending tasks.
	RecordQueueDepth(queueName string, depth int)
}

// NilMetrics is the no-op default when no metrics sink is configured.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(queueName string, priority Priority, duration time.Duration) {
}

func (m *NilMetrics) RecordTaskPanic(queueName string, panicInfo any) {}

func (m *NilMetrics) RecordTaskDropped(queueName string, reason string) {}

func (m *NilMetrics) RecordQueueDepth(queueName string, depth int) {}
