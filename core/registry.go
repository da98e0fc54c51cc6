package core

import (
	"runtime"
	"sync"
)

// currentQueues is the process-wide current-queue registry. It maps a
// worker goroutine id to the Queue it executes for. Each worker
// registers itself when its loop starts and unregisters when it exits,
// so lookups are valid for the whole worker lifetime, including while
// the worker blocks between tasks. Readers may be any goroutine.
var currentQueues sync.Map

func registerWorker(gid uint64, q *Queue) {
	currentQueues.Store(gid, q)
}

func unregisterWorker(gid uint64) {
	currentQueues.Delete(gid)
}

// Current returns the Queue whose worker goroutine is the caller, or
// nil when the caller is not a queue worker.
func Current() *Queue {
	if v, ok := currentQueues.Load(goroutineID()); ok {
		return v.(*Queue)
	}
	return nil
}

// goroutineID parses the goroutine id out of the runtime.Stack header
// ("goroutine 123 [running]:"). There is no cheaper portable way to
// identify the calling goroutine.
func goroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	for i := len("goroutine "); i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			break
		}
		id = id*10 + uint64(b[i]-'0')
	}
	return id
}
