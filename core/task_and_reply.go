package core

// =============================================================================
// PostTaskAndReply: run here, answer somewhere else
// =============================================================================

// PostTaskAndReply posts task to q and, once it has completed, posts
// reply to replyQueue. The usual shape is background work on q followed
// by a result delivery on the caller's own queue.
//
// The reply is only posted after a completed run: when task panics, or
// when the relay is dropped before running (overflow, queue stopped),
// the reply is destroyed without running instead, so its cleanup hook
// still fires.
func (q *Queue) PostTaskAndReply(task, reply Task, replyQueue *Queue) {
	if replyQueue == nil {
		q.PostTask(task)
		return
	}
	q.PostTask(&replyRelay{task: task, reply: reply, replyQueue: replyQueue})
}

// replyRelay couples a task with a reply destined for another queue.
// ran and posted are only touched on the worker goroutine that owns the
// relay at the time.
type replyRelay struct {
	task       Task
	reply      Task
	replyQueue *Queue
	ran        bool
	posted     bool
}

func (r *replyRelay) Run() bool {
	r.ran = true
	if r.task.Run() {
		destroyTask(r.task)
	}
	r.posted = true
	r.replyQueue.PostTask(r.reply)
	return true
}

func (r *replyRelay) Finalize() {
	if r.ran {
		if !r.posted {
			// The task panicked before the reply was handed off.
			destroyTask(r.reply)
		}
		return
	}
	destroyTask(r.task)
	destroyTask(r.reply)
}
