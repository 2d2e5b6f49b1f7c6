package rxcore

import (
	"time"
)

// Dispatcher posts a callback to a thread owned by the host, such as a UI
// event loop. The callback must eventually run on that thread.
type Dispatcher func(callback func())

// HostScheduler runs work on a host-owned thread through its Dispatcher.
// Delayed work waits on a timer before it is posted.
type HostScheduler struct {
	name     string
	dispatch Dispatcher
}

// NewHostScheduler wraps dispatch. It panics when dispatch is nil.
func NewHostScheduler(name string, dispatch Dispatcher) *HostScheduler {
	if dispatch == nil {
		panic("rxcore: nil dispatcher")
	}
	return &HostScheduler{name: name, dispatch: dispatch}
}

// Name returns the scheduler's name.
func (h *HostScheduler) Name() string {
	return h.name
}

func (h *HostScheduler) Now() time.Time {
	return time.Now()
}

func (h *HostScheduler) ScheduleWork(work func()) Disposable {
	task := newScheduledTask(work)
	h.post(task)
	return task
}

func (h *HostScheduler) ScheduleDelayedWork(delay time.Duration, work func()) Disposable {
	if delay <= 0 {
		return h.ScheduleWork(work)
	}

	task := newScheduledTask(work)
	timer := time.AfterFunc(delay, func() { h.post(task) })
	task.onCancel(func() { timer.Stop() })
	return task
}

func (h *HostScheduler) post(task *scheduledTask) {
	if task.IsDisposed() {
		return
	}
	h.dispatch(func() { task.run("rxcore.HostScheduler", Logger()) })
}
