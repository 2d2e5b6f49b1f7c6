package rxcore

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xinjiayu/rxcore/internal/goid"
)

// ============================================================================
// Scheduled work - 调度任务
// ============================================================================

// scheduledTask is a unit of work that can be cancelled until it starts.
type scheduledTask struct {
	disposed atomic.Bool
	work     func()

	mu     sync.Mutex
	cancel func()
}

func newScheduledTask(work func()) *scheduledTask {
	return &scheduledTask{work: work}
}

func (t *scheduledTask) Dispose() {
	if !t.disposed.CompareAndSwap(false, true) {
		return
	}
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *scheduledTask) IsDisposed() bool {
	return t.disposed.Load()
}

// onCancel registers what Dispose has to undo, such as a pending timer.
func (t *scheduledTask) onCancel(cancel func()) {
	t.mu.Lock()
	if t.disposed.Load() {
		t.mu.Unlock()
		cancel()
		return
	}
	t.cancel = cancel
	t.mu.Unlock()
}

// run executes the work unless it was cancelled. Panics are recovered and
// logged so one failing task cannot take its scheduler down.
func (t *scheduledTask) run(op string, logger *slog.Logger) {
	if t.IsDisposed() {
		return
	}
	if err := SafeExecute(op, t.work); err != nil {
		logger.Error("scheduled work panicked", panicAttrs(op, err)...)
	}
}

// ============================================================================
// ImmediateScheduler - 立即调度器
// ============================================================================

// ImmediateScheduler 立即调度器, runs work synchronously on the calling
// goroutine. Delayed work blocks the caller for the delay.
type ImmediateScheduler struct{}

// NewImmediateScheduler returns the immediate scheduler.
func NewImmediateScheduler() *ImmediateScheduler {
	return &ImmediateScheduler{}
}

func (s *ImmediateScheduler) Now() time.Time {
	return time.Now()
}

func (s *ImmediateScheduler) ScheduleWork(work func()) Disposable {
	task := newScheduledTask(work)
	task.run("rxcore.ImmediateScheduler", Logger())
	task.Dispose()
	return task
}

func (s *ImmediateScheduler) ScheduleDelayedWork(delay time.Duration, work func()) Disposable {
	if delay > 0 {
		time.Sleep(delay)
	}
	return s.ScheduleWork(work)
}

// ============================================================================
// TrampolineScheduler - 蹦床调度器
// ============================================================================

// TrampolineScheduler runs work on the calling goroutine, but work scheduled
// from inside running work on the same goroutine is queued and runs after
// the current unit returns. Nested scheduling therefore does not grow the
// stack. Each goroutine has its own queue.
type TrampolineScheduler struct {
	queues sync.Map // goroutine id -> *serialQueue
}

// NewTrampolineScheduler creates a trampoline scheduler.
func NewTrampolineScheduler() *TrampolineScheduler {
	return &TrampolineScheduler{}
}

func (s *TrampolineScheduler) Now() time.Time {
	return time.Now()
}

func (s *TrampolineScheduler) ScheduleWork(work func()) Disposable {
	task := newScheduledTask(work)
	run := func() { task.run("rxcore.TrampolineScheduler", Logger()) }

	id := goid.Get()
	if q, ok := s.queues.Load(id); ok {
		// a drain is already running further up this goroutine's stack
		q.(*serialQueue).run(run)
		return task
	}

	q := &serialQueue{}
	s.queues.Store(id, q)
	defer s.queues.Delete(id)
	q.run(run)
	return task
}

func (s *TrampolineScheduler) ScheduleDelayedWork(delay time.Duration, work func()) Disposable {
	if delay <= 0 {
		return s.ScheduleWork(work)
	}

	task := newScheduledTask(nil)
	task.work = func() {
		time.Sleep(delay)
		if !task.IsDisposed() {
			work()
		}
	}
	inner := s.ScheduleWork(func() { task.run("rxcore.TrampolineScheduler", Logger()) })
	task.onCancel(inner.Dispose)
	return task
}

// ============================================================================
// Recurring work - 周期任务
// ============================================================================

// ScheduleRecurring runs work every period on s until the returned
// Disposable is disposed or stopped reports true. stopped may be nil. Each
// run is scheduled after the previous one returned, so runs never overlap.
//
// On the immediate and trampoline schedulers the calling goroutine stays
// blocked until stopped reports true, because the handle is only returned
// afterwards. Runs that a scheduler executes synchronously are looped, not
// nested, so the stack does not grow.
//
// ScheduleRecurring panics if period is not positive, like time.NewTicker.
func ScheduleRecurring(s Scheduler, period time.Duration, stopped func() bool, work func()) Disposable {
	if period <= 0 {
		panic("rxcore: non-positive period for ScheduleRecurring")
	}

	serial := NewSerialDisposable()
	halted := func() bool {
		return serial.IsDisposed() || (stopped != nil && stopped())
	}

	var (
		owner  atomic.Uint64 // goroutine running the tick loop, 0 when idle
		nested atomic.Bool   // the next run was requested from inside the loop
	)

	var tick func()
	tick = func() {
		id := goid.Get()
		if id != 0 && owner.Load() == id {
			nested.Store(true)
			return
		}
		owner.Store(id)
		defer owner.CompareAndSwap(id, 0)

		for !halted() {
			work()
			if halted() {
				return
			}
			nested.Store(false)
			serial.Set(s.ScheduleDelayedWork(period, tick))
			if !nested.Load() {
				// the next run happens later, elsewhere
				return
			}
		}
	}

	first := s.ScheduleDelayedWork(period, tick)
	// a synchronous scheduler may already have stored a later run
	serial.setIfEmpty(first)
	return serial
}
