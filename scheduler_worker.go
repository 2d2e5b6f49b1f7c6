package rxcore

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogfish/opts"

	"github.com/xinjiayu/rxcore/internal/goid"
	"github.com/xinjiayu/rxcore/pkg/slogx"
)

// ============================================================================
// WorkerScheduler - one dedicated goroutine
// ============================================================================

type workerConfig struct {
	name   string
	logger *slog.Logger
}

var (
	// WithSchedulerName names the worker in log output.
	WithSchedulerName = opts.ForName[workerConfig, string]("name")

	// WithSchedulerLogger overrides the logger used for failures in work.
	WithSchedulerLogger = opts.ForName[workerConfig, *slog.Logger]("logger")
)

// WorkerScheduler runs all of its work on one goroutine in FIFO order.
// Delayed work waits on a timer and then joins the queue.
type WorkerScheduler struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	queue   []*scheduledTask
	stopped bool

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	disposed atomic.Bool
	owner    atomic.Uint64
}

// NewWorkerScheduler starts a worker goroutine.
func NewWorkerScheduler(options ...opts.Option[workerConfig]) *WorkerScheduler {
	cfg := workerConfig{name: "worker"}
	if err := opts.Apply(&cfg, options); err != nil {
		panic(err)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	w := &WorkerScheduler{
		name:   cfg.name,
		logger: cfg.logger.With(slog.String("scheduler", cfg.name)),
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// Name returns the worker's name.
func (w *WorkerScheduler) Name() string {
	return w.name
}

func (w *WorkerScheduler) Now() time.Time {
	return time.Now()
}

func (w *WorkerScheduler) ScheduleWork(work func()) Disposable {
	task := newScheduledTask(work)
	w.enqueue(task)
	return task
}

func (w *WorkerScheduler) ScheduleDelayedWork(delay time.Duration, work func()) Disposable {
	if delay <= 0 {
		return w.ScheduleWork(work)
	}

	task := newScheduledTask(work)
	timer := time.AfterFunc(delay, func() { w.enqueue(task) })
	task.onCancel(func() { timer.Stop() })
	return task
}

func (w *WorkerScheduler) enqueue(task *scheduledTask) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		task.Dispose()
		w.logger.Debug("work rejected", slogx.Error(ErrSchedulerDisposed))
		return
	}
	w.queue = append(w.queue, task)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *WorkerScheduler) loop() {
	defer close(w.done)
	w.owner.Store(goid.Get())

	for {
		task, ok := w.next()
		if !ok {
			return
		}
		task.run("rxcore.WorkerScheduler", w.logger)
	}
}

// next blocks until a task is queued or the worker stops.
func (w *WorkerScheduler) next() (*scheduledTask, bool) {
	for {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return nil, false
		}
		if len(w.queue) > 0 {
			task := w.queue[0]
			w.queue[0] = nil
			w.queue = w.queue[1:]
			w.mu.Unlock()
			return task, true
		}
		w.mu.Unlock()

		select {
		case <-w.wake:
		case <-w.stop:
		}
	}
}

// Dispose stops the worker. Queued work that has not started is dropped.
// Called from any other goroutine it waits for the running task to return;
// called from work running on the worker itself it returns immediately and
// the goroutine exits once that work returns.
func (w *WorkerScheduler) Dispose() {
	if !w.disposed.CompareAndSwap(false, true) {
		return
	}

	w.mu.Lock()
	w.stopped = true
	pending := w.queue
	w.queue = nil
	w.mu.Unlock()

	for _, task := range pending {
		task.Dispose()
	}
	close(w.stop)

	if goid.Get() == w.owner.Load() {
		w.logger.Debug("worker disposed from its own goroutine; detaching")
		return
	}
	<-w.done
}

func (w *WorkerScheduler) IsDisposed() bool {
	return w.disposed.Load()
}
