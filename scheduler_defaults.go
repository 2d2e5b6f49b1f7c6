package rxcore

import (
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/fogfish/opts"
)

// ============================================================================
// Default schedulers
// ============================================================================

var (
	defaultsMu  sync.Mutex
	mainHost    *HostScheduler
	mainWorker  *WorkerScheduler
	timerWorker *WorkerScheduler

	named = haxmap.New[string, *WorkerScheduler]()
)

// RegisterMainDispatcher installs the host's main-thread dispatcher. Later
// calls to MainScheduler post work through it. Passing nil reverts to the
// fallback worker.
func RegisterMainDispatcher(dispatch Dispatcher) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	mainHost = nil
	if dispatch != nil {
		mainHost = NewHostScheduler("main", dispatch)
	}
}

// MainScheduler returns the scheduler bound to the host's main thread. When
// no dispatcher is registered it returns a shared worker named "main".
func MainScheduler() Scheduler {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	if mainHost != nil {
		return mainHost
	}
	if mainWorker == nil || mainWorker.IsDisposed() {
		mainWorker = NewWorkerScheduler(WithSchedulerName("main"))
	}
	return mainWorker
}

// TimerScheduler returns the shared worker used for timed operators.
func TimerScheduler() Scheduler {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	if timerWorker == nil || timerWorker.IsDisposed() {
		timerWorker = NewWorkerScheduler(WithSchedulerName("timer"))
	}
	return timerWorker
}

// CreateOnSingleThread starts a new, unshared worker scheduler. The caller
// owns it and must Dispose it.
func CreateOnSingleThread(options ...opts.Option[workerConfig]) *WorkerScheduler {
	return NewWorkerScheduler(options...)
}

// NamedScheduler returns the shared worker registered under name, starting
// it on first use.
func NamedScheduler(name string) *WorkerScheduler {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()

	if w, ok := named.Get(name); ok && !w.IsDisposed() {
		return w
	}
	w := NewWorkerScheduler(WithSchedulerName(name))
	named.Set(name, w)
	return w
}

// DisposeSchedulers stops every shared worker started by this package. The
// registered main dispatcher is left in place.
func DisposeSchedulers() {
	defaultsMu.Lock()
	workers := make([]*WorkerScheduler, 0, int(named.Len())+2)
	named.ForEach(func(name string, w *WorkerScheduler) bool {
		workers = append(workers, w)
		return true
	})
	for _, w := range workers {
		named.Del(w.Name())
	}
	if mainWorker != nil {
		workers = append(workers, mainWorker)
		mainWorker = nil
	}
	if timerWorker != nil {
		workers = append(workers, timerWorker)
		timerWorker = nil
	}
	defaultsMu.Unlock()

	for _, w := range workers {
		w.Dispose()
	}
}
