package rxcore

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

// recorder is an Observer that keeps everything it receives.
type recorder struct {
	mu        sync.Mutex
	values    []any
	err       error
	completed bool
	terminals int
	done      chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{})}
}

func (r *recorder) OnNext(value any) {
	r.mu.Lock()
	r.values = append(r.values, value)
	r.mu.Unlock()
}

func (r *recorder) OnError(err error) {
	r.terminate(func() { r.err = err })
}

func (r *recorder) OnCompleted() {
	r.terminate(func() { r.completed = true })
}

func (r *recorder) terminate(set func()) {
	r.mu.Lock()
	r.terminals++
	first := r.terminals == 1
	if first {
		set()
	}
	r.mu.Unlock()
	if first {
		close(r.done)
	}
}

func (r *recorder) Values() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.values))
	copy(out, r.values)
	return out
}

func (r *recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *recorder) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

func (r *recorder) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminals
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a terminal notification")
	}
}

// timed records values together with the virtual time they arrived at.
type timed struct {
	At    time.Duration
	Value any
}

func recordTimes(ts *TestScheduler, source Observable) (*[]timed, Disposable) {
	var out []timed
	d := source.Subscribe(ObserverFuncs{
		Next: func(value any) {
			out = append(out, timed{At: ts.Elapsed(), Value: value})
		},
	})
	return &out, d
}

func ints(values ...int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
