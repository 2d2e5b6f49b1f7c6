package rxcore

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer(t *testing.T) {
	t.Run("delivers one terminal", func(t *testing.T) {
		rec := newRecorder()
		p := NewProducer(rec)

		p.OnNext(1)
		p.OnCompleted()
		p.OnNext(2)
		p.OnError(errBoom)
		p.OnCompleted()

		assert.Equal(t, ints(1), rec.Values())
		assert.True(t, rec.Completed())
		assert.NoError(t, rec.Err())
		assert.Equal(t, 1, rec.Terminals())
		assert.True(t, p.IsDisposed())
		assert.False(t, p.IsCancelled())
	})

	t.Run("dispose before emission drops everything", func(t *testing.T) {
		rec := newRecorder()
		p := NewProducer(rec)
		p.Dispose()
		p.Dispose()

		p.OnNext(1)
		p.OnError(errBoom)

		assert.Empty(t, rec.Values())
		assert.Zero(t, rec.Terminals())
		assert.True(t, p.IsCancelled())
		assert.True(t, p.IsStopped())
	})

	t.Run("upstream attached after release is disposed", func(t *testing.T) {
		p := NewProducer(newRecorder())
		p.Dispose()

		upstream := NewBaseDisposable(nil)
		p.SetUpstream(upstream)
		assert.True(t, upstream.IsDisposed())
	})

	t.Run("terminal releases upstream and callbacks", func(t *testing.T) {
		p := NewProducer(newRecorder())
		upstream := NewBaseDisposable(nil)
		p.SetUpstream(upstream)

		var calls int
		p.OnUnsubscribe(func() { calls++ })
		p.OnError(errBoom)

		assert.True(t, upstream.IsDisposed())
		assert.Equal(t, 1, calls)

		p.OnUnsubscribe(func() { calls++ })
		assert.Equal(t, 2, calls, "callback registered after release runs at once")
	})

	t.Run("replacing the upstream disposes the old one", func(t *testing.T) {
		p := NewProducer(newRecorder())
		first := NewBaseDisposable(nil)
		second := NewBaseDisposable(nil)

		p.SetUpstream(first)
		p.SetUpstream(second)
		assert.True(t, first.IsDisposed())
		assert.False(t, second.IsDisposed())

		p.Dispose()
		assert.True(t, second.IsDisposed())
	})

	t.Run("observer panic becomes an error", func(t *testing.T) {
		var got error
		p := NewProducer(ObserverFuncs{
			Next:  func(any) { panic("bad observer") },
			Error: func(err error) { got = err },
		})

		p.OnNext(1)

		var pe *PanicError
		require.ErrorAs(t, got, &pe)
		assert.Equal(t, "bad observer", pe.Value)
		assert.True(t, p.IsStopped())
	})

	t.Run("stop propagates from the observer", func(t *testing.T) {
		downstreamProducer := NewProducer(newRecorder())
		p := NewProducer(&downstream{p: downstreamProducer})

		assert.False(t, p.IsStopped())
		downstreamProducer.Dispose()
		assert.True(t, p.IsStopped())
	})
}

func TestObserverHandle(t *testing.T) {
	t.Run("strong", func(t *testing.T) {
		p := NewProducer(newRecorder())
		h := StrongHandle(p)

		got, ok := h.Resolve()
		require.True(t, ok)
		assert.Same(t, p, got)
		assert.False(t, h.IsWeak())

		p.Dispose()
		_, ok = h.Resolve()
		assert.False(t, ok)
	})

	t.Run("weak while referenced", func(t *testing.T) {
		p := NewProducer(newRecorder())
		h := WeakHandle(p)

		got, ok := h.Resolve()
		require.True(t, ok)
		assert.Same(t, p, got)
		assert.True(t, h.IsWeak())
		runtime.KeepAlive(p)
	})

	t.Run("weak after collection", func(t *testing.T) {
		h := unreferencedHandle()
		runtime.GC()
		runtime.GC()

		_, ok := h.Resolve()
		assert.False(t, ok)
	})
}

//go:noinline
func unreferencedHandle() ObserverHandle {
	return WeakHandle(NewProducer(newRecorder()))
}

func TestSerialQueue(t *testing.T) {
	var q serialQueue
	var order []int

	q.run(func() {
		order = append(order, 1)
		q.run(func() { order = append(order, 3) })
		order = append(order, 2)
	})
	q.run(func() { order = append(order, 4) })

	assert.Equal(t, []int{1, 2, 3, 4}, order)
}

func TestSerializedObserver(t *testing.T) {
	rec := newRecorder()
	s := serialize(rec)

	s.OnNext(1)
	s.OnCompleted()
	s.OnNext(2)
	s.OnError(errBoom)

	assert.Equal(t, ints(1), rec.Values())
	assert.Equal(t, 1, rec.Terminals())
	assert.True(t, rec.Completed())
}
