package rx

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xinjiayu/rxcore"
)

var errBoom = errors.New("boom")

// collect subscribes and returns what arrived synchronously.
func collect[T any](o Observable[T]) ([]T, bool, error) {
	var (
		values    []T
		err       error
		completed bool
	)
	o.Subscribe(
		func(v T) { values = append(values, v) },
		func(e error) { err = e },
		func() { completed = true },
	)
	return values, completed, err
}

func TestMap(t *testing.T) {
	values, completed, err := collect(Map(Just(1, 2, 3), func(v int) int { return v * 2 }))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []int{2, 4, 6}, values)

	words, _, _ := collect(Map(Range(1, 3), strconv.Itoa))
	assert.Equal(t, []string{"1", "2", "3"}, words)
}

func TestTryMap(t *testing.T) {
	values, _, err := collect(TryMap(Just("1", "x", "3"), strconv.Atoi))

	assert.Equal(t, []int{1}, values)
	var se *rxcore.StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, rxcore.KindCallback, se.Kind)
	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr)
}

func TestFromCore(t *testing.T) {
	t.Run("typed values pass", func(t *testing.T) {
		values, completed, err := collect(FromCore[int](rxcore.Just(1, 2)))
		require.NoError(t, err)
		assert.True(t, completed)
		assert.Equal(t, []int{1, 2}, values)
	})

	t.Run("nil becomes the zero value", func(t *testing.T) {
		values, _, err := collect(FromCore[*int](rxcore.Just(nil)))
		require.NoError(t, err)
		assert.Equal(t, []*int{nil}, values)
	})

	t.Run("mismatch terminates", func(t *testing.T) {
		values, completed, err := collect(FromCore[int](rxcore.Just(1, "two", 3)))

		assert.Equal(t, []int{1}, values)
		assert.False(t, completed)

		var se *rxcore.StreamError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, rxcore.KindType, se.Kind)

		var tm *TypeMismatchError
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, "int", tm.Expected)
		assert.Equal(t, "string", tm.Actual)
	})
}

func TestOperatorChain(t *testing.T) {
	source := Range(1, 10).
		Filter(func(v int) bool { return v%2 == 1 }).
		StartWith(0).
		Take(4)

	values, completed, err := collect(Scan(source, 0, func(acc, v int) int { return acc + v }))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []int{0, 1, 4, 9}, values)
}

func TestFlatMapAndMerge(t *testing.T) {
	values, completed, _ := collect(FlatMap(Just(1, 2), func(v int) Observable[string] {
		return Just(strconv.Itoa(v), strconv.Itoa(v*10))
	}))
	assert.True(t, completed)
	assert.Equal(t, []string{"1", "10", "2", "20"}, values)

	merged, _, _ := collect(Merge(Just(1), Just(2)))
	assert.Equal(t, []int{1, 2}, merged)

	concatenated, _, _ := collect(Concat(Just("a"), Empty[string](), Just("b")))
	assert.Equal(t, []string{"a", "b"}, concatenated)
}

func TestCatchAndRetry(t *testing.T) {
	values, completed, err := collect(Throw[int](errBoom).Catch(func(error) Observable[int] {
		return Just(42)
	}))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []int{42}, values)

	values, _, _ = collect(Concat(Just(1), Throw[int](errBoom)).OnErrorReturn(-1))
	assert.Equal(t, []int{1, -1}, values)

	var attempts int
	retried := Defer(func() Observable[string] {
		attempts++
		if attempts < 3 {
			return Throw[string](errBoom)
		}
		return Just("ok")
	}).Retry(5)
	words, _, err := collect(retried)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, words)
	assert.Equal(t, 3, attempts)
}

func TestSideEffects(t *testing.T) {
	var (
		seen       []int
		terminated bool
		after      bool
	)
	_, completed, _ := collect(Just(1, 2).
		DoOnNext(func(v int) { seen = append(seen, v) }).
		DoOnTerminate(func() { terminated = true }).
		DoAfterTerminate(func() { after = true }).
		Log("test"))

	assert.True(t, completed)
	assert.Equal(t, []int{1, 2}, seen)
	assert.True(t, terminated)
	assert.True(t, after)

	var disposed bool
	sub := Never[int]().DoOnDispose(func() { disposed = true }).Subscribe(nil, nil, nil)
	sub.Unsubscribe()
	assert.True(t, disposed)
	assert.True(t, sub.IsUnsubscribed())

	var errSeen error
	collect(Throw[int](errBoom).DoOnError(func(err error) { errSeen = err }))
	assert.ErrorIs(t, errSeen, errBoom)
}

func TestTimeOperators(t *testing.T) {
	ts := rxcore.NewTestScheduler()
	s := NewSubject[string]()

	var debounced, throttled []string
	s.AsObservable().Debounce(50*time.Millisecond, ts).Subscribe(func(v string) { debounced = append(debounced, v) }, nil, nil)
	s.AsObservable().ThrottleFirst(50*time.Millisecond, ts).Subscribe(func(v string) { throttled = append(throttled, v) }, nil, nil)

	for _, e := range []struct {
		at    time.Duration
		value string
	}{{0, "a"}, {10 * time.Millisecond, "b"}, {60 * time.Millisecond, "c"}} {
		ts.ScheduleDelayedWork(e.at, func() { s.OnNext(e.value) })
	}
	ts.AdvanceTo(time.Second)

	assert.Equal(t, []string{"c"}, debounced)
	assert.Equal(t, []string{"a", "c"}, throttled)
}

func TestCreate(t *testing.T) {
	t.Run("emits through the emitter", func(t *testing.T) {
		values, completed, err := collect(Create(func(e Emitter[string]) Disposable {
			e.OnNext("a")
			e.OnNext("b")
			e.OnCompleted()
			return nil
		}))
		require.NoError(t, err)
		assert.True(t, completed)
		assert.Equal(t, []string{"a", "b"}, values)
	})

	t.Run("emitter reports a gone subscriber", func(t *testing.T) {
		var produced int
		values, _, _ := collect(Create(func(e Emitter[int]) Disposable {
			for i := 0; !e.IsStopped(); i++ {
				produced++
				e.OnNext(i)
			}
			return nil
		}).Take(3))

		assert.Equal(t, []int{0, 1, 2}, values)
		assert.Equal(t, 3, produced)
	})
}

func TestFromChannel(t *testing.T) {
	ch := make(chan string, 2)
	ch <- "a"
	ch <- "b"
	close(ch)

	values, err := FromChannel(context.Background(), ch).ToSlice().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestObserveOnWorker(t *testing.T) {
	w := rxcore.NewWorkerScheduler()
	defer w.Dispose()

	values, err := Range(0, 5).ObserveOn(w).ToSlice().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, values)
}

func TestShare(t *testing.T) {
	var subscriptions int
	s := NewSubject[int]()
	shared := Defer(func() Observable[int] {
		subscriptions++
		return s.AsObservable()
	}).Share()

	var a, b []int
	subA := shared.Subscribe(func(v int) { a = append(a, v) }, nil, nil)
	subB := shared.Subscribe(func(v int) { b = append(b, v) }, nil, nil)
	s.OnNext(1)

	assert.Equal(t, 1, subscriptions)
	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1}, b)

	subA.Dispose()
	subB.Dispose()
	assert.False(t, s.HasObservers())
}
