package rx

import (
	"context"
	"time"

	"github.com/xinjiayu/rxcore"
)

// Just emits values and completes.
func Just[T any](values ...T) Observable[T] {
	return wrap[T](rxcore.FromSlice(toAny(values)))
}

// FromSlice emits the elements of values and completes.
func FromSlice[T any](values []T) Observable[T] {
	return wrap[T](rxcore.FromSlice(toAny(values)))
}

// Empty completes without values.
func Empty[T any]() Observable[T] {
	return wrap[T](rxcore.Empty())
}

// Never emits nothing and never terminates.
func Never[T any]() Observable[T] {
	return wrap[T](rxcore.Never())
}

// Throw terminates with err.
func Throw[T any](err error) Observable[T] {
	return wrap[T](rxcore.Error(err))
}

// Range emits count integers starting at start.
func Range(start, count int) Observable[int] {
	return wrap[int](rxcore.Range(start, count))
}

// Interval emits 0, 1, 2, ... every period on s.
func Interval(period time.Duration, s rxcore.Scheduler) Observable[int] {
	return wrap[int](rxcore.Interval(period, s))
}

// Timer emits 0 after delay on s and completes.
func Timer(delay time.Duration, s rxcore.Scheduler) Observable[int] {
	return wrap[int](rxcore.Timer(delay, s))
}

// FromChannel emits the values received from ch until it is closed.
func FromChannel[T any](ctx context.Context, ch <-chan T) Observable[T] {
	return wrap[T](rxcore.Create(func(observer rxcore.Observer) rxcore.Disposable {
		runCtx, cancel := context.WithCancel(ctx)
		go func() {
			defer cancel()
			for {
				select {
				case <-runCtx.Done():
					if ctx.Err() != nil {
						observer.OnError(context.Cause(ctx))
					}
					return
				case v, ok := <-ch:
					if !ok {
						observer.OnCompleted()
						return
					}
					observer.OnNext(v)
				}
			}
		}()
		return rxcore.NewBaseDisposable(cancel)
	}))
}

// Create builds an Observable from a subscribe function. The returned
// Disposable, which may be nil, is released when the subscription ends.
func Create[T any](subscribe func(emitter Emitter[T]) Disposable) Observable[T] {
	return wrap[T](rxcore.Create(func(observer rxcore.Observer) rxcore.Disposable {
		return subscribe(typedObserver[T]{target: observer})
	}))
}

// Defer calls factory for every subscriber.
func Defer[T any](factory func() Observable[T]) Observable[T] {
	return wrap[T](rxcore.Defer(func() rxcore.Observable {
		return factory().core
	}))
}
