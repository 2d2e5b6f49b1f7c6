package rx

import (
	"time"

	"github.com/xinjiayu/rxcore"
)

// Observable is a typed stream of T backed by a core Observable.
type Observable[T any] struct {
	core rxcore.Observable
}

// FromCore types an untyped core Observable. A value that is not a T
// terminates the subscription with a *TypeMismatchError wrapped in a
// *rxcore.StreamError of kind KindType. nil maps to the zero value of T.
func FromCore[T any](core rxcore.Observable) Observable[T] {
	return Observable[T]{core: rxcore.Map(core, typeCheck[T])}
}

func wrap[T any](core rxcore.Observable) Observable[T] {
	return Observable[T]{core: core}
}

// Core returns the untyped core Observable.
func (o Observable[T]) Core() rxcore.Observable {
	return o.core
}

// Subscribe subscribes with callbacks. onError and onCompleted may be nil;
// an error with no handler is logged.
func (o Observable[T]) Subscribe(onNext func(T), onError func(error), onCompleted func()) Subscription {
	return o.SubscribeObserver(ObserverFuncs[T]{Next: onNext, Error: onError, Completed: onCompleted})
}

// SubscribeObserver subscribes observer.
func (o Observable[T]) SubscribeObserver(observer Observer[T]) Subscription {
	return Subscription{d: o.core.Subscribe(coreObserver[T]{target: observer})}
}

// Filter forwards the values for which predicate returns true.
func (o Observable[T]) Filter(predicate func(T) bool) Observable[T] {
	return wrap[T](rxcore.Filter(o.core, func(v any) bool { return predicate(mustAs[T](v)) }))
}

// Take forwards the first n values and completes.
func (o Observable[T]) Take(n int) Observable[T] {
	return wrap[T](rxcore.Take(o.core, n))
}

// StartWith emits values before the values of o.
func (o Observable[T]) StartWith(values ...T) Observable[T] {
	return wrap[T](rxcore.StartWith(o.core, toAny(values)...))
}

// Debounce emits a value after d without a newer one. A nil scheduler uses
// rxcore.TimerScheduler().
func (o Observable[T]) Debounce(d time.Duration, s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.Debounce(o.core, d, s))
}

// ThrottleFirst emits a value and ignores those that follow it within d.
func (o Observable[T]) ThrottleFirst(d time.Duration, s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.ThrottleFirst(o.core, d, s))
}

// ThrottleLast emits the latest value once per interval.
func (o Observable[T]) ThrottleLast(interval time.Duration, s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.ThrottleLast(o.core, interval, s))
}

// Sample emits the latest unseen value at every tick of interval.
func (o Observable[T]) Sample(interval time.Duration, s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.Sample(o.core, interval, s))
}

// Delay shifts every notification by d.
func (o Observable[T]) Delay(d time.Duration, s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.Delay(o.core, d, s))
}

// Do calls observer for every notification before passing it on.
func (o Observable[T]) Do(observer Observer[T]) Observable[T] {
	return wrap[T](rxcore.Do(o.core, coreObserver[T]{target: observer}))
}

// DoOnNext calls action for every value.
func (o Observable[T]) DoOnNext(action func(T)) Observable[T] {
	return wrap[T](rxcore.DoOnNext(o.core, func(v any) { action(mustAs[T](v)) }))
}

// DoOnError calls action with the terminal error.
func (o Observable[T]) DoOnError(action func(error)) Observable[T] {
	return wrap[T](rxcore.DoOnError(o.core, action))
}

// DoOnTerminate calls action before the terminal notification.
func (o Observable[T]) DoOnTerminate(action func()) Observable[T] {
	return wrap[T](rxcore.DoOnTerminate(o.core, action))
}

// DoAfterTerminate calls action after the terminal notification.
func (o Observable[T]) DoAfterTerminate(action func()) Observable[T] {
	return wrap[T](rxcore.DoAfterTerminate(o.core, action))
}

// DoOnDispose calls action when the subscriber disposes.
func (o Observable[T]) DoOnDispose(action func()) Observable[T] {
	return wrap[T](rxcore.DoOnDispose(o.core, action))
}

// Log traces every notification at debug level under name.
func (o Observable[T]) Log(name string) Observable[T] {
	return wrap[T](rxcore.Log(o.core, name))
}

// Catch switches to the Observable returned by handler on error.
func (o Observable[T]) Catch(handler func(error) Observable[T]) Observable[T] {
	return wrap[T](rxcore.Catch(o.core, func(err error) rxcore.Observable {
		return handler(err).core
	}))
}

// OnErrorReturn replaces an error with value and completion.
func (o Observable[T]) OnErrorReturn(value T) Observable[T] {
	return wrap[T](rxcore.OnErrorReturn(o.core, value))
}

// Retry resubscribes after an error, at most n times.
func (o Observable[T]) Retry(n int) Observable[T] {
	return wrap[T](rxcore.Retry(o.core, n))
}

// ObserveOn delivers notifications on s.
func (o Observable[T]) ObserveOn(s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.ObserveOn(o.core, s))
}

// SubscribeOn subscribes to o on s.
func (o Observable[T]) SubscribeOn(s rxcore.Scheduler) Observable[T] {
	return wrap[T](rxcore.SubscribeOn(o.core, s))
}

// Share multicasts o to concurrent subscribers through one upstream
// subscription.
func (o Observable[T]) Share() Observable[T] {
	return wrap[T](rxcore.Share(o.core))
}

// First returns a Single of the first value.
func (o Observable[T]) First() Single[T] {
	return SingleFrom(o)
}

// ToSlice returns a Single of all values.
func (o Observable[T]) ToSlice() Single[[]T] {
	return Single[[]T]{core: rxcore.Map(rxcore.ToSlice(o.core), func(v any) (any, error) {
		values := v.([]any)
		out := make([]T, len(values))
		for i, x := range values {
			out[i] = mustAs[T](x)
		}
		return out, nil
	})}
}

// ============================================================================
// Generic operators
// ============================================================================

// Map applies fn to every value.
func Map[T, K any](o Observable[T], fn func(T) K) Observable[K] {
	return wrap[K](rxcore.Map(o.core, func(v any) (any, error) {
		return fn(mustAs[T](v)), nil
	}))
}

// TryMap applies fn to every value; an error from fn terminates the stream.
func TryMap[T, K any](o Observable[T], fn func(T) (K, error)) Observable[K] {
	return wrap[K](rxcore.Map(o.core, func(v any) (any, error) {
		return fn(mustAs[T](v))
	}))
}

// FlatMap maps every value to an Observable[K] and merges the results.
func FlatMap[T, K any](o Observable[T], fn func(T) Observable[K]) Observable[K] {
	return wrap[K](rxcore.FlatMap(o.core, func(v any) rxcore.Observable {
		return fn(mustAs[T](v)).core
	}))
}

// SwitchMap maps every value to an Observable[K] and mirrors only the most
// recent one.
func SwitchMap[T, K any](o Observable[T], fn func(T) Observable[K]) Observable[K] {
	return wrap[K](rxcore.SwitchMap(o.core, func(v any) rxcore.Observable {
		return fn(mustAs[T](v)).core
	}))
}

// Scan emits the running accumulation of o.
func Scan[T, A any](o Observable[T], seed A, fn func(acc A, value T) A) Observable[A] {
	return wrap[A](rxcore.Scan(o.core, seed, func(acc, v any) (any, error) {
		return fn(mustAs[A](acc), mustAs[T](v)), nil
	}))
}

// Reduce emits the final accumulation of o.
func Reduce[T, A any](o Observable[T], seed A, fn func(acc A, value T) A) Single[A] {
	return Single[A]{core: rxcore.Reduce(o.core, seed, func(acc, v any) (any, error) {
		return fn(mustAs[A](acc), mustAs[T](v)), nil
	})}
}

// Concat subscribes to sources one after another.
func Concat[T any](sources ...Observable[T]) Observable[T] {
	return wrap[T](rxcore.Concat(cores(sources)...))
}

// Merge interleaves the values of sources.
func Merge[T any](sources ...Observable[T]) Observable[T] {
	return wrap[T](rxcore.Merge(cores(sources)...))
}

func cores[T any](sources []Observable[T]) []rxcore.Observable {
	out := make([]rxcore.Observable, len(sources))
	for i, s := range sources {
		out[i] = s.core
	}
	return out
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
