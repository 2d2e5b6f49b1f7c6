package rx

import (
	"context"

	"github.com/xinjiayu/rxcore"
)

// Single is a stream that yields exactly one value or an error.
type Single[T any] struct {
	core rxcore.Observable
}

// SingleFrom takes the first value of o. If o completes empty the Single
// fails with an error wrapping rxcore.ErrNoElements.
func SingleFrom[T any](o Observable[T]) Single[T] {
	return Single[T]{core: rxcore.First(o.core)}
}

// JustSingle succeeds with value.
func JustSingle[T any](value T) Single[T] {
	return Single[T]{core: rxcore.Just(value)}
}

// Subscribe registers the success and error callbacks.
func (s Single[T]) Subscribe(onSuccess func(T), onError func(error)) Subscription {
	return s.ToObservable().Subscribe(onSuccess, onError, nil)
}

// ToObservable views the Single as an Observable of one value.
func (s Single[T]) ToObservable() Observable[T] {
	return wrap[T](s.core)
}

// Get waits for the value.
func (s Single[T]) Get(ctx context.Context) (T, error) {
	v, err := rxcore.BlockingFirst(ctx, s.core)
	if err != nil {
		var zero T
		return zero, err
	}
	return mustAs[T](v), nil
}

// MapSingle applies fn to the value of s.
func MapSingle[T, K any](s Single[T], fn func(T) K) Single[K] {
	return Single[K]{core: rxcore.Map(s.core, func(v any) (any, error) {
		return fn(mustAs[T](v)), nil
	})}
}
