// Package rx is the typed face of rxcore. It wraps the type-erased core in
// generic types so that values are checked at compile time, and converts
// payloads back to T at the boundary.
package rx

import (
	"fmt"
	"reflect"

	"github.com/xinjiayu/rxcore"
)

// Disposable is re-exported for subscribe functions passed to Create.
type Disposable = rxcore.Disposable

// Observer receives the notifications of an Observable[T].
type Observer[T any] interface {
	OnNext(value T)
	OnError(err error)
	OnCompleted()
}

// ObserverFuncs adapts optional callbacks to Observer[T]. An error arriving
// with no Error callback is logged by the engine.
type ObserverFuncs[T any] struct {
	Next      func(value T)
	Error     func(err error)
	Completed func()
}

func (o ObserverFuncs[T]) OnNext(value T) {
	if o.Next != nil {
		o.Next(value)
	}
}

func (o ObserverFuncs[T]) OnError(err error) {
	rxcore.ObserverFuncs{Error: o.Error}.OnError(err)
}

func (o ObserverFuncs[T]) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

// TypeMismatchError reports a core value that could not be converted to
// the expected type.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("rx: expected value of type %s, got %s", e.Expected, e.Actual)
}

// as converts a core payload to T. nil maps to the zero value.
func as[T any](value any) (T, bool) {
	if value == nil {
		var zero T
		return zero, true
	}
	v, ok := value.(T)
	return v, ok
}

// mustAs is used where the producing side is typed and a mismatch cannot
// happen.
func mustAs[T any](value any) T {
	v, _ := as[T](value)
	return v
}

func typeCheck[T any](value any) (any, error) {
	if _, ok := as[T](value); ok {
		return value, nil
	}
	return nil, &rxcore.StreamError{
		Op:   "rx.FromCore",
		Kind: rxcore.KindType,
		Err: &TypeMismatchError{
			Expected: reflect.TypeFor[T]().String(),
			Actual:   fmt.Sprintf("%T", value),
		},
	}
}

// coreObserver feeds a typed observer from the core.
type coreObserver[T any] struct {
	target Observer[T]
}

func (o coreObserver[T]) OnNext(value any)  { o.target.OnNext(mustAs[T](value)) }
func (o coreObserver[T]) OnError(err error) { o.target.OnError(err) }
func (o coreObserver[T]) OnCompleted()      { o.target.OnCompleted() }

// Emitter is the observer handed to the subscribe function of Create.
// IsStopped reports whether the subscriber has gone away, so long-running
// producers can stop early.
type Emitter[T any] interface {
	Observer[T]
	IsStopped() bool
}

// typedObserver feeds the core from a typed observer.
type typedObserver[T any] struct {
	target rxcore.Observer
}

func (o typedObserver[T]) IsStopped() bool {
	if s, ok := o.target.(interface{ IsStopped() bool }); ok {
		return s.IsStopped()
	}
	return false
}

func (o typedObserver[T]) OnNext(value T)    { o.target.OnNext(value) }
func (o typedObserver[T]) OnError(err error) { o.target.OnError(err) }
func (o typedObserver[T]) OnCompleted()      { o.target.OnCompleted() }
