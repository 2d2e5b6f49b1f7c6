package rx

import "github.com/xinjiayu/rxcore"

// Subject is a typed hot multicast source.
type Subject[T any] struct {
	s *rxcore.Subject
}

// NewSubject creates a subject that forwards values emitted after a
// subscriber joined.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{s: rxcore.NewSubject()}
}

// OnNext delivers value to every subscriber.
func (s *Subject[T]) OnNext(value T) { s.s.OnNext(value) }

// OnError terminates every subscriber with err.
func (s *Subject[T]) OnError(err error) { s.s.OnError(err) }

// OnCompleted terminates every subscriber.
func (s *Subject[T]) OnCompleted() { s.s.OnCompleted() }

// Subscribe registers callbacks.
func (s *Subject[T]) Subscribe(onNext func(T), onError func(error), onCompleted func()) Subscription {
	return s.AsObservable().Subscribe(onNext, onError, onCompleted)
}

// SubscribeWeak registers observer without the subject keeping the
// subscription alive.
func (s *Subject[T]) SubscribeWeak(observer Observer[T]) Subscription {
	return Subscription{d: s.s.SubscribeWeak(coreObserver[T]{target: observer})}
}

// HasObservers reports whether any subscriber is registered.
func (s *Subject[T]) HasObservers() bool { return s.s.HasObservers() }

// ObserverCount returns the number of registered subscribers.
func (s *Subject[T]) ObserverCount() int { return s.s.ObserverCount() }

// AsObservable hides the observer side.
func (s *Subject[T]) AsObservable() Observable[T] {
	return wrap[T](s.s.AsObservable())
}

// AsObserver hides the observable side.
func (s *Subject[T]) AsObserver() Observer[T] {
	return typedObserver[T]{target: s.s.AsObserver()}
}

// Core returns the untyped subject.
func (s *Subject[T]) Core() *rxcore.Subject {
	return s.s
}

// ReplaySubject is a Subject that replays its backlog to new subscribers.
type ReplaySubject[T any] struct {
	Subject[T]
	replay *rxcore.ReplaySubject
}

// NewReplaySubject creates a replay subject keeping the last size values.
// With no size, or a size of zero or less, the backlog is unbounded.
func NewReplaySubject[T any](size ...int) *ReplaySubject[T] {
	n := 0
	if len(size) > 0 {
		n = size[0]
	}
	replay := rxcore.NewReplaySubject(rxcore.WithBufferSize(n))
	return &ReplaySubject[T]{Subject: Subject[T]{s: replay.Subject}, replay: replay}
}

// Values returns a copy of the backlog.
func (s *ReplaySubject[T]) Values() []T {
	values := s.replay.Values()
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = mustAs[T](v)
	}
	return out
}

// BehaviorSubject is a Subject holding a current value.
type BehaviorSubject[T any] struct {
	Subject[T]
	behavior *rxcore.BehaviorSubject
}

// NewBehaviorSubject creates a behavior subject starting at initial.
func NewBehaviorSubject[T any](initial T) *BehaviorSubject[T] {
	behavior := rxcore.NewBehaviorSubject(initial)
	return &BehaviorSubject[T]{Subject: Subject[T]{s: behavior.Subject}, behavior: behavior}
}

// Value returns the current value.
func (s *BehaviorSubject[T]) Value() T {
	return mustAs[T](s.behavior.Value())
}
