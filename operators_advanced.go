package rxcore

import (
	"sync"
	"time"
)

// ============================================================================
// Advanced operators
// ============================================================================

// SwitchMap maps every value to an inner Observable and mirrors only the
// most recent one; subscribing to a new inner disposes the previous. It
// completes once the source and the current inner have completed.
func SwitchMap(source Observable, fn func(value any) Observable) Observable {
	return newObservable("rxcore.SwitchMap", func(p *Producer) Disposable {
		out := serialize(p)
		inner := NewSerialDisposable()

		var (
			mu          sync.Mutex
			gen         uint64
			sourceDone  bool
			innerActive bool
		)

		current := func(g uint64) bool {
			mu.Lock()
			defer mu.Unlock()
			return g == gen
		}

		upstream := source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				next, err := safeObservable("rxcore.SwitchMap", func() Observable { return fn(value) })
				if err != nil {
					inner.Dispose()
					out.OnError(err)
					return
				}

				mu.Lock()
				gen++
				g := gen
				innerActive = true
				mu.Unlock()

				inner.Set(next.Subscribe(&downstream{
					p: p,
					next: func(v any) {
						if current(g) {
							out.OnNext(v)
						}
					},
					err: func(err error) {
						if current(g) {
							out.OnError(err)
						}
					},
					completed: func() {
						mu.Lock()
						if g != gen {
							mu.Unlock()
							return
						}
						innerActive = false
						done := sourceDone
						mu.Unlock()
						if done {
							out.OnCompleted()
						}
					},
				}))
			},
			err: func(err error) {
				inner.Dispose()
				out.OnError(err)
			},
			completed: func() {
				mu.Lock()
				sourceDone = true
				done := !innerActive
				mu.Unlock()
				if done {
					out.OnCompleted()
				}
			},
		})
		return NewCompositeDisposable(upstream, inner)
	})
}

// Using ties a resource to the lifetime of a subscription. The resource is
// created on subscribe, handed to observableFactory, and released once the
// subscription is disposed or terminates.
func Using(resourceFactory func() (any, error), observableFactory func(resource any) Observable, release func(resource any)) Observable {
	return newObservable("rxcore.Using", func(p *Producer) Disposable {
		var (
			resource any
			err      error
		)
		if perr := SafeExecute("rxcore.Using", func() { resource, err = resourceFactory() }); perr != nil {
			err = perr
		}
		if err != nil {
			p.OnError(wrapCallbackError("rxcore.Using", err))
			return nil
		}

		releaser := NewBaseDisposable(func() {
			if perr := SafeExecute("rxcore.Using", func() { release(resource) }); perr != nil {
				logPanic("rxcore.Using", perr)
			}
		})
		p.OnUnsubscribe(releaser.Dispose)

		source, err := safeObservable("rxcore.Using", func() Observable { return observableFactory(resource) })
		if err != nil {
			p.OnError(err)
			return nil
		}
		return source.Subscribe(p)
	})
}

// Timestamped pairs a value with the time it was observed.
type Timestamped struct {
	Value any
	Time  time.Time
}

// Timestamp wraps every value of source in a Timestamped using the clock of
// s. A nil scheduler uses the wall clock.
func Timestamp(source Observable, s Scheduler) Observable {
	now := time.Now
	if s != nil {
		now = s.Now
	}
	return Map(source, func(value any) (any, error) {
		return Timestamped{Value: value, Time: now()}, nil
	})
}
