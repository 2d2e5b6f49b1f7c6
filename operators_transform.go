package rxcore

import (
	"errors"
	"sync/atomic"
)

// ============================================================================
// Transforming operators
// ============================================================================

// Map applies fn to every value. An error returned by fn, or a panic inside
// it, terminates the stream with that error.
func Map(source Observable, fn Transformer) Observable {
	return newObservable("rxcore.Map", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				out, err := safeTransform("rxcore.Map", fn, value)
				if err != nil {
					p.OnError(wrapCallbackError("rxcore.Map", err))
					return
				}
				p.OnNext(out)
			},
		})
	})
}

// Filter forwards the values for which predicate returns true.
func Filter(source Observable, predicate Predicate) Observable {
	return newObservable("rxcore.Filter", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				ok, err := safePredicate("rxcore.Filter", predicate, value)
				if err != nil {
					p.OnError(err)
					return
				}
				if ok {
					p.OnNext(value)
				}
			},
		})
	})
}

// FlatMap maps every value to an inner Observable and merges all inner
// streams into one. It completes once the source and every inner stream
// have completed. The first error from any of them terminates the result
// and disposes the rest.
func FlatMap(source Observable, fn func(value any) Observable) Observable {
	return newObservable("rxcore.FlatMap", func(p *Producer) Disposable {
		out := serialize(p)
		group := NewCompositeDisposable()

		// the source counts as one active stream
		var active atomic.Int64
		active.Store(1)

		done := func() {
			if active.Add(-1) == 0 {
				out.OnCompleted()
			}
		}
		fail := func(err error) {
			out.OnError(err)
			group.Dispose()
		}

		upstream := source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				inner, err := safeObservable("rxcore.FlatMap", func() Observable { return fn(value) })
				if err != nil {
					fail(err)
					return
				}

				active.Add(1)
				slot := NewSerialDisposable()
				group.Add(slot)
				slot.Set(inner.Subscribe(&downstream{
					p:    p,
					next: out.OnNext,
					err:  fail,
					completed: func() {
						group.Remove(slot)
						done()
					},
				}))
			},
			err:       fail,
			completed: done,
		})
		group.Add(upstream)
		return group
	})
}

// Take forwards the first n values and completes. A non-positive n
// completes immediately.
func Take(source Observable, n int) Observable {
	return newObservable("rxcore.Take", func(p *Producer) Disposable {
		if n <= 0 {
			p.OnCompleted()
			return nil
		}

		var seen atomic.Int64
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				c := seen.Add(1)
				if c > int64(n) {
					return
				}
				p.OnNext(value)
				if c == int64(n) {
					p.OnCompleted()
				}
			},
		})
	})
}

// StartWith emits values before the values of source.
func StartWith(source Observable, values ...any) Observable {
	return Concat(FromSlice(values), source)
}

// wrapCallbackError tags an error returned by a user function. Recovered
// panics and errors that are already structured are passed through.
func wrapCallbackError(op string, err error) error {
	var (
		pe *PanicError
		se *StreamError
	)
	if errors.As(err, &pe) || errors.As(err, &se) {
		return err
	}
	return &StreamError{Op: op, Kind: KindCallback, Err: err}
}
