package rxcore

import (
	"sync/atomic"
)

// ============================================================================
// Error handling operators
// ============================================================================

// Catch replaces an error from source with the Observable returned by
// handler. The switch is seamless: downstream sees the values of source,
// then those of the fallback, and only the fallback's terminal. A panic in
// handler, or a nil fallback, terminates the stream with that error.
func Catch(source Observable, handler func(err error) Observable) Observable {
	return newObservable("rxcore.Catch", func(p *Producer) Disposable {
		upstream := NewSerialDisposable()
		fallback := NewSerialDisposable()

		upstream.Set(source.Subscribe(&downstream{
			p: p,
			err: func(err error) {
				if p.IsStopped() {
					return
				}
				next, herr := safeObservable("rxcore.Catch", func() Observable { return handler(err) })
				if herr != nil {
					p.OnError(herr)
					return
				}
				fallback.Set(next.Subscribe(p))
			},
		}))
		return NewCompositeDisposable(upstream, fallback)
	})
}

// OnErrorReturn replaces an error from source with value followed by
// completion.
func OnErrorReturn(source Observable, value any) Observable {
	return Catch(source, func(error) Observable { return Just(value) })
}

// OnErrorResumeNext replaces an error from source with next.
func OnErrorResumeNext(source Observable, next Observable) Observable {
	return Catch(source, func(error) Observable { return next })
}

// Retry resubscribes to source after an error, at most n times. A negative
// n retries forever. A cold source emits its values again on every attempt.
// Synchronous sources are resubscribed in a loop, not recursively.
func Retry(source Observable, n int) Observable {
	return newObservable("rxcore.Retry", func(p *Producer) Disposable {
		current := NewSerialDisposable()

		var (
			attempts    atomic.Int64
			wip         atomic.Int32
			resubscribe func()
		)

		observer := &downstream{
			p: p,
			err: func(err error) {
				if n >= 0 && attempts.Add(1) > int64(n) {
					p.OnError(err)
					return
				}
				resubscribe()
			},
		}

		resubscribe = func() {
			if wip.Add(1) != 1 {
				return
			}
			for {
				if p.IsStopped() {
					return
				}
				current.Set(source.Subscribe(observer))
				if wip.Add(-1) == 0 {
					return
				}
			}
		}

		resubscribe()
		return current
	})
}
