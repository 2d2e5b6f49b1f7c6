package rxcore

import (
	"errors"
	"fmt"
)

// ============================================================================
// Single-value operators
// ============================================================================

// First emits the first value of source and completes, disposing the rest
// of the stream. An empty source fails with ErrNoElements.
func First(source Observable) Observable {
	return newObservable("rxcore.First", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				p.OnNext(value)
				p.OnCompleted()
			},
			completed: func() {
				p.OnError(&StreamError{Op: "rxcore.First", Kind: KindEmpty, Err: ErrNoElements})
			},
		})
	})
}

// Last emits the last value of source once it completes. An empty source
// fails with ErrNoElements.
func Last(source Observable) Observable {
	return newObservable("rxcore.Last", func(p *Producer) Disposable {
		var (
			last  any
			found bool
		)
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				last, found = value, true
			},
			completed: func() {
				if !found {
					p.OnError(&StreamError{Op: "rxcore.Last", Kind: KindEmpty, Err: ErrNoElements})
					return
				}
				p.OnNext(last)
				p.OnCompleted()
			},
		})
	})
}

// ErrIndexOutOfRange is reported by ElementAt when the source completes
// before reaching the index.
var ErrIndexOutOfRange = errors.New("rxcore: index out of range")

// ElementAt emits the value at index and completes.
func ElementAt(source Observable, index int) Observable {
	return newObservable("rxcore.ElementAt", func(p *Producer) Disposable {
		if index < 0 {
			p.OnError(&StreamError{Op: "rxcore.ElementAt", Kind: KindCallback, Err: fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)})
			return nil
		}

		seen := 0
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if seen == index {
					p.OnNext(value)
					p.OnCompleted()
				}
				seen++
			},
			completed: func() {
				p.OnError(&StreamError{Op: "rxcore.ElementAt", Kind: KindEmpty, Err: fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)})
			},
		})
	})
}
