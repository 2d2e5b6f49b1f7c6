package rxcore

import "fmt"

// ============================================================================
// Utility operators
// ============================================================================

// Materialize turns every notification of source into an Item value and
// completes after the item of the terminal notification.
func Materialize(source Observable) Observable {
	return newObservable("rxcore.Materialize", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p:    p,
			next: func(value any) { p.OnNext(NextItem(value)) },
			err: func(err error) {
				p.OnNext(ErrorItem(err))
				p.OnCompleted()
			},
			completed: func() {
				p.OnNext(CompletedItem())
				p.OnCompleted()
			},
		})
	})
}

// Dematerialize reverses Materialize. A value that is not an Item
// terminates the stream with a KindType error.
func Dematerialize(source Observable) Observable {
	return newObservable("rxcore.Dematerialize", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				item, ok := value.(Item)
				if !ok {
					p.OnError(&StreamError{Op: "rxcore.Dematerialize", Kind: KindType, Err: fmt.Errorf("value of type %T is not an Item", value)})
					return
				}
				item.Accept(p)
			},
		})
	})
}

// DefaultIfEmpty emits value when source completes without emitting.
func DefaultIfEmpty(source Observable, value any) Observable {
	return newObservable("rxcore.DefaultIfEmpty", func(p *Producer) Disposable {
		var seen bool
		return source.Subscribe(&downstream{
			p: p,
			next: func(v any) {
				seen = true
				p.OnNext(v)
			},
			completed: func() {
				if !seen {
					p.OnNext(value)
				}
				p.OnCompleted()
			},
		})
	})
}

// IgnoreElements drops every value and forwards only the terminal
// notification.
func IgnoreElements(source Observable) Observable {
	return newObservable("rxcore.IgnoreElements", func(p *Producer) Disposable {
		return source.Subscribe(&downstream{
			p:    p,
			next: func(any) {},
		})
	})
}
