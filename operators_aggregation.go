package rxcore

// ============================================================================
// Aggregation operators
// ============================================================================

// Reducer folds a value into an accumulator.
type Reducer func(acc any, value any) (any, error)

// Scan emits the running accumulation of source, starting from seed.
func Scan(source Observable, seed any, reducer Reducer) Observable {
	return newObservable("rxcore.Scan", func(p *Producer) Disposable {
		acc := seed
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				next, err := safeReduce("rxcore.Scan", reducer, acc, value)
				if err != nil {
					p.OnError(wrapCallbackError("rxcore.Scan", err))
					return
				}
				acc = next
				p.OnNext(acc)
			},
		})
	})
}

// Reduce emits the final accumulation of source once it completes. An empty
// source emits seed.
func Reduce(source Observable, seed any, reducer Reducer) Observable {
	return newObservable("rxcore.Reduce", func(p *Producer) Disposable {
		acc := seed
		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				next, err := safeReduce("rxcore.Reduce", reducer, acc, value)
				if err != nil {
					p.OnError(wrapCallbackError("rxcore.Reduce", err))
					return
				}
				acc = next
			},
			completed: func() {
				p.OnNext(acc)
				p.OnCompleted()
			},
		})
	})
}

// Count emits the number of values of source once it completes.
func Count(source Observable) Observable {
	return Reduce(source, 0, func(acc any, _ any) (any, error) {
		return acc.(int) + 1, nil
	})
}

// ToSlice emits all values of source as one []any once it completes.
func ToSlice(source Observable) Observable {
	return newObservable("rxcore.ToSlice", func(p *Producer) Disposable {
		values := make([]any, 0)
		return source.Subscribe(&downstream{
			p:    p,
			next: func(value any) { values = append(values, value) },
			completed: func() {
				p.OnNext(values)
				p.OnCompleted()
			},
		})
	})
}

func safeReduce(op string, fn Reducer, acc, value any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()

	return fn(acc, value)
}
