package rxcore

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Combination operators
// ============================================================================

// Concat subscribes to sources one after another, each only once the
// previous one completed. An error from any source terminates the result
// without subscribing to the rest. Sources that complete synchronously are
// chained in a loop, so long chains do not grow the stack.
func Concat(sources ...Observable) Observable {
	return newObservable("rxcore.Concat", func(p *Producer) Disposable {
		current := NewSerialDisposable()

		var (
			wip   atomic.Int32
			index int
			drain func()
		)

		observer := &downstream{
			p:         p,
			completed: func() { drain() },
		}

		drain = func() {
			if wip.Add(1) != 1 {
				return
			}
			for {
				if p.IsStopped() {
					return
				}
				if index == len(sources) {
					p.OnCompleted()
					return
				}
				source := sources[index]
				index++
				if source == nil {
					p.OnError(&StreamError{Op: "rxcore.Concat", Kind: KindSubscribe, Err: errors.New("nil observable")})
					return
				}
				current.Set(source.Subscribe(observer))
				if wip.Add(-1) == 0 {
					return
				}
			}
		}

		drain()
		return current
	})
}

// Merge subscribes to all sources at once and interleaves their values. It
// completes once every source has completed; the first error terminates it
// and disposes the other sources.
func Merge(sources ...Observable) Observable {
	values := make([]any, len(sources))
	for i, s := range sources {
		values[i] = s
	}
	return FlatMap(FromSlice(values), func(v any) Observable {
		return v.(Observable)
	})
}

// ============================================================================
// Scheduling operators
// ============================================================================

// ObserveOn delivers every notification of source on s. Each subscription
// keeps its own queue, drained by at most one scheduled task at a time, so
// notifications arrive in order even on a multi-threaded scheduler.
func ObserveOn(source Observable, s Scheduler) Observable {
	return newObservable("rxcore.ObserveOn", func(p *Producer) Disposable {
		task := NewSerialDisposable()

		var (
			mu    sync.Mutex
			queue []Item
			wip   int64
		)

		drain := func() {
			for {
				mu.Lock()
				batch := queue
				queue = nil
				mu.Unlock()

				for _, item := range batch {
					if p.IsStopped() {
						break
					}
					item.Accept(p)
				}

				mu.Lock()
				wip -= int64(len(batch))
				remaining := wip
				mu.Unlock()
				if remaining == 0 {
					return
				}
			}
		}

		enqueue := func(item Item) {
			mu.Lock()
			queue = append(queue, item)
			wip++
			first := wip == 1
			mu.Unlock()

			if first {
				task.Set(s.ScheduleWork(drain))
			}
		}

		upstream := source.Subscribe(&downstream{
			p:         p,
			next:      func(value any) { enqueue(NextItem(value)) },
			err:       func(err error) { enqueue(ErrorItem(err)) },
			completed: func() { enqueue(CompletedItem()) },
		})
		return NewCompositeDisposable(upstream, task)
	})
}

// SubscribeOn performs the subscription to source on s.
func SubscribeOn(source Observable, s Scheduler) Observable {
	return newObservable("rxcore.SubscribeOn", func(p *Producer) Disposable {
		inner := NewSerialDisposable()
		work := s.ScheduleWork(func() {
			inner.Set(source.Subscribe(p))
		})
		return NewCompositeDisposable(work, inner)
	})
}
