package rxcore

import (
	"context"
	"sync/atomic"
	"time"
)

// ============================================================================
// Factories
// ============================================================================

// Just emits values synchronously during Subscribe and completes.
func Just(values ...any) Observable {
	return FromSlice(values)
}

// FromSlice emits the elements of values in order and completes. Emission
// stops as soon as the subscription is disposed.
func FromSlice(values []any) Observable {
	return newObservable("rxcore.FromSlice", func(p *Producer) Disposable {
		for _, v := range values {
			if p.IsStopped() {
				return nil
			}
			p.OnNext(v)
		}
		p.OnCompleted()
		return nil
	})
}

// Range emits count consecutive integers starting at start.
func Range(start, count int) Observable {
	return newObservable("rxcore.Range", func(p *Producer) Disposable {
		for i := 0; i < count; i++ {
			if p.IsStopped() {
				return nil
			}
			p.OnNext(start + i)
		}
		p.OnCompleted()
		return nil
	})
}

// Empty completes immediately without values.
func Empty() Observable {
	return newObservable("rxcore.Empty", func(p *Producer) Disposable {
		p.OnCompleted()
		return nil
	})
}

// Never emits nothing and never terminates.
func Never() Observable {
	return newObservable("rxcore.Never", func(p *Producer) Disposable {
		return nil
	})
}

// Error terminates immediately with err.
func Error(err error) Observable {
	return newObservable("rxcore.Error", func(p *Producer) Disposable {
		p.OnError(err)
		return nil
	})
}

// FromChannel emits values received from ch until it is closed, which
// completes the stream. Cancelling ctx terminates the stream with the
// context's cause; disposing the subscription stops the reader goroutine.
func FromChannel(ctx context.Context, ch <-chan any) Observable {
	return newObservable("rxcore.FromChannel", func(p *Producer) Disposable {
		runCtx, cancel := context.WithCancel(ctx)

		go func() {
			defer cancel()
			for {
				select {
				case <-runCtx.Done():
					if ctx.Err() != nil {
						p.OnError(context.Cause(ctx))
					}
					return
				case v, ok := <-ch:
					if !ok {
						p.OnCompleted()
						return
					}
					p.OnNext(v)
				}
			}
		}()

		return NewBaseDisposable(cancel)
	})
}

// Interval emits 0, 1, 2, ... on s, one value per period. A nil scheduler
// means TimerScheduler(). A non-positive period fails the subscription with
// ErrNonPositivePeriod.
func Interval(period time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.Interval", func(p *Producer) Disposable {
		if period <= 0 {
			p.OnError(periodError("rxcore.Interval", period))
			return nil
		}
		var tick atomic.Int64
		return ScheduleRecurring(orTimer(s), period, p.IsStopped, func() {
			p.OnNext(int(tick.Add(1) - 1))
		})
	})
}

// Timer emits 0 on s after delay and completes. A nil scheduler means
// TimerScheduler().
func Timer(delay time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.Timer", func(p *Producer) Disposable {
		return orTimer(s).ScheduleDelayedWork(delay, func() {
			p.OnNext(0)
			p.OnCompleted()
		})
	})
}

func orTimer(s Scheduler) Scheduler {
	if s == nil {
		return TimerScheduler()
	}
	return s
}
