package rxcore

import (
	"sync"
	"time"
)

// ============================================================================
// Time-based operators
// ============================================================================
//
// Every time-based operator reads time and schedules its timers through the
// scheduler it is given, so a TestScheduler makes it fully deterministic.
// A nil scheduler means TimerScheduler().

// Debounce emits a value only after d has passed without a newer one. A
// value still pending when the source completes is emitted before the
// completion; an error drops it.
func Debounce(source Observable, d time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.Debounce", func(p *Producer) Disposable {
		sched := orTimer(s)
		timer := NewSerialDisposable()

		var (
			mu     sync.Mutex
			latest any
			has    bool
			gen    uint64
			// a claimed value is delivered before anything queued after it
			emit serialQueue
		)

		claim := func(want uint64, force bool) (any, bool) {
			mu.Lock()
			defer mu.Unlock()
			if !has || (!force && gen != want) {
				return nil, false
			}
			v := latest
			latest, has = nil, false
			return v, true
		}

		upstream := source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				mu.Lock()
				gen++
				current := gen
				latest, has = value, true
				mu.Unlock()

				timer.Set(sched.ScheduleDelayedWork(d, func() {
					emit.run(func() {
						if v, ok := claim(current, false); ok {
							p.OnNext(v)
						}
					})
				}))
			},
			err: func(err error) {
				timer.Dispose()
				emit.run(func() {
					claim(0, true)
					p.OnError(err)
				})
			},
			completed: func() {
				timer.Dispose()
				emit.run(func() {
					if v, ok := claim(0, true); ok {
						p.OnNext(v)
					}
					p.OnCompleted()
				})
			},
		})
		return NewCompositeDisposable(upstream, timer)
	})
}

// ThrottleFirst emits a value and then ignores the values that follow it
// within d, measured with the scheduler's clock.
func ThrottleFirst(source Observable, d time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.ThrottleFirst", func(p *Producer) Disposable {
		sched := orTimer(s)

		var (
			mu      sync.Mutex
			last    time.Time
			emitted bool
		)

		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				now := sched.Now()
				mu.Lock()
				if emitted && now.Sub(last) < d {
					mu.Unlock()
					return
				}
				emitted, last = true, now
				mu.Unlock()
				p.OnNext(value)
			},
		})
	})
}

// ThrottleLast emits, once per interval, the most recent value seen during
// that interval. It is the same operator as Sample.
func ThrottleLast(source Observable, interval time.Duration, s Scheduler) Observable {
	return Sample(source, interval, s)
}

// Sample emits the latest unseen value at every tick of interval. Ticks
// with no new value emit nothing. A value pending at completion is not
// emitted. A non-positive interval fails the subscription with
// ErrNonPositivePeriod.
func Sample(source Observable, interval time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.Sample", func(p *Producer) Disposable {
		if interval <= 0 {
			p.OnError(periodError("rxcore.Sample", interval))
			return nil
		}
		out := serialize(p)

		var (
			mu     sync.Mutex
			latest any
			has    bool
		)

		ticker := ScheduleRecurring(orTimer(s), interval, p.IsStopped, func() {
			mu.Lock()
			if !has {
				mu.Unlock()
				return
			}
			v := latest
			latest, has = nil, false
			mu.Unlock()
			out.OnNext(v)
		})

		upstream := source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				mu.Lock()
				latest, has = value, true
				mu.Unlock()
			},
			err: func(err error) {
				ticker.Dispose()
				out.OnError(err)
			},
			completed: func() {
				ticker.Dispose()
				out.OnCompleted()
			},
		})
		return NewCompositeDisposable(upstream, ticker)
	})
}

// Delay shifts every notification forward by d on s. Errors are delivered
// after the values emitted before them.
func Delay(source Observable, d time.Duration, s Scheduler) Observable {
	return newObservable("rxcore.Delay", func(p *Producer) Disposable {
		sched := orTimer(s)
		out := serialize(p)
		pending := NewCompositeDisposable()

		later := func(item Item) {
			slot := NewSerialDisposable()
			pending.Add(slot)
			slot.Set(sched.ScheduleDelayedWork(d, func() {
				pending.Remove(slot)
				item.Accept(out)
			}))
		}

		upstream := source.Subscribe(&downstream{
			p:         p,
			next:      func(value any) { later(NextItem(value)) },
			err:       func(err error) { later(ErrorItem(err)) },
			completed: func() { later(CompletedItem()) },
		})
		return NewCompositeDisposable(upstream, pending)
	})
}
