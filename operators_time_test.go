package rxcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ms = time.Millisecond

// emitAt schedules subject emissions at virtual offsets.
func emitAt(ts *TestScheduler, s *Subject, at time.Duration, value any) {
	ts.ScheduleDelayedWork(at, func() { s.OnNext(value) })
}

func TestDebounce(t *testing.T) {
	t.Run("emits the last value after a quiet period", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		got, _ := recordTimes(ts, Debounce(s, 50*ms, ts))

		emitAt(ts, s, 0, "a")
		emitAt(ts, s, 10*ms, "b")
		emitAt(ts, s, 20*ms, "c")

		ts.AdvanceTo(69 * ms)
		assert.Empty(t, *got)

		ts.AdvanceTo(70 * ms)
		assert.Equal(t, []timed{{At: 70 * ms, Value: "c"}}, *got)

		ts.AdvanceTo(time.Second)
		assert.Len(t, *got, 1)
	})

	t.Run("separate bursts", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		got, _ := recordTimes(ts, Debounce(s, 50*ms, ts))

		emitAt(ts, s, 0, 1)
		emitAt(ts, s, 100*ms, 2)
		ts.AdvanceTo(time.Second)

		assert.Equal(t, []timed{{At: 50 * ms, Value: 1}, {At: 150 * ms, Value: 2}}, *got)
	})

	t.Run("flushes the pending value on completion", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		rec := newRecorder()
		Debounce(s, 50*ms, ts).Subscribe(rec)

		s.OnNext(1)
		s.OnCompleted()

		assert.Equal(t, ints(1), rec.Values())
		assert.True(t, rec.Completed())
		assert.Zero(t, ts.Pending())
	})

	t.Run("error drops the pending value", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		rec := newRecorder()
		Debounce(s, 50*ms, ts).Subscribe(rec)

		s.OnNext(1)
		s.OnError(errBoom)
		ts.AdvanceBy(time.Second)

		assert.Empty(t, rec.Values())
		assert.ErrorIs(t, rec.Err(), errBoom)
	})

	t.Run("dispose cancels the timer", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		rec := newRecorder()
		d := Debounce(s, 50*ms, ts).Subscribe(rec)

		s.OnNext(1)
		d.Dispose()
		ts.AdvanceBy(time.Second)

		assert.Empty(t, rec.Values())
		assert.False(t, s.HasObservers())
	})

	t.Run("completion racing the timer keeps the pending value", func(t *testing.T) {
		w := NewWorkerScheduler()
		defer w.Dispose()

		for i := 0; i < 200; i++ {
			s := NewSubject()
			rec := newRecorder()
			Debounce(s, ms, w).Subscribe(rec)

			s.OnNext(i)
			time.Sleep(ms)
			s.OnCompleted()

			rec.wait(t)
			require.Equal(t, ints(i), rec.Values(), "iteration %d", i)
			require.True(t, rec.Completed())
		}
	})

	t.Run("a value emitted from the flush precedes the completion", func(t *testing.T) {
		ts := NewTestScheduler()
		s := NewSubject()
		rec := newRecorder()
		Debounce(s, 50*ms, ts).Subscribe(ObserverFuncs{
			Next: func(value any) {
				rec.OnNext(value)
				s.OnCompleted()
			},
			Completed: rec.OnCompleted,
		})

		s.OnNext(1)
		ts.AdvanceBy(50 * ms)

		assert.Equal(t, ints(1), rec.Values())
		assert.True(t, rec.Completed())
	})
}

func TestThrottleFirst(t *testing.T) {
	ts := NewTestScheduler()
	s := NewSubject()
	got, _ := recordTimes(ts, ThrottleFirst(s, 50*ms, ts))

	emitAt(ts, s, 0, "v0")
	emitAt(ts, s, 5*ms, "v5")
	emitAt(ts, s, 60*ms, "v60")
	emitAt(ts, s, 65*ms, "v65")
	ts.AdvanceTo(time.Second)

	assert.Equal(t, []timed{{At: 0, Value: "v0"}, {At: 60 * ms, Value: "v60"}}, *got)
}

func TestSample(t *testing.T) {
	ts := NewTestScheduler()
	s := NewSubject()
	rec := newRecorder()
	got, _ := recordTimes(ts, Sample(s, 50*ms, ts))
	ThrottleLast(s, 50*ms, ts).Subscribe(rec)

	emitAt(ts, s, 10*ms, "a")
	emitAt(ts, s, 20*ms, "b")
	emitAt(ts, s, 120*ms, "c")
	emitAt(ts, s, 160*ms, "d")
	ts.AdvanceTo(180 * ms)
	s.OnCompleted()

	assert.Equal(t, []timed{{At: 50 * ms, Value: "b"}, {At: 150 * ms, Value: "c"}}, *got)
	assert.Equal(t, []any{"b", "c"}, rec.Values())
	assert.True(t, rec.Completed())
	assert.Zero(t, ts.Pending())
}

func TestSampleRejectsNonPositiveInterval(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		interval time.Duration
		sample   func(Observable, time.Duration, Scheduler) Observable
	}{
		{name: "sample zero", op: "rxcore.Sample", interval: 0, sample: Sample},
		{name: "throttle last negative", op: "rxcore.Sample", interval: -ms, sample: ThrottleLast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTestScheduler()
			s := NewSubject()
			rec := newRecorder()
			tt.sample(s, tt.interval, ts).Subscribe(rec)

			ts.AdvanceBy(ms)
			s.OnNext("a")

			var se *StreamError
			require.ErrorAs(t, rec.Err(), &se)
			assert.Equal(t, tt.op, se.Op)
			assert.Equal(t, KindSubscribe, se.Kind)
			assert.ErrorIs(t, rec.Err(), ErrNonPositivePeriod)
			assert.Empty(t, rec.Values())
			assert.Zero(t, ts.Pending())
			assert.False(t, s.HasObservers())
		})
	}
}

func TestDelay(t *testing.T) {
	ts := NewTestScheduler()
	s := NewSubject()
	rec := newRecorder()
	got, _ := recordTimes(ts, Delay(s, 30*ms, ts))
	Delay(s, 30*ms, ts).Subscribe(rec)

	emitAt(ts, s, 0, 1)
	emitAt(ts, s, 10*ms, 2)
	ts.ScheduleDelayedWork(20*ms, s.OnCompleted)

	ts.AdvanceTo(35 * ms)
	assert.Equal(t, []timed{{At: 30 * ms, Value: 1}}, *got)
	assert.False(t, rec.Completed())

	ts.AdvanceTo(time.Second)
	assert.Equal(t, []timed{{At: 30 * ms, Value: 1}, {At: 40 * ms, Value: 2}}, *got)
	assert.True(t, rec.Completed())
}
