package rxcore

import (
	"sort"
	"sync"
	"time"
)

// ============================================================================
// TestScheduler - virtual time
// ============================================================================

// TestScheduler is a Scheduler driven by a virtual clock. Nothing runs until
// the clock is advanced; work then runs on the advancing goroutine in due
// time order, ties broken by scheduling order.
type TestScheduler struct {
	mu      sync.Mutex
	epoch   time.Time
	clock   time.Duration
	seq     uint64
	pending []*virtualTask
}

type virtualTask struct {
	due  time.Duration
	seq  uint64
	task *scheduledTask
}

// NewTestScheduler creates a scheduler whose clock starts at zero.
func NewTestScheduler() *TestScheduler {
	return &TestScheduler{epoch: time.Unix(0, 0).UTC()}
}

// Now returns the epoch plus the virtual time elapsed.
func (s *TestScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch.Add(s.clock)
}

// Elapsed returns the virtual time elapsed since the scheduler was created.
func (s *TestScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

func (s *TestScheduler) ScheduleWork(work func()) Disposable {
	return s.ScheduleDelayedWork(0, work)
}

func (s *TestScheduler) ScheduleDelayedWork(delay time.Duration, work func()) Disposable {
	if delay < 0 {
		delay = 0
	}

	task := newScheduledTask(work)

	s.mu.Lock()
	s.seq++
	vt := &virtualTask{due: s.clock + delay, seq: s.seq, task: task}
	i := sort.Search(len(s.pending), func(i int) bool {
		p := s.pending[i]
		return p.due > vt.due || (p.due == vt.due && p.seq > vt.seq)
	})
	s.pending = append(s.pending, nil)
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = vt
	s.mu.Unlock()

	return task
}

// AdvanceBy moves the clock forward by d, running every task that falls due.
func (s *TestScheduler) AdvanceBy(d time.Duration) {
	s.mu.Lock()
	target := s.clock + d
	s.mu.Unlock()
	s.AdvanceTo(target)
}

// AdvanceTo moves the clock to the virtual instant t, running every task due
// at or before it. Work scheduled by running work is honored when it falls
// due within the same advance. Moving backwards is a no-op.
func (s *TestScheduler) AdvanceTo(t time.Duration) {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 || s.pending[0].due > t {
			if t > s.clock {
				s.clock = t
			}
			s.mu.Unlock()
			return
		}

		next := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		if next.due > s.clock {
			s.clock = next.due
		}
		s.mu.Unlock()

		// run without the lock so the work may schedule more work
		next.task.run("rxcore.TestScheduler", Logger())
	}
}

// Pending returns the number of scheduled tasks that are neither run nor
// disposed.
func (s *TestScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, vt := range s.pending {
		if !vt.task.IsDisposed() {
			n++
		}
	}
	return n
}
