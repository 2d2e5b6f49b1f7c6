package rxcore

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fogfish/opts"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ============================================================================
// Subject - 热主题，多播给当前订阅者
// ============================================================================

// Subject is both an Observer and an Observable. Values pushed into it are
// delivered to every live subscriber in subscription order. OnNext may be
// called from any goroutine; the fan-out is serialized so all subscribers
// see the same order.
//
// The first terminal notification is recorded. Subscribers arriving after it
// receive that notification immediately and are not retained.
type Subject struct {
	op string

	mu   sync.Mutex
	live *orderedmap.OrderedMap[uuid.UUID, ObserverHandle]

	// drain serializes fan-out, registration and replay
	drain    serialQueue
	stopped  atomic.Bool
	terminal *Item

	replay              *replayBuffer
	replayAfterTerminal bool
}

// NewSubject creates a subject that only forwards values emitted after a
// subscriber joined.
func NewSubject() *Subject {
	return newSubject("rxcore.Subject", nil, false)
}

func newSubject(op string, replay *replayBuffer, replayAfterTerminal bool) *Subject {
	return &Subject{
		op:                  op,
		live:                orderedmap.New[uuid.UUID, ObserverHandle](),
		replay:              replay,
		replayAfterTerminal: replayAfterTerminal,
	}
}

// Subscribe registers observer with a strong handle. When the subject is
// in the middle of an emission the registration takes effect once that
// emission has been delivered.
func (s *Subject) Subscribe(observer Observer) Disposable {
	return s.subscribe(observer, false)
}

// SubscribeWeak registers observer through a weak handle: the subject does
// not keep the subscription alive. Once the returned Disposable is no longer
// referenced and has been collected, the entry is pruned on a later emission.
func (s *Subject) SubscribeWeak(observer Observer) Disposable {
	return s.subscribe(observer, true)
}

func (s *Subject) subscribe(observer Observer, weak bool) Disposable {
	if observer == nil {
		observer = ObserverFuncs{}
	}

	p := NewProducer(observer)
	handle := StrongHandle(p)
	if weak {
		handle = WeakHandle(p)
	}

	s.drain.run(func() { s.attach(p, handle) })
	return p
}

// attach runs inside the drain so replay and registration cannot interleave
// with a concurrent emission.
func (s *Subject) attach(p *Producer, handle ObserverHandle) {
	if p.IsStopped() {
		return
	}

	if s.replay != nil && (s.terminal == nil || s.replayAfterTerminal) {
		for _, v := range s.replay.snapshot() {
			p.OnNext(v)
		}
	}

	if s.terminal != nil {
		s.terminal.Accept(p)
		return
	}

	id := p.ID()
	s.mu.Lock()
	s.live.Set(id, handle)
	s.mu.Unlock()

	p.OnUnsubscribe(func() { s.remove(id) })
}

func (s *Subject) remove(id uuid.UUID) {
	s.mu.Lock()
	s.live.Delete(id)
	s.mu.Unlock()
}

// targets resolves the live set for one emission, pruning handles whose
// producer is gone or stopped.
func (s *Subject) targets() []*Producer {
	s.mu.Lock()
	defer s.mu.Unlock()

	producers := make([]*Producer, 0, s.live.Len())
	var stale []uuid.UUID
	for pair := s.live.Oldest(); pair != nil; pair = pair.Next() {
		if p, ok := pair.Value.Resolve(); ok {
			producers = append(producers, p)
			continue
		}
		stale = append(stale, pair.Key)
	}
	for _, id := range stale {
		s.live.Delete(id)
	}
	return producers
}

// OnNext delivers value to every live subscriber. After termination it is
// a no-op.
func (s *Subject) OnNext(value any) {
	if s.stopped.Load() {
		Logger().Debug("dropped value after termination", slog.String("op", s.op))
		return
	}

	s.drain.run(func() {
		if s.terminal != nil {
			return
		}
		if s.replay != nil {
			s.replay.add(value)
		}
		for _, p := range s.targets() {
			p.OnNext(value)
		}
	})
}

// OnError terminates the subject and every live subscriber with err.
func (s *Subject) OnError(err error) {
	s.terminate(ErrorItem(err))
}

// OnCompleted terminates the subject and every live subscriber.
func (s *Subject) OnCompleted() {
	s.terminate(CompletedItem())
}

func (s *Subject) terminate(item Item) {
	if !s.stopped.CompareAndSwap(false, true) {
		Logger().Debug("dropped terminal notification after termination",
			slog.String("op", s.op), slog.String("kind", item.Kind.String()))
		return
	}

	s.drain.run(func() {
		s.terminal = &item
		producers := s.targets()

		s.mu.Lock()
		s.live = orderedmap.New[uuid.UUID, ObserverHandle]()
		s.mu.Unlock()

		for _, p := range producers {
			item.Accept(p)
		}
	})
}

// HasObservers reports whether any subscriber is registered.
func (s *Subject) HasObservers() bool {
	return s.ObserverCount() > 0
}

// ObserverCount returns the number of registered subscribers. Weak entries
// whose target was collected count until the next emission prunes them.
func (s *Subject) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live.Len()
}

// IsTerminated reports whether OnError or OnCompleted has been called.
func (s *Subject) IsTerminated() bool {
	return s.stopped.Load()
}

// AsObservable hides the observer side of the subject.
func (s *Subject) AsObservable() Observable {
	return subjectObservable{s: s}
}

// AsObserver hides the observable side of the subject.
func (s *Subject) AsObserver() Observer {
	return subjectObserver{s: s}
}

type subjectObservable struct{ s *Subject }

func (o subjectObservable) Subscribe(observer Observer) Disposable {
	return o.s.Subscribe(observer)
}

type subjectObserver struct{ s *Subject }

func (o subjectObserver) OnNext(value any)  { o.s.OnNext(value) }
func (o subjectObserver) OnError(err error) { o.s.OnError(err) }
func (o subjectObserver) OnCompleted()      { o.s.OnCompleted() }

// ============================================================================
// ReplaySubject - 重放主题
// ============================================================================

type replayConfig struct {
	bufferSize int
}

// WithBufferSize bounds the replay backlog. Zero or a negative size keeps
// every value.
var WithBufferSize = opts.ForName[replayConfig, int]("bufferSize")

// ReplaySubject remembers emitted values and replays them to every new
// subscriber before it joins the live set. Once the backlog is full the
// oldest value is evicted.
//
// The replay happens inside Subscribe unless the subject is busy delivering
// an emission. A Subscribe made from a subscriber's OnNext, or while another
// goroutine is emitting, returns at once; the backlog is replayed, in order
// and ahead of any later value, as soon as the current emission finishes.
type ReplaySubject struct {
	*Subject
}

// NewReplaySubject creates a replay subject. Without WithBufferSize the
// backlog is unbounded.
func NewReplaySubject(options ...opts.Option[replayConfig]) *ReplaySubject {
	var cfg replayConfig
	if err := opts.Apply(&cfg, options); err != nil {
		panic(err)
	}
	return &ReplaySubject{
		Subject: newSubject("rxcore.ReplaySubject", newReplayBuffer(cfg.bufferSize), true),
	}
}

// Values returns a copy of the current backlog.
func (s *ReplaySubject) Values() []any {
	return s.replay.snapshot()
}

// ============================================================================
// BehaviorSubject - 行为主题
// ============================================================================

// BehaviorSubject holds a current value and delivers it to every new
// subscriber before live values. After termination only the terminal
// notification is delivered.
type BehaviorSubject struct {
	*Subject
}

// NewBehaviorSubject creates a subject whose current value is initial.
func NewBehaviorSubject(initial any) *BehaviorSubject {
	buf := newReplayBuffer(1)
	buf.add(initial)
	return &BehaviorSubject{
		Subject: newSubject("rxcore.BehaviorSubject", buf, false),
	}
}

// Value returns the current value.
func (s *BehaviorSubject) Value() any {
	values := s.replay.snapshot()
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// ============================================================================
// Replay buffer - 重放缓存
// ============================================================================

type replayBuffer struct {
	mu     sync.Mutex
	limit  int
	values []any
}

func newReplayBuffer(limit int) *replayBuffer {
	if limit < 0 {
		limit = 0
	}
	return &replayBuffer{limit: limit}
}

func (b *replayBuffer) add(value any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.values = append(b.values, value)
	if b.limit > 0 && len(b.values) > b.limit {
		over := len(b.values) - b.limit
		clear(b.values[:over])
		b.values = b.values[over:]
	}
}

func (b *replayBuffer) snapshot() []any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]any, len(b.values))
	copy(out, b.values)
	return out
}
