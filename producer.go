package rxcore

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"github.com/xinjiayu/rxcore/pkg/uuidx"
)

// ============================================================================
// Producer - the live link between one subscriber and one source
// ============================================================================

// Producer is created by every Subscribe call. It forwards notifications
// to its downstream observer, enforces termination-once and owns exactly one
// upstream Disposable, which it releases when it is disposed or terminates.
//
// A Producer is never owned by the Observable it serves; the subscriber holds
// it through the returned Disposable.
type Producer struct {
	id       uuid.UUID
	observer Observer

	cancelled  atomic.Bool
	terminated atomic.Bool
	released   atomic.Bool

	mu            sync.Mutex
	upstream      Disposable
	onUnsubscribe []func()
}

// NewProducer links observer to a subscription that has yet to attach its
// upstream.
func NewProducer(observer Observer) *Producer {
	return &Producer{
		id:       uuidx.New(),
		observer: observer,
	}
}

// ID returns the unique id of the subscription.
func (p *Producer) ID() uuid.UUID {
	return p.id
}

// OnNext forwards a value unless the producer is cancelled or terminated.
// A panic in the downstream observer terminates the subscription with a
// *PanicError instead of unwinding into the source.
func (p *Producer) OnNext(value any) {
	if p.IsStopped() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			p.OnError(newPanicError("rxcore.Producer.OnNext", r))
		}
	}()
	p.observer.OnNext(value)
}

// OnError delivers the terminal error once and detaches from upstream.
func (p *Producer) OnError(err error) {
	if p.cancelled.Load() || !p.terminated.CompareAndSwap(false, true) {
		Logger().Debug("dropped terminal error after termination", slog.String("producer", p.id.String()))
		return
	}

	defer p.release()
	if perr := SafeExecute("rxcore.Producer.OnError", func() { p.observer.OnError(err) }); perr != nil {
		logPanic("rxcore.Producer.OnError", perr)
	}
}

// OnCompleted delivers completion once and detaches from upstream.
func (p *Producer) OnCompleted() {
	if p.cancelled.Load() || !p.terminated.CompareAndSwap(false, true) {
		Logger().Debug("dropped completion after termination", slog.String("producer", p.id.String()))
		return
	}

	defer p.release()
	if perr := SafeExecute("rxcore.Producer.OnCompleted", p.observer.OnCompleted); perr != nil {
		logPanic("rxcore.Producer.OnCompleted", perr)
	}
}

// SetUpstream attaches the upstream handle. If the producer has already
// been released the handle is disposed straight away.
func (p *Producer) SetUpstream(upstream Disposable) {
	if upstream == nil {
		return
	}

	p.mu.Lock()
	if p.released.Load() {
		p.mu.Unlock()
		upstream.Dispose()
		return
	}
	previous := p.upstream
	p.upstream = upstream
	p.mu.Unlock()

	if previous != nil {
		previous.Dispose()
	}
}

// OnUnsubscribe registers a callback run once the producer is released,
// either by Dispose or after a terminal notification.
func (p *Producer) OnUnsubscribe(callback func()) {
	p.mu.Lock()
	if p.released.Load() {
		p.mu.Unlock()
		callback()
		return
	}
	p.onUnsubscribe = append(p.onUnsubscribe, callback)
	p.mu.Unlock()
}

// Dispose cancels the subscription. It is idempotent, never panics, and is
// safe to call concurrently with an emission in flight: that call may finish
// but no new one starts.
func (p *Producer) Dispose() {
	if !p.cancelled.CompareAndSwap(false, true) {
		return
	}
	p.release()
}

// IsDisposed reports whether the producer has let go of its upstream.
func (p *Producer) IsDisposed() bool {
	return p.released.Load()
}

// IsCancelled reports whether Dispose was called.
func (p *Producer) IsCancelled() bool {
	return p.cancelled.Load()
}

// stopper is implemented by observers that can tell a source to stop early,
// such as operator stages whose own subscription already ended.
type stopper interface {
	IsStopped() bool
}

// IsStopped reports whether no further notifications will be delivered,
// either because this subscription ended or the observer it feeds stopped.
func (p *Producer) IsStopped() bool {
	if p.cancelled.Load() || p.terminated.Load() {
		return true
	}
	if s, ok := p.observer.(stopper); ok {
		return s.IsStopped()
	}
	return false
}

func (p *Producer) release() {
	p.mu.Lock()
	if !p.released.CompareAndSwap(false, true) {
		p.mu.Unlock()
		return
	}
	upstream := p.upstream
	callbacks := p.onUnsubscribe
	p.upstream = nil
	p.onUnsubscribe = nil
	p.mu.Unlock()

	for _, cb := range callbacks {
		if err := SafeExecute("rxcore.Producer.OnUnsubscribe", cb); err != nil {
			logPanic("rxcore.Producer.OnUnsubscribe", err)
		}
	}
	if upstream != nil {
		upstream.Dispose()
	}
}

// ============================================================================
// ObserverHandle - strong or weak reference to a downstream producer
// ============================================================================

// ObserverHandle references a downstream producer either strongly or
// weakly. Hot sources that would otherwise keep their subscribers alive
// hold weak handles and resolve them only for the span of one emission.
type ObserverHandle struct {
	strong *Producer
	weak   weak.Pointer[Producer]
	isWeak bool
}

// StrongHandle keeps p alive for as long as the handle is held.
func StrongHandle(p *Producer) ObserverHandle {
	return ObserverHandle{strong: p}
}

// WeakHandle does not keep p alive.
func WeakHandle(p *Producer) ObserverHandle {
	return ObserverHandle{weak: weak.Make(p), isWeak: true}
}

// IsWeak reports whether the handle is weak.
func (h ObserverHandle) IsWeak() bool {
	return h.isWeak
}

// Resolve returns a strong reference to a producer that is still live.
func (h ObserverHandle) Resolve() (*Producer, bool) {
	p := h.strong
	if h.isWeak {
		p = h.weak.Value()
	}
	if p == nil || p.IsStopped() {
		return nil, false
	}
	return p, true
}

// ============================================================================
// Serialization
// ============================================================================

// serialQueue runs closures one at a time in submission order. A closure
// submitted while another is running, from any goroutine or re-entrantly,
// is queued and run by the goroutine already draining.
type serialQueue struct {
	mu      sync.Mutex
	running bool
	pending []func()
}

func (q *serialQueue) run(work func()) {
	q.mu.Lock()
	if q.running {
		q.pending = append(q.pending, work)
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.drain(work)
}

func (q *serialQueue) drain(work func()) {
	defer func() {
		if r := recover(); r != nil {
			q.mu.Lock()
			q.running = false
			q.pending = nil
			q.mu.Unlock()
			panic(r)
		}
	}()

	for {
		work()

		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		work = q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()
	}
}

// serializedObserver lets several goroutines emit into one observer while
// the observer sees calls one at a time. Everything after the first
// terminal notification is dropped.
type serializedObserver struct {
	queue  serialQueue
	done   atomic.Bool
	target Observer
}

func serialize(target Observer) *serializedObserver {
	return &serializedObserver{target: target}
}

func (s *serializedObserver) OnNext(value any) {
	if s.done.Load() {
		return
	}
	s.queue.run(func() { s.target.OnNext(value) })
}

func (s *serializedObserver) OnError(err error) {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.queue.run(func() { s.target.OnError(err) })
}

func (s *serializedObserver) OnCompleted() {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.queue.run(s.target.OnCompleted)
}
