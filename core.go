// Package rxcore provides the type-erased core of a reactive stream engine:
// observables, observers, producers, subjects, schedulers and operators.
// 响应式流引擎的无类型核心，包含可观察序列、观察者、订阅、主题、调度器与操作符。
//
// Values travel through the core as Item notifications carrying an untyped
// payload. The rx sub-package layers compile-time type safety on top.
package rxcore

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ============================================================================
// Notifications - 通知
// ============================================================================

// Kind identifies the type of notification carried by an Item.
type Kind uint8

const (
	// KindNext carries a value.
	KindNext Kind = iota
	// KindError terminates the stream with an error.
	KindError
	// KindCompleted terminates the stream normally.
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindCompleted:
		return "completed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Item is one notification flowing through a stream.
// 流中的一个通知：值、错误或完成。
type Item struct {
	Kind  Kind
	Value any
	Err   error
}

// NextItem creates a value notification.
func NextItem(value any) Item {
	return Item{Kind: KindNext, Value: value}
}

// ErrorItem creates an error notification.
func ErrorItem(err error) Item {
	return Item{Kind: KindError, Err: err}
}

// CompletedItem creates a completion notification.
func CompletedItem() Item {
	return Item{Kind: KindCompleted}
}

// IsTerminal reports whether the item ends the stream.
func (item Item) IsTerminal() bool {
	return item.Kind != KindNext
}

// Accept delivers the item to an observer.
func (item Item) Accept(observer Observer) {
	switch item.Kind {
	case KindNext:
		observer.OnNext(item.Value)
	case KindError:
		observer.OnError(item.Err)
	case KindCompleted:
		observer.OnCompleted()
	}
}

// ============================================================================
// Function types
// ============================================================================

// OnNext handles a value.
type OnNext func(value any)

// OnError handles a terminal error.
type OnError func(err error)

// OnComplete handles normal termination.
type OnComplete func()

// Predicate decides whether a value passes a filter.
type Predicate func(value any) bool

// Transformer maps a value, failing with an error.
type Transformer func(value any) (any, error)

// ============================================================================
// Observer - 观察者
// ============================================================================

// Observer is the three-method sink of a stream. OnError and OnCompleted are
// mutually exclusive and delivered at most once; nothing follows them.
type Observer interface {
	OnNext(value any)
	OnError(err error)
	OnCompleted()
}

// ObserverFuncs adapts optional callbacks to Observer. An error arriving
// with no Error callback is logged instead of being dropped silently.
type ObserverFuncs struct {
	Next      OnNext
	Error     OnError
	Completed OnComplete
}

func (o ObserverFuncs) OnNext(value any) {
	if o.Next != nil {
		o.Next(value)
	}
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
		return
	}
	logUnhandledError(err)
}

func (o ObserverFuncs) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

// ============================================================================
// Observable
// ============================================================================

// Observable is a source of values. Subscribe links an observer to it and
// returns the handle that tears the link down.
type Observable interface {
	Subscribe(observer Observer) Disposable
}

// SubscribeFuncs subscribes with plain callbacks, any of which may be nil.
func SubscribeFuncs(source Observable, onNext OnNext, onError OnError, onComplete OnComplete) Disposable {
	return source.Subscribe(ObserverFuncs{Next: onNext, Error: onError, Completed: onComplete})
}

// ============================================================================
// Scheduler - 调度器接口
// ============================================================================

// Scheduler decides where and when a unit of work executes. The returned
// Disposable cancels work that has not started yet.
type Scheduler interface {
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
	// ScheduleWork runs work as soon as the scheduler allows.
	ScheduleWork(work func()) Disposable
	// ScheduleDelayedWork runs work once delay has elapsed.
	ScheduleDelayedWork(delay time.Duration, work func()) Disposable
}

// ============================================================================
// Disposables - 资源释放
// ============================================================================

// Disposable releases a resource. Dispose is idempotent and safe to call
// concurrently from any goroutine.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

// baseDisposable runs an action exactly once.
type baseDisposable struct {
	disposed int32
	action   func()
}

// NewBaseDisposable creates a Disposable that runs action on first Dispose.
func NewBaseDisposable(action func()) Disposable {
	return &baseDisposable{action: action}
}

// Dispose runs the action once.
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed reports whether Dispose has been called.
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// Disposed returns a Disposable that is already disposed.
func Disposed() Disposable {
	d := &baseDisposable{}
	d.disposed = 1
	return d
}

// CompositeDisposable 组合式资源管理器, holds many resources and releases
// them together.
type CompositeDisposable struct {
	mu        sync.Mutex
	disposed  bool
	resources []Disposable
}

// NewCompositeDisposable creates a composite pre-filled with resources.
func NewCompositeDisposable(resources ...Disposable) *CompositeDisposable {
	cd := &CompositeDisposable{resources: make([]Disposable, 0, len(resources))}
	for _, r := range resources {
		if r != nil {
			cd.resources = append(cd.resources, r)
		}
	}
	return cd
}

// Add adds a resource; it is disposed immediately if the composite is.
func (cd *CompositeDisposable) Add(disposable Disposable) {
	if disposable == nil {
		return
	}
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		disposable.Dispose()
		return
	}
	cd.resources = append(cd.resources, disposable)
	cd.mu.Unlock()
}

// Remove drops a resource without disposing it.
func (cd *CompositeDisposable) Remove(disposable Disposable) bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	for i, r := range cd.resources {
		if r == disposable {
			cd.resources = append(cd.resources[:i], cd.resources[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of held resources.
func (cd *CompositeDisposable) Len() int {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return len(cd.resources)
}

// Clear disposes the held resources but keeps the composite usable.
func (cd *CompositeDisposable) Clear() {
	cd.mu.Lock()
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for _, r := range resources {
		r.Dispose()
	}
}

// Dispose releases all resources; later Adds are disposed on arrival.
func (cd *CompositeDisposable) Dispose() {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	// outside the lock: a resource may re-enter the composite
	for _, r := range resources {
		r.Dispose()
	}
}

// IsDisposed reports whether the composite has been disposed.
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.disposed
}

// SerialDisposable holds one replaceable resource. Setting a new one
// disposes the previous; after Dispose every Set disposes its argument.
type SerialDisposable struct {
	mu       sync.Mutex
	disposed bool
	current  Disposable
}

// NewSerialDisposable creates an empty serial disposable.
func NewSerialDisposable() *SerialDisposable {
	return &SerialDisposable{}
}

// Set replaces the held resource.
func (sd *SerialDisposable) Set(disposable Disposable) {
	sd.mu.Lock()
	if sd.disposed {
		sd.mu.Unlock()
		if disposable != nil {
			disposable.Dispose()
		}
		return
	}
	previous := sd.current
	sd.current = disposable
	sd.mu.Unlock()

	if previous != nil && previous != disposable {
		previous.Dispose()
	}
}

// setIfEmpty stores disposable only when nothing was set before.
func (sd *SerialDisposable) setIfEmpty(disposable Disposable) {
	sd.mu.Lock()
	if sd.disposed {
		sd.mu.Unlock()
		disposable.Dispose()
		return
	}
	if sd.current == nil {
		sd.current = disposable
	}
	sd.mu.Unlock()
}

// Get returns the held resource.
func (sd *SerialDisposable) Get() Disposable {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.current
}

// Dispose disposes the held resource and every later one.
func (sd *SerialDisposable) Dispose() {
	sd.mu.Lock()
	if sd.disposed {
		sd.mu.Unlock()
		return
	}
	sd.disposed = true
	current := sd.current
	sd.current = nil
	sd.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (sd *SerialDisposable) IsDisposed() bool {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.disposed
}
