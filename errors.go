package rxcore

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// ============================================================================
// Error taxonomy
// ============================================================================

// ErrorKind identifies the category of an engine error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown origin.
	KindUnknown ErrorKind = iota
	// KindCallback indicates a failure inside a user-supplied function.
	KindCallback
	// KindSubscribe indicates a failure while establishing a subscription.
	KindSubscribe
	// KindType indicates a payload that did not match the expected type.
	KindType
	// KindScheduler indicates a failure inside scheduled work.
	KindScheduler
	// KindEmpty indicates a stream that completed without the required value.
	KindEmpty
)

func (k ErrorKind) String() string {
	switch k {
	case KindCallback:
		return "callback"
	case KindSubscribe:
		return "subscribe"
	case KindType:
		return "type"
	case KindScheduler:
		return "scheduler"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

var (
	// ErrNoElements is reported when a stream completes before producing
	// the value an operator needs.
	ErrNoElements = errors.New("rxcore: sequence contains no elements")

	// ErrSchedulerDisposed is reported for work submitted to a scheduler
	// that has been shut down.
	ErrSchedulerDisposed = errors.New("rxcore: scheduler disposed")

	// ErrNonPositivePeriod is reported by periodic sources and operators
	// given a period that is zero or negative.
	ErrNonPositivePeriod = errors.New("rxcore: non-positive period")
)

// StreamError is a structured engine error.
type StreamError struct {
	// Op is the operator or component that failed (e.g. "rxcore.Map").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// PanicError is a recovered panic from user code.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace is the stack captured at recovery.
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Op, e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(op string, value any) *PanicError {
	return &PanicError{Op: op, Value: value, StackTrace: string(debug.Stack())}
}

func periodError(op string, period time.Duration) *StreamError {
	return &StreamError{Op: op, Kind: KindSubscribe, Err: fmt.Errorf("%w: %v", ErrNonPositivePeriod, period)}
}

// ============================================================================
// Safe invocation
// ============================================================================

// SafeExecute runs action and converts a panic into a *PanicError.
func SafeExecute(op string, action func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()

	action()
	return nil
}

func safeTransform(op string, fn Transformer, value any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()

	return fn(value)
}

func safePredicate(op string, fn Predicate, value any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()

	return fn(value), nil
}

func safeObservable(op string, fn func() Observable) (obs Observable, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(op, r)
		}
	}()

	obs = fn()
	if obs == nil {
		return nil, &StreamError{Op: op, Kind: KindCallback, Err: errors.New("returned a nil observable")}
	}
	return obs, nil
}
