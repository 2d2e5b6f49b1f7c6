package rxcore

import (
	"errors"
	"log/slog"

	"github.com/xinjiayu/rxcore/pkg/slogx"
)

// ============================================================================
// Side effect operators
// ============================================================================

// sideEffects groups the hooks of the Do family. Nil hooks are skipped.
type sideEffects struct {
	next           func(value any)
	err            func(err error)
	completed      func()
	terminate      func()
	afterTerminate func()
}

func doObservable(op string, source Observable, hooks sideEffects) Observable {
	return newObservable(op, func(p *Producer) Disposable {
		// terminal hooks run before the notification; a panicking hook
		// replaces the notification with its error
		beforeTerminal := func() error {
			if hooks.terminate == nil {
				return nil
			}
			return SafeExecute(op, hooks.terminate)
		}
		afterTerminal := func() {
			if hooks.afterTerminate == nil {
				return
			}
			if err := SafeExecute(op, hooks.afterTerminate); err != nil {
				logPanic(op, err)
			}
		}

		return source.Subscribe(&downstream{
			p: p,
			next: func(value any) {
				if p.IsStopped() {
					return
				}
				if hooks.next != nil {
					if err := SafeExecute(op, func() { hooks.next(value) }); err != nil {
						p.OnError(err)
						return
					}
				}
				p.OnNext(value)
			},
			err: func(err error) {
				if hooks.err != nil {
					if herr := SafeExecute(op, func() { hooks.err(err) }); herr != nil {
						err = errors.Join(err, herr)
					}
				}
				if herr := beforeTerminal(); herr != nil {
					err = errors.Join(err, herr)
				}
				p.OnError(err)
				afterTerminal()
			},
			completed: func() {
				if hooks.completed != nil {
					if err := SafeExecute(op, hooks.completed); err != nil {
						p.OnError(err)
						afterTerminal()
						return
					}
				}
				if err := beforeTerminal(); err != nil {
					p.OnError(err)
					afterTerminal()
					return
				}
				p.OnCompleted()
				afterTerminal()
			},
		})
	})
}

// Do calls the methods of observer for every notification before passing it
// downstream.
func Do(source Observable, observer Observer) Observable {
	return doObservable("rxcore.Do", source, sideEffects{
		next:      observer.OnNext,
		err:       observer.OnError,
		completed: observer.OnCompleted,
	})
}

// DoOnNext calls action for every value.
func DoOnNext(source Observable, action OnNext) Observable {
	return doObservable("rxcore.DoOnNext", source, sideEffects{next: action})
}

// DoOnError calls action with the terminal error.
func DoOnError(source Observable, action OnError) Observable {
	return doObservable("rxcore.DoOnError", source, sideEffects{err: action})
}

// DoOnCompleted calls action on normal completion.
func DoOnCompleted(source Observable, action OnComplete) Observable {
	return doObservable("rxcore.DoOnCompleted", source, sideEffects{completed: action})
}

// DoOnTerminate calls action once, before the terminal notification is
// passed downstream, whether the stream completed or failed.
func DoOnTerminate(source Observable, action func()) Observable {
	return doObservable("rxcore.DoOnTerminate", source, sideEffects{terminate: action})
}

// DoAfterTerminate calls action once, after the terminal notification has
// been delivered downstream.
func DoAfterTerminate(source Observable, action func()) Observable {
	return doObservable("rxcore.DoAfterTerminate", source, sideEffects{afterTerminate: action})
}

// DoOnDispose calls action when the subscriber disposes its subscription.
// It does not run when the stream terminates on its own.
func DoOnDispose(source Observable, action func()) Observable {
	return newObservable("rxcore.DoOnDispose", func(p *Producer) Disposable {
		p.OnUnsubscribe(func() {
			if p.IsCancelled() {
				action()
			}
		})
		return source.Subscribe(p)
	})
}

// Log writes every notification to the engine logger at debug level under
// name and passes it on unchanged.
func Log(source Observable, name string) Observable {
	logger := func() *slog.Logger { return Logger().With(slog.String("stream", name)) }
	return doObservable("rxcore.Log", source, sideEffects{
		next: func(value any) {
			logger().Debug("next", slogx.Any("value", value))
		},
		err: func(err error) {
			logger().Debug("error", slogx.Error(err))
		},
		completed: func() {
			logger().Debug("completed")
		},
	})
}
