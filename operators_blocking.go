package rxcore

import (
	"context"
	"sync"
)

// ============================================================================
// Blocking operators
// ============================================================================
//
// The blocking helpers subscribe, wait for the stream to terminate or for
// ctx to be done, and dispose the subscription before returning. They are
// meant for program edges and tests, never for code running on a scheduler
// the stream itself depends on.

// blockingSubscribe runs source until it terminates, next returns false, or
// ctx is done.
func blockingSubscribe(ctx context.Context, source Observable, next func(value any) bool) error {
	done := make(chan error, 1)
	var once sync.Once
	finish := func(err error) {
		once.Do(func() { done <- err })
	}

	sub := NewSerialDisposable()
	defer sub.Dispose()

	sub.Set(source.Subscribe(ObserverFuncs{
		Next: func(value any) {
			if !next(value) {
				finish(nil)
				sub.Dispose()
			}
		},
		Error:     finish,
		Completed: func() { finish(nil) },
	}))

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// BlockingToSlice collects every value of source.
func BlockingToSlice(ctx context.Context, source Observable) ([]any, error) {
	var (
		mu     sync.Mutex
		values []any
	)
	err := blockingSubscribe(ctx, source, func(value any) bool {
		mu.Lock()
		values = append(values, value)
		mu.Unlock()
		return true
	})

	mu.Lock()
	defer mu.Unlock()
	return values, err
}

// BlockingFirst returns the first value of source and disposes the rest of
// the stream. An empty stream yields ErrNoElements.
func BlockingFirst(ctx context.Context, source Observable) (any, error) {
	var (
		mu    sync.Mutex
		first any
		found bool
	)
	err := blockingSubscribe(ctx, source, func(value any) bool {
		mu.Lock()
		defer mu.Unlock()
		if !found {
			first, found = value, true
		}
		return false
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoElements
	}
	return first, nil
}

// BlockingLast returns the last value of source. An empty stream yields
// ErrNoElements.
func BlockingLast(ctx context.Context, source Observable) (any, error) {
	var (
		mu    sync.Mutex
		last  any
		found bool
	)
	err := blockingSubscribe(ctx, source, func(value any) bool {
		mu.Lock()
		last, found = value, true
		mu.Unlock()
		return true
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoElements
	}
	return last, nil
}

// BlockingForEach calls action for every value of source.
func BlockingForEach(ctx context.Context, source Observable, action OnNext) error {
	return blockingSubscribe(ctx, source, func(value any) bool {
		action(value)
		return true
	})
}

// BlockingWait waits for source to terminate, ignoring its values.
func BlockingWait(ctx context.Context, source Observable) error {
	return blockingSubscribe(ctx, source, func(any) bool { return true })
}
