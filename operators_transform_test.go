package rxcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(v any) (any, error) {
	return v.(int) * 2, nil
}

func TestMap(t *testing.T) {
	t.Run("transforms every value", func(t *testing.T) {
		rec := newRecorder()
		Map(Just(1, 2, 3), double).Subscribe(rec)

		assert.Equal(t, ints(2, 4, 6), rec.Values())
		assert.True(t, rec.Completed())
	})

	t.Run("error from the function terminates", func(t *testing.T) {
		rec := newRecorder()
		Map(Just(1, 2, 3), func(v any) (any, error) {
			if v == 2 {
				return nil, errBoom
			}
			return v.(int) * 2, nil
		}).Subscribe(rec)

		assert.Equal(t, ints(2), rec.Values())
		assert.ErrorIs(t, rec.Err(), errBoom)

		var se *StreamError
		require.ErrorAs(t, rec.Err(), &se)
		assert.Equal(t, KindCallback, se.Kind)
		assert.Equal(t, "rxcore.Map", se.Op)
	})

	t.Run("panic in the function terminates", func(t *testing.T) {
		rec := newRecorder()
		Map(Just(1, 2), func(v any) (any, error) {
			panic("no")
		}).Subscribe(rec)

		var pe *PanicError
		require.ErrorAs(t, rec.Err(), &pe)
		assert.Equal(t, "no", pe.Value)
		assert.Empty(t, rec.Values())
	})

	t.Run("error from the source passes through", func(t *testing.T) {
		rec := newRecorder()
		Map(Error(errBoom), double).Subscribe(rec)
		assert.ErrorIs(t, rec.Err(), errBoom)
	})
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name      string
		predicate Predicate
		values    []any
		completed bool
		panicked  bool
	}{
		{
			name:      "keeps matching values",
			predicate: func(v any) bool { return v.(int)%2 == 0 },
			values:    ints(2, 4, 6),
			completed: true,
		},
		{
			name:      "drops everything",
			predicate: func(any) bool { return false },
			values:    []any{},
			completed: true,
		},
		{
			name: "predicate panic terminates with an error",
			predicate: func(v any) bool {
				if v.(int) == 3 {
					panic("bad value")
				}
				return v.(int)%2 == 0
			},
			values:   ints(2),
			panicked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var produced int
			rec := newRecorder()
			Filter(DoOnNext(Range(1, 6), func(any) { produced++ }), tt.predicate).Subscribe(rec)

			assert.Equal(t, tt.values, rec.Values())
			assert.Equal(t, tt.completed, rec.Completed())
			assert.Equal(t, 1, rec.Terminals())

			if !tt.panicked {
				assert.NoError(t, rec.Err())
				return
			}
			var pe *PanicError
			require.ErrorAs(t, rec.Err(), &pe)
			assert.Equal(t, "rxcore.Filter", pe.Op)
			assert.Equal(t, "bad value", pe.Value)
			assert.Equal(t, 3, produced)
		})
	}
}

func TestTake(t *testing.T) {
	t.Run("stops the source", func(t *testing.T) {
		var produced int
		source := DoOnNext(Range(0, 1000), func(any) { produced++ })

		rec := newRecorder()
		Take(source, 3).Subscribe(rec)

		assert.Equal(t, ints(0, 1, 2), rec.Values())
		assert.True(t, rec.Completed())
		assert.Equal(t, 3, produced)
	})

	t.Run("zero completes at once", func(t *testing.T) {
		rec := newRecorder()
		Take(Never(), 0).Subscribe(rec)
		assert.True(t, rec.Completed())
	})
}

func TestFlatMap(t *testing.T) {
	t.Run("merges inner streams", func(t *testing.T) {
		rec := newRecorder()
		FlatMap(Just(1, 2, 3), func(v any) Observable {
			return Just(v, v.(int)*10)
		}).Subscribe(rec)

		assert.Equal(t, ints(1, 10, 2, 20, 3, 30), rec.Values())
		assert.True(t, rec.Completed())
	})

	t.Run("waits for inner streams to complete", func(t *testing.T) {
		inner := NewSubject()
		rec := newRecorder()
		FlatMap(Just(1), func(any) Observable { return inner }).Subscribe(rec)

		assert.False(t, rec.Completed())
		inner.OnNext("x")
		inner.OnCompleted()

		assert.Equal(t, []any{"x"}, rec.Values())
		assert.True(t, rec.Completed())
	})

	t.Run("inner error terminates and disposes the rest", func(t *testing.T) {
		outer := NewSubject()
		rec := newRecorder()
		FlatMap(outer, func(v any) Observable {
			if v == 2 {
				return Error(errBoom)
			}
			return Never()
		}).Subscribe(rec)

		outer.OnNext(1)
		outer.OnNext(2)

		assert.ErrorIs(t, rec.Err(), errBoom)
		assert.False(t, outer.HasObservers())
	})

	t.Run("nil inner is an error", func(t *testing.T) {
		rec := newRecorder()
		FlatMap(Just(1), func(any) Observable { return nil }).Subscribe(rec)

		var se *StreamError
		assert.ErrorAs(t, rec.Err(), &se)
	})
}

func TestStartWith(t *testing.T) {
	rec := newRecorder()
	StartWith(Just(3), 1, 2).Subscribe(rec)
	assert.Equal(t, ints(1, 2, 3), rec.Values())
}

func TestWrapCallbackError(t *testing.T) {
	plain := wrapCallbackError("op", errBoom)
	var se *StreamError
	require.ErrorAs(t, plain, &se)
	assert.Equal(t, KindCallback, se.Kind)

	structured := &StreamError{Op: "inner", Kind: KindType, Err: errBoom}
	assert.Same(t, structured, wrapCallbackError("op", structured))

	pe := newPanicError("op", "x")
	assert.True(t, errors.Is(wrapCallbackError("op", pe), pe))
}
