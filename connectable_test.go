package rxcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts subscriptions and live subscribers.
func countingSource(source Observable, subscriptions, live *int) Observable {
	return Defer(func() Observable {
		*subscriptions++
		*live++
		return DoOnDispose(source, func() { *live-- })
	})
}

func TestPublish(t *testing.T) {
	var subscriptions, live int
	c := Publish(countingSource(Just(1, 2), &subscriptions, &live))

	a, b := newRecorder(), newRecorder()
	c.Subscribe(a)
	c.Subscribe(b)
	assert.Zero(t, subscriptions)
	assert.False(t, c.IsConnected())

	c.Connect()
	assert.Equal(t, 1, subscriptions)
	assert.Equal(t, ints(1, 2), a.Values())
	assert.Equal(t, ints(1, 2), b.Values())
	assert.True(t, a.Completed())
}

func TestConnectOnce(t *testing.T) {
	var subscriptions, live int
	source := NewSubject()
	c := Publish(countingSource(source, &subscriptions, &live))

	first := c.Connect()
	second := c.Connect()
	assert.Same(t, first, second)
	assert.Equal(t, 1, subscriptions)
	assert.True(t, c.IsConnected())

	first.Dispose()
	assert.False(t, c.IsConnected())
	assert.Zero(t, live)
}

func TestReplayConnectable(t *testing.T) {
	c := Replay(Just(1, 2, 3), WithBufferSize(2))
	c.Connect()

	rec := newRecorder()
	c.Subscribe(rec)
	assert.Equal(t, ints(2, 3), rec.Values())
	assert.True(t, rec.Completed())
}

func TestRefCount(t *testing.T) {
	var subscriptions, live int
	source := NewSubject()
	shared := Share(countingSource(source, &subscriptions, &live))

	a, b := newRecorder(), newRecorder()
	da := shared.Subscribe(a)
	db := shared.Subscribe(b)
	require.Equal(t, 1, subscriptions)
	require.Equal(t, 1, live)

	source.OnNext("x")
	assert.Equal(t, []any{"x"}, a.Values())
	assert.Equal(t, []any{"x"}, b.Values())

	da.Dispose()
	assert.Equal(t, 1, live)
	db.Dispose()
	assert.Zero(t, live)
	assert.False(t, source.HasObservers())

	c := newRecorder()
	shared.Subscribe(c)
	assert.Equal(t, 2, subscriptions)
}
