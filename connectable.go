package rxcore

import (
	"sync"

	"github.com/fogfish/opts"
)

// ============================================================================
// Connectable - multicast a cold source through a subject
// ============================================================================

// Connectable shares one subscription to a source among many subscribers.
// Subscribers attach to an internal subject; the source is subscribed only
// when Connect is called. Once the source terminates the Connectable stays
// terminated, like its subject.
type Connectable struct {
	source  Observable
	subject *Subject

	mu         sync.Mutex
	connection Disposable
	refs       int
}

// Publish creates a Connectable that forwards only values emitted after a
// subscriber attached.
func Publish(source Observable) *Connectable {
	return &Connectable{source: source, subject: NewSubject()}
}

// Replay creates a Connectable that replays earlier values to late
// subscribers. Options are those of NewReplaySubject.
func Replay(source Observable, options ...opts.Option[replayConfig]) *Connectable {
	return &Connectable{source: source, subject: NewReplaySubject(options...).Subject}
}

// Subscribe attaches observer to the shared subject.
func (c *Connectable) Subscribe(observer Observer) Disposable {
	return c.subject.Subscribe(observer)
}

// Connect subscribes the subject to the source, once. Later calls return
// the same connection until it is disposed.
func (c *Connectable) Connect() Disposable {
	c.mu.Lock()
	if c.connection != nil && !c.connection.IsDisposed() {
		conn := c.connection
		c.mu.Unlock()
		return conn
	}
	conn := NewSerialDisposable()
	c.connection = conn
	c.mu.Unlock()

	conn.Set(c.source.Subscribe(c.subject))
	return conn
}

// IsConnected reports whether a live connection exists.
func (c *Connectable) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connection != nil && !c.connection.IsDisposed()
}

// RefCount returns an Observable that connects when its first subscriber
// arrives and disconnects when its last subscriber leaves.
func (c *Connectable) RefCount() Observable {
	return newObservable("rxcore.RefCount", func(p *Producer) Disposable {
		inner := c.subject.Subscribe(p)

		c.mu.Lock()
		c.refs++
		first := c.refs == 1
		c.mu.Unlock()

		if first {
			c.Connect()
		}

		return NewBaseDisposable(func() {
			inner.Dispose()

			c.mu.Lock()
			c.refs--
			var conn Disposable
			if c.refs == 0 {
				conn = c.connection
				c.connection = nil
			}
			c.mu.Unlock()

			if conn != nil {
				conn.Dispose()
			}
		})
	})
}

// Share is Publish(source).RefCount().
func Share(source Observable) Observable {
	return Publish(source).RefCount()
}
