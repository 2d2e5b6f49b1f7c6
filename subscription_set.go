package rxcore

import (
	"sync"

	"github.com/alphadose/haxmap"

	"github.com/xinjiayu/rxcore/pkg/uuidx"
)

// ============================================================================
// SubscriptionSet
// ============================================================================

// SubscriptionSet owns a group of subscriptions, some of them under a tag.
// Putting a subscription under a tag that is already taken disposes the
// previous one, which makes "keep only the latest request" patterns a
// one-liner. Once the set is disposed every subscription handed to it is
// disposed on arrival.
type SubscriptionSet struct {
	mu       sync.Mutex
	disposed bool
	entries  *haxmap.Map[string, Disposable]
}

// NewSubscriptionSet creates an empty set.
func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{entries: haxmap.New[string, Disposable]()}
}

// Add stores d under a generated tag, which is returned so the caller may
// Remove it later.
func (s *SubscriptionSet) Add(d Disposable) string {
	tag := uuidx.NewString()
	s.Put(tag, d)
	return tag
}

// Put stores d under tag, disposing any subscription already stored there.
func (s *SubscriptionSet) Put(tag string, d Disposable) {
	if d == nil {
		return
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		d.Dispose()
		return
	}
	previous, ok := s.entries.Get(tag)
	s.entries.Set(tag, d)
	s.mu.Unlock()

	if ok && previous != d {
		previous.Dispose()
	}
}

// Remove disposes and drops the subscription stored under tag. It reports
// whether there was one.
func (s *SubscriptionSet) Remove(tag string) bool {
	s.mu.Lock()
	d, ok := s.entries.Get(tag)
	if ok {
		s.entries.Del(tag)
	}
	s.mu.Unlock()

	if ok {
		d.Dispose()
	}
	return ok
}

// Has reports whether a subscription is stored under tag.
func (s *SubscriptionSet) Has(tag string) bool {
	_, ok := s.entries.Get(tag)
	return ok
}

// Len returns the number of stored subscriptions.
func (s *SubscriptionSet) Len() int {
	return int(s.entries.Len())
}

// Clear disposes every stored subscription. The set stays usable.
func (s *SubscriptionSet) Clear() {
	s.mu.Lock()
	drained := s.drainLocked()
	s.mu.Unlock()

	for _, d := range drained {
		d.Dispose()
	}
}

// Dispose clears the set and closes it.
func (s *SubscriptionSet) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	drained := s.drainLocked()
	s.mu.Unlock()

	for _, d := range drained {
		d.Dispose()
	}
}

// IsDisposed reports whether Dispose has been called.
func (s *SubscriptionSet) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *SubscriptionSet) drainLocked() []Disposable {
	tags := make([]string, 0, s.entries.Len())
	drained := make([]Disposable, 0, s.entries.Len())
	s.entries.ForEach(func(tag string, d Disposable) bool {
		tags = append(tags, tag)
		drained = append(drained, d)
		return true
	})
	s.entries.Del(tags...)
	return drained
}

// ============================================================================
// SubscriptionHolder
// ============================================================================

// SubscriptionHolder owns at most one subscription. Setting a new one
// disposes the previous.
type SubscriptionHolder struct {
	mu       sync.Mutex
	disposed bool
	current  Disposable
}

// NewSubscriptionHolder creates an empty holder.
func NewSubscriptionHolder() *SubscriptionHolder {
	return &SubscriptionHolder{}
}

// Set replaces the held subscription.
func (h *SubscriptionHolder) Set(d Disposable) {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return
	}
	previous := h.current
	h.current = d
	h.mu.Unlock()

	if previous != nil && previous != d {
		previous.Dispose()
	}
}

// Get returns the held subscription, or nil.
func (h *SubscriptionHolder) Get() Disposable {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Clear disposes the held subscription. The holder stays usable.
func (h *SubscriptionHolder) Clear() {
	h.mu.Lock()
	current := h.current
	h.current = nil
	h.mu.Unlock()

	if current != nil {
		current.Dispose()
	}
}

// Dispose clears the holder and closes it.
func (h *SubscriptionHolder) Dispose() {
	h.mu.Lock()
	h.disposed = true
	h.mu.Unlock()
	h.Clear()
}

// IsDisposed reports whether Dispose has been called.
func (h *SubscriptionHolder) IsDisposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}
