package rx

import "github.com/xinjiayu/rxcore"

// Subscription is the handle returned by Subscribe. It satisfies
// rxcore.Disposable, so it can be stored in a rxcore.SubscriptionSet.
type Subscription struct {
	d rxcore.Disposable
}

// Unsubscribe ends the subscription. It is idempotent.
func (s Subscription) Unsubscribe() {
	s.Dispose()
}

// Dispose ends the subscription. It is idempotent.
func (s Subscription) Dispose() {
	if s.d != nil {
		s.d.Dispose()
	}
}

// IsUnsubscribed reports whether the subscription has ended, either by
// Unsubscribe or because the stream terminated.
func (s Subscription) IsUnsubscribed() bool {
	return s.d == nil || s.d.IsDisposed()
}

// IsDisposed is IsUnsubscribed.
func (s Subscription) IsDisposed() bool {
	return s.IsUnsubscribed()
}
