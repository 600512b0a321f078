// Package eventbus is the typed, in-process publish/subscribe channel for
// rating change notifications.
//
// One Bus is constructed per application instance and passed to every
// component that publishes or listens. Delivery is synchronous, in
// subscription order, to the handlers subscribed when Publish is called.
// Nothing is queued or replayed.
package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/gamerec/internal/domain/model"
	"github.com/okian/gamerec/pkg/logger"
	"github.com/okian/gamerec/pkg/metrics"
)

// Handler reacts to a notification. Handlers run on the publisher's
// goroutine and must not block; slow work belongs on another goroutine.
type Handler func(ctx context.Context, e model.RatingChanged)

// Publisher emits notifications.
type Publisher interface {
	Publish(ctx context.Context, e model.RatingChanged)
}

// Subscriber registers handlers.
type Subscriber interface {
	Subscribe(h Handler) *Subscription
}

// Bus implements Publisher and Subscriber.
type Bus struct {
	mu     sync.Mutex
	subs   []*Subscription
	nextID uint64

	logger logger.Logger
}

// Subscription is the token returned by Subscribe.
type Subscription struct {
	bus     *Bus
	id      uint64
	handler Handler
	active  atomic.Bool
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{logger: logger.Get().Named("eventbus")}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for every notification published from now on.
func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{bus: b, id: b.nextID, handler: h}
	s.active.Store(true)
	b.subs = append(b.subs, s)
	metrics.UpdateSubscribers(len(b.subs))
	return s
}

// Publish delivers e to the current subscribers in subscription order.
// Subscriptions added while delivering do not see e; subscriptions
// cancelled while delivering are skipped if not reached yet.
func (b *Bus) Publish(ctx context.Context, e model.RatingChanged) {
	b.mu.Lock()
	snapshot := make([]*Subscription, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	metrics.RecordNotificationPublished()
	b.logger.Debug(ctx, "publishing notification",
		logger.String("event", model.RatingChangedEvent),
		logger.String("id", e.ID),
		logger.Subject(e.SubjectID),
		logger.Int("value", int(e.Value)),
		logger.Int("subscribers", len(snapshot)),
	)

	for _, s := range snapshot {
		if !s.active.Load() {
			continue
		}
		b.deliver(ctx, s, e)
	}
}

func (b *Bus) deliver(ctx context.Context, s *Subscription, e model.RatingChanged) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordHandlerPanic()
			b.logger.Error(ctx, "notification handler panicked",
				logger.Any("subscription", s.id),
				logger.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	s.handler(ctx, e)
	metrics.RecordNotificationDelivered()
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Unsubscribe stops delivery to the subscription. It is idempotent and
// safe to call from inside a handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, other := range b.subs {
		if other == s {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			break
		}
	}
	metrics.UpdateSubscribers(len(b.subs))
}

// Active reports whether the subscription still receives notifications.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}
