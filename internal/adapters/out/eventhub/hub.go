// Package eventhub broadcasts package events to live subscribers.
//
// Every subscriber owns a bounded buffer. Publish never blocks: a subscriber whose
// buffer is full is dropped with ErrSlowSubscriber and has to resubscribe. Publish
// calls are serialized, so every subscriber observes events in Publish order.
package eventhub

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/metrics"
)

// DefaultBufferSize is the per-subscriber buffer used unless WithBufferSize is given.
const DefaultBufferSize = 64

// Reasons a subscription ends, as reported by Subscription.Err.
var (
	ErrUnsubscribed   = errors.New("subscription closed by subscriber")
	ErrSlowSubscriber = errors.New("subscriber dropped: event buffer overflow")
	ErrHubClosed      = errors.New("event hub closed")
)

var _ ports.EventBus = (*Hub)(nil)

// Hub is an in-process publish/subscribe broadcaster of parcel.PackageEvent.
type Hub struct {
	// mu serializes Publish and Close.
	mu     sync.Mutex
	closed bool

	subscribers *xsync.Map[uint64, *Subscription]
	nextID      atomic.Uint64

	bufferSize int
	metrics    *metrics.Hub
	logger     *slog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber buffer. Values below 1 are ignored.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithMetrics sets the collectors the hub reports to.
func WithMetrics(m *metrics.Hub) Option {
	return func(h *Hub) { h.metrics = m }
}

// WithLogger sets the hub logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// New creates a running Hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		subscribers: xsync.NewMap[uint64, *Subscription](),
		bufferSize:  DefaultBufferSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.NewHub()
	}
	h.logger = h.logger.With("component", "EventHub")
	return h
}

// Subscribe registers a subscription for events matching filter.
// The subscription ends when it is closed, when ctx is done, when it overflows, or when
// the hub closes. Subscribing to a closed hub returns an already-ended subscription.
func (h *Hub) Subscribe(ctx context.Context, filter ports.EventFilter) ports.Subscription {
	sub := &Subscription{
		id:     h.nextID.Add(1),
		filter: filter,
		events: make(chan parcel.PackageEvent, h.bufferSize),
		done:   make(chan struct{}),
		hub:    h,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.end(ErrHubClosed)
		return sub
	}
	h.subscribers.Store(sub.id, sub)
	h.mu.Unlock()
	h.metrics.Subscribers.Inc()

	stop := context.AfterFunc(ctx, func() {
		h.remove(sub, context.Cause(ctx))
	})
	sub.setStop(stop)

	return sub
}

// Publish delivers event to every matching subscriber without blocking.
func (h *Hub) Publish(event parcel.PackageEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.metrics.Published.Inc()
	h.subscribers.Range(func(_ uint64, sub *Subscription) bool {
		if !sub.filter.Matches(event) {
			return true
		}
		if sub.trySend(event) {
			h.metrics.Delivered.Inc()
			return true
		}
		if h.remove(sub, ErrSlowSubscriber) {
			h.metrics.Dropped.Inc()
			h.logger.Warn("dropping slow subscriber",
				"subscriber", sub.id,
				"code", event.Code(),
				"buffer", cap(sub.events))
		}
		return true
	})
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	return h.subscribers.Size()
}

// Close ends every subscription with ErrHubClosed. Publish becomes a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true

	h.subscribers.Range(func(_ uint64, sub *Subscription) bool {
		h.remove(sub, ErrHubClosed)
		return true
	})
}

// remove unregisters sub and ends it with cause. It reports whether this call did the removal.
func (h *Hub) remove(sub *Subscription, cause error) bool {
	if _, ok := h.subscribers.LoadAndDelete(sub.id); !ok {
		return false
	}
	h.metrics.Subscribers.Dec()
	sub.end(cause)
	return true
}
