package ports

import (
	"context"

	"parceldesk/internal/core/domain/model/kernel"
	"parceldesk/internal/core/domain/model/parcel"
)

// EventFilter selects the events a subscription receives.
// The zero value matches every package.
type EventFilter struct {
	code kernel.TrackingCode
}

// AllPackages matches events for every package.
func AllPackages() EventFilter {
	return EventFilter{}
}

// OnlyPackage matches events for a single tracking code.
func OnlyPackage(code kernel.TrackingCode) EventFilter {
	return EventFilter{code: code}
}

// Code returns the filtered code; IsZero reports the all-packages filter.
func (f EventFilter) Code() kernel.TrackingCode {
	return f.code
}

// Matches reports whether e passes the filter.
func (f EventFilter) Matches(e parcel.PackageEvent) bool {
	return f.code.IsZero() || f.code == e.Package.Code()
}

// EventPublisher broadcasts accepted package events. Publish never blocks and never fails.
type EventPublisher interface {
	Publish(event parcel.PackageEvent)
}

// Subscription is one live registration on the event stream.
type Subscription interface {
	// Events is closed when the subscription ends.
	Events() <-chan parcel.PackageEvent
	// Done is closed when the subscription ends.
	Done() <-chan struct{}
	// Err explains why the subscription ended, or nil while it is live.
	Err() error
	// Close ends the subscription. It is safe to call more than once.
	Close()
}

// EventSubscriber registers live subscriptions. A subscription ends when it is closed,
// when ctx is cancelled, when it falls behind, or when the subscriber shuts down.
// Subscriptions never replay events published before they were registered.
type EventSubscriber interface {
	Subscribe(ctx context.Context, filter EventFilter) Subscription
}

// EventBus is both sides of the event stream.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
