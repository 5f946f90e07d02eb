package eventhub

import (
	"sync"

	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
)

// Subscription is a live registration on a Hub.
type Subscription struct {
	id     uint64
	filter ports.EventFilter
	hub    *Hub

	events chan parcel.PackageEvent
	done   chan struct{}

	mu    sync.Mutex
	ended bool
	err   error
	stop  func() bool
}

// Events returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan parcel.PackageEvent {
	return s.events
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns nil while live, otherwise ErrUnsubscribed, ErrSlowSubscriber,
// ErrHubClosed or the cause of the context cancellation.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Filter returns the filter the subscription was registered with.
func (s *Subscription) Filter() ports.EventFilter {
	return s.filter
}

// Close ends the subscription with ErrUnsubscribed. Closing twice is a no-op.
func (s *Subscription) Close() {
	s.hub.remove(s, ErrUnsubscribed)
}

func (s *Subscription) setStop(stop func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		stop()
		return
	}
	s.stop = stop
}

// trySend enqueues e without blocking. It returns false only when the buffer is full.
func (s *Subscription) trySend(e parcel.PackageEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return true
	}

	select {
	case s.events <- e:
		return true
	default:
		return false
	}
}

func (s *Subscription) end(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.err = cause
	if s.stop != nil {
		s.stop()
	}
	close(s.events)
	close(s.done)
}
