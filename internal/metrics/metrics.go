// Package metrics declares the Prometheus collectors exported by parceldesk.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Hub groups the event hub collectors.
type Hub struct {
	Published   prometheus.Counter
	Delivered   prometheus.Counter
	Dropped     prometheus.Counter
	Subscribers prometheus.Gauge
}

// NewHub returns unregistered event hub collectors.
func NewHub() *Hub {
	return &Hub{
		Published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parceldesk_hub_events_published_total",
			Help: "Total number of package events published to the hub",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parceldesk_hub_events_delivered_total",
			Help: "Total number of package events enqueued to subscribers",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parceldesk_hub_subscribers_dropped_total",
			Help: "Total number of subscribers dropped for falling behind",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parceldesk_hub_subscribers_active",
			Help: "Number of live hub subscriptions",
		}),
	}
}

// Collectors lists every collector of m.
func (m *Hub) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Published, m.Delivered, m.Dropped, m.Subscribers}
}

// NewHTTPRequestsTotal returns a counter of served HTTP requests by method, route and status.
func NewHTTPRequestsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parceldesk_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})
}

// NewPackageTransitionsTotal returns a counter of accepted mutations by action.
func NewPackageTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parceldesk_package_mutations_total",
		Help: "Total number of accepted package mutations by action",
	}, []string{"action"})
}

// NewRelayPublishedTotal returns a counter of events forwarded to the message broker by outcome.
func NewRelayPublishedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parceldesk_relay_messages_total",
		Help: "Total number of package events forwarded to the message broker",
	}, []string{"outcome"})
}

// Register registers every collector on reg. Collectors already registered are
// tolerated so tests can build several servers against the default registry.
func Register(reg prometheus.Registerer, collectors ...prometheus.Collector) error {
	var errList []error
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
