// Package kafka relays package events from the hub to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"

	"parceldesk/internal/adapters/out/eventhub"
	"parceldesk/internal/core/domain/model/parcel"
	"parceldesk/internal/core/ports"
	"parceldesk/internal/pkg/errs"
)

// PackageChangedMessage is the JSON value written for every package event.
type PackageChangedMessage struct {
	TrackingCode    string    `json:"trackingCode"`
	Kind            string    `json:"kind"`
	Action          string    `json:"action"`
	Status          string    `json:"status"`
	Revision        uint64    `json:"revision"`
	ClaimedBy       string    `json:"claimedBy,omitempty"`
	Location        string    `json:"location,omitempty"`
	ProofOfDelivery string    `json:"proofOfDelivery,omitempty"`
	OccurredAt      time.Time `json:"occurredAt"`
}

func newPackageChangedMessage(e parcel.PackageEvent) PackageChangedMessage {
	p := e.Package
	return PackageChangedMessage{
		TrackingCode:    p.Code().String(),
		Kind:            e.Kind.String(),
		Action:          string(e.Action),
		Status:          p.Status().String(),
		Revision:        p.Revision(),
		ClaimedBy:       p.ClaimedBy(),
		Location:        p.Location(),
		ProofOfDelivery: p.ProofOfDelivery(),
		OccurredAt:      e.OccurredAt.UTC(),
	}
}

// Relay publishes package events to topic, keyed by tracking code.
type Relay struct {
	producer sarama.SyncProducer
	topic    string
	sent     *prometheus.CounterVec
	logger   *slog.Logger
}

// NewProducerConfig returns the sarama settings the relay expects from its producer.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Producer.Retry.Max = 5
	return cfg
}

// Dial connects a SyncProducer to brokers, a comma separated host list.
func Dial(brokers, topic string, sent *prometheus.CounterVec, logger *slog.Logger) (*Relay, error) {
	hosts := splitHosts(brokers)
	if len(hosts) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	producer, err := sarama.NewSyncProducer(hosts, NewProducerConfig())
	if err != nil {
		return nil, err
	}
	return NewRelay(producer, topic, sent, logger)
}

// NewRelay wraps an existing producer. sent may be nil.
func NewRelay(producer sarama.SyncProducer, topic string, sent *prometheus.CounterVec, logger *slog.Logger) (*Relay, error) {
	if producer == nil {
		return nil, errs.NewValueIsRequiredError("producer")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Relay{
		producer: producer,
		topic:    topic,
		sent:     sent,
		logger:   logger.With("component", "KafkaRelay", "topic", topic),
	}, nil
}

// Send publishes a single event and waits for the broker acknowledgement.
func (r *Relay) Send(e parcel.PackageEvent) error {
	if err := e.Package.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(newPackageChangedMessage(e))
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: r.topic,
		Key:   sarama.StringEncoder(e.Code()),
		Value: sarama.ByteEncoder(value),
	}
	partition, offset, err := r.producer.SendMessage(msg)
	if err != nil {
		r.count("error")
		return err
	}

	r.count("ok")
	r.logger.Debug("package event relayed",
		"code", e.Code(),
		"revision", e.Package.Revision(),
		"partition", partition,
		"offset", offset)
	return nil
}

// Run sends every event published on bus until ctx is done or the hub closes.
// Send failures are logged and the event is skipped.
func (r *Relay) Run(ctx context.Context, bus ports.EventSubscriber) error {
	return eventhub.Follow(ctx, bus, ports.AllPackages(), r.logger, func(_ context.Context, e parcel.PackageEvent) {
		if err := r.Send(e); err != nil {
			r.logger.Error("failed to relay package event",
				"code", e.Code(),
				"revision", e.Package.Revision(),
				"error", err)
		}
	})
}

// Close closes the underlying producer.
func (r *Relay) Close() error {
	return r.producer.Close()
}

func (r *Relay) count(outcome string) {
	if r.sent != nil {
		r.sent.WithLabelValues(outcome).Inc()
	}
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
