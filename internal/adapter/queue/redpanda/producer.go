// Package redpanda provides the Redpanda/Kafka transport for marketplace
// notification events. Delivery is at-least-once: the worker consuming the
// topic tolerates duplicate events.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// TopicNotifications carries application.submitted, developer.hired and
// job.completed events.
const TopicNotifications = "marketplace-notifications"

// Producer publishes notification events and implements domain.Notifier.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer dials the brokers, ensures the topic exists and returns a
// ready producer.
func NewProducer(brokers []string) (*Producer, error) {
	return newProducer(brokers, TopicNotifications)
}

func newProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	kotelService := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
	)))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(10),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := createTopicIfNotExists(ctx, client, topic, 1, 1); err != nil {
		slog.Warn("topic creation failed, it may already exist",
			slog.String("topic", topic), slog.Any("error", err))
	}
	return &Producer{client: client, topic: topic}, nil
}

// Publish produces one event record, retrying transient broker errors with
// exponential backoff. The job id keys the record so events for one job stay
// ordered within the partition.
func (p *Producer) Publish(ctx domain.Context, ev domain.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=notify.publish: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.JobID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	op := func() error {
		return p.client.ProduceSync(ctx, record).FirstErr()
	}
	if err := backoff.Retry(op, bo); err != nil {
		return fmt.Errorf("op=notify.publish: %w", err)
	}
	return nil
}

// Ping checks broker connectivity for readiness probes.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close shuts down the underlying client.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
