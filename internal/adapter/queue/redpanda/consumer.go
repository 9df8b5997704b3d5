package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// EventHandler processes one notification event. A returned error leaves the
// record uncommitted so the group redelivers it.
type EventHandler func(ctx context.Context, ev domain.Event) error

// Consumer reads the notification topic as part of a consumer group and
// dispatches events to a handler.
type Consumer struct {
	client  *kgo.Client
	handler EventHandler
	topic   string
}

// NewConsumer joins the group and subscribes to the notification topic.
func NewConsumer(brokers []string, groupID string, handler EventHandler) (*Consumer, error) {
	return newConsumer(brokers, groupID, TopicNotifications, handler)
}

func newConsumer(brokers []string, groupID, topic string, handler EventHandler) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if handler == nil {
		return nil, fmt.Errorf("missing event handler")
	}
	kotelService := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
	)))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}
	return &Consumer{client: client, handler: handler, topic: topic}, nil
}

// Run polls until the context is cancelled. Successfully handled records are
// committed; failed ones are skipped in this poll and redelivered later.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("fetch error",
				slog.String("topic", topic),
				slog.Int("partition", int(partition)),
				slog.Any("error", err))
		})

		var done []*kgo.Record
		fetches.EachRecord(func(record *kgo.Record) {
			ev, err := decodeEvent(record)
			if err != nil {
				// A malformed record never becomes valid; commit it away.
				slog.Error("dropping malformed event record",
					slog.String("topic", record.Topic), slog.Any("error", err))
				done = append(done, record)
				return
			}
			if err := c.handler(ctx, ev); err != nil {
				slog.Error("event handling failed, will redeliver",
					slog.String("kind", string(ev.Kind)),
					slog.String("job_id", ev.JobID),
					slog.Any("error", err))
				return
			}
			done = append(done, record)
		})
		if len(done) > 0 {
			if err := c.client.CommitRecords(ctx, done...); err != nil {
				slog.Error("commit failed", slog.Any("error", err))
			}
		}
	}
}

func decodeEvent(record *kgo.Record) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(record.Value, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" || ev.JobID == "" {
		return domain.Event{}, fmt.Errorf("decode event: kind and job id required")
	}
	return ev, nil
}

// Close leaves the group and shuts down the client.
func (c *Consumer) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
