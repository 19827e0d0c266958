package decisionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher mirrors appended admin actions onto a Kafka topic so
// downstream consumers (notification delivery, analytics) get the same
// append-only stream the reconciler reads. Keyed by registration number to
// keep per-registration ordering.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and makes sure the topic exists.
// Returns nil if no brokers are configured; callers treat a nil publisher as
// a no-op sink.
func NewKafkaPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopics(ctx, 1, 1, nil, topic); err != nil {
		// Topic may already exist; creation is best-effort bootstrap.
		logger.WarnContext(ctx, "decision topic bootstrap", "topic", topic, "error", err)
	}

	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces one decision event. Synchronous so a broker outage
// surfaces to the caller instead of silently dropping the event; the
// workflow service logs and continues, as the store append is the
// authoritative write.
func (p *KafkaPublisher) Publish(ctx context.Context, action AdminAction) error {
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(action.RegistrationNumber.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce decision event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *KafkaPublisher) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}
