// Package kafka publishes audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"foicore/internal/audit"
	"foicore/internal/platform/config"
)

// Publisher ships audit events to Kafka. Produce is asynchronous and best
// effort; a failed delivery is logged, never surfaced to the caller.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects a Kafka producer for the configured brokers and topic.
func New(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, topic: cfg.Topic, logger: logger}, nil
}

func (p *Publisher) Emit(ctx context.Context, e audit.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "audit event not serializable",
			"kind", string(e.Kind),
			"error", err.Error(),
		)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.SubjectID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit event delivery failed",
				"kind", string(e.Kind),
				"error", err.Error(),
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return err
	}
	p.client.Close()
	return nil
}
