package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher implements Publisher on a Kafka cluster.
//
// One KafkaPublisher is constructed in the composition root and injected
// everywhere an event is emitted — the shared-connection requirement is met
// by sharing the instance, not by a package-level singleton. The underlying
// kafka.Writer is created lazily on first use; sync.Once makes that
// creation race-free when the first two requests arrive together.
type KafkaPublisher struct {
	brokers []string
	logger  *slog.Logger

	once   sync.Once
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers. No network
// activity happens until Connect or the first Publish.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		logger:  logger,
	}
}

// Connect establishes the shared writer. Idempotent: every call after the
// first is a no-op, so callers don't need to coordinate who connects.
func (p *KafkaPublisher) Connect(_ context.Context) error {
	p.once.Do(func() {
		// Topic is set per message, so one writer serves every topic the
		// process publishes to.
		p.writer = &kafka.Writer{
			Addr:                   kafka.TCP(p.brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		}
		p.logger.Info("kafka producer connected",
			slog.Any("brokers", p.brokers),
		)
	})
	return nil
}

// Publish sends payload to topic. The writer retries transient broker
// errors internally, which is where the at-least-once duplicates come from.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := p.Connect(ctx); err != nil {
		return err
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: writing to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		slog.String("topic", topic),
		slog.Int("bytes", len(payload)),
	)
	return nil
}

// Close flushes pending messages and closes the writer. Safe to call even
// if no Publish ever ran.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Ensure KafkaPublisher implements Publisher.
var _ Publisher = (*KafkaPublisher)(nil)
