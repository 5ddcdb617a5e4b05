package repository

import (
	"context"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/domain/repository"
	pkgkafka "DialMeter/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Events are keyed by source
// so one dial's history stays ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.DialEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.Source), e)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher is used when event publishing is disabled.
type NoopPublisher struct{}

func NewNoopPublisher() repository.Publisher { return NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, *models.DialEvent) error { return nil }
func (NoopPublisher) Close() error { return nil }
