package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
)

// Envelope is the wire shape of every published event.
type Envelope struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Source  string      `json:"source"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload,omitempty"`
}

// KafkaProducer publishes auth events to a single topic via a sarama
// SyncProducer.
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
	source   string
	logger   *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    topic,
		source:   "/task-management-api/auth",
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) Publish(_ context.Context, eventType string, payload interface{}) error {
	envelope := Envelope{
		ID:      uuid.NewString(),
		Type:    eventType,
		Source:  p.source,
		Time:    time.Now().UTC(),
		Payload: payload,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(eventType),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}

	p.logger.Debug("event published",
		zap.String("type", eventType),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}

var _ interfaces.EventPublisher = (*KafkaProducer)(nil)

// NoopPublisher drops every event; used when kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }

var _ interfaces.EventPublisher = (*NoopPublisher)(nil)
