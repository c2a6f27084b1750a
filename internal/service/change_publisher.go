package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/pkg/kafka"
	"github.com/prohmpiriya/session-planner/pkg/retry"
)

// ChangePublisher defines the interface for announcing draft changes
type ChangePublisher interface {
	// Publish publishes a session configuration event
	Publish(ctx context.Context, event *domain.SessionConfigEvent) error

	// Close closes the publisher
	Close() error
}

// recordProducer is the part of kafka.Producer the publisher needs
type recordProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	ProduceJSON(ctx context.Context, topic, key string, data any, headers map[string]string) error
	Ping(ctx context.Context) error
	Close()
}

// KafkaChangePublisher implements ChangePublisher using Kafka. Records that
// still fail after the retries are moved to the topic's dead letter topic.
type KafkaChangePublisher struct {
	producer    recordProducer
	topic       string
	serviceName string
	retrier     *retry.Retrier
	dlq         retry.DLQPublisher
}

// ChangePublisherConfig contains configuration for the change publisher
type ChangePublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
	// PublishRetries is the number of retries after the first produce attempt
	PublishRetries int
}

// NewKafkaChangePublisher creates a new Kafka change publisher
func NewKafkaChangePublisher(ctx context.Context, cfg *ChangePublisherConfig) (*KafkaChangePublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("change publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "session-planner-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		RecordRetries: 3,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newKafkaChangePublisher(producer, cfg.Topic, cfg.ServiceName, &retry.Config{
		MaxRetries:      cfg.PublishRetries,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}), nil
}

func newKafkaChangePublisher(producer recordProducer, topic, serviceName string, retryCfg *retry.Config) *KafkaChangePublisher {
	if topic == "" {
		topic = string(domain.SessionConfigEventChanged)
	}
	if serviceName == "" {
		serviceName = "session-planner"
	}
	return &KafkaChangePublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
		retrier:     retry.New(retryCfg),
		dlq:         retry.NewKafkaDLQPublisher(producer, serviceName),
	}
}

// Publish produces event to the change topic
func (p *KafkaChangePublisher) Publish(ctx context.Context, event *domain.SessionConfigEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.EventType),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: event.OccurredAt,
	}

	dead := &retry.DLQMessage{
		ID:            event.EventID,
		OriginalTopic: p.topic,
		OriginalKey:   event.Key(),
		Payload:       value,
		Headers:       headers,
	}

	err = retry.ProcessWithDLQ(ctx, p.retrier, p.dlq, dead, func(ctx context.Context) error {
		return p.producer.Produce(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

// Ping checks that the brokers are reachable
func (p *KafkaChangePublisher) Ping(ctx context.Context) error {
	return p.producer.Ping(ctx)
}

// Close closes the change publisher
func (p *KafkaChangePublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpChangePublisher is a no-op implementation of ChangePublisher
type NoOpChangePublisher struct{}

// NewNoOpChangePublisher creates a new no-op change publisher
func NewNoOpChangePublisher() *NoOpChangePublisher {
	return &NoOpChangePublisher{}
}

// Publish is a no-op
func (p *NoOpChangePublisher) Publish(ctx context.Context, event *domain.SessionConfigEvent) error {
	return nil
}

// Close is a no-op
func (p *NoOpChangePublisher) Close() error {
	return nil
}
