package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DLQTopicSuffix is appended to a topic to name its dead letter topic
const DLQTopicSuffix = ".dlq"

// DLQMessage is a record that could not be delivered
type DLQMessage struct {
	ID             string            `json:"id"`
	OriginalTopic  string            `json:"original_topic"`
	OriginalKey    string            `json:"original_key"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers,omitempty"`
	Error          string            `json:"error"`
	Attempts       int               `json:"attempts"`
	FirstAttemptAt time.Time         `json:"first_attempt_at"`
	MovedToDLQAt   time.Time         `json:"moved_to_dlq_at"`
	Source         string            `json:"source"`
}

// DLQPublisher stores undeliverable records
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg *DLQMessage) error
}

// JSONProducer produces a JSON encoded record
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, data any, headers map[string]string) error
}

// KafkaDLQPublisher writes dead letters to "<topic>.dlq"
type KafkaDLQPublisher struct {
	producer JSONProducer
	source   string
}

// NewKafkaDLQPublisher creates a KafkaDLQPublisher tagging letters with source
func NewKafkaDLQPublisher(producer JSONProducer, source string) *KafkaDLQPublisher {
	return &KafkaDLQPublisher{producer: producer, source: source}
}

// Topic returns the dead letter topic of original
func (p *KafkaDLQPublisher) Topic(original string) string {
	return original + DLQTopicSuffix
}

// PublishToDLQ produces msg to the dead letter topic of its original topic
func (p *KafkaDLQPublisher) PublishToDLQ(ctx context.Context, msg *DLQMessage) error {
	if msg == nil {
		return errors.New("DLQ message cannot be nil")
	}
	msg.MovedToDLQAt = time.Now()
	msg.Source = p.source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.OriginalTopic,
		"error":          msg.Error,
		"attempts":       strconv.Itoa(msg.Attempts),
		"source":         msg.Source,
	}
	for k, v := range msg.Headers {
		if _, taken := headers[k]; !taken {
			headers["original_"+k] = v
		}
	}
	return p.producer.ProduceJSON(ctx, p.Topic(msg.OriginalTopic), msg.OriginalKey, msg, headers)
}

// NoOpDLQPublisher drops dead letters
type NoOpDLQPublisher struct{}

func (NoOpDLQPublisher) PublishToDLQ(ctx context.Context, msg *DLQMessage) error { return nil }

// ProcessWithDLQ runs op with retries. When every attempt fails, msg is
// completed with the failure and handed to dlq. The returned error is the
// delivery failure, joined with the DLQ failure if that also failed.
func ProcessWithDLQ(ctx context.Context, r *Retrier, dlq DLQPublisher, msg *DLQMessage, op Operation) error {
	first := time.Now()
	res := r.Do(ctx, op)
	if res.Err == nil {
		return nil
	}

	cause := res.LastError
	if cause == nil {
		cause = res.Err
	}
	msg.Error = cause.Error()
	msg.Attempts = res.Attempts
	msg.FirstAttemptAt = first

	deliveryErr := fmt.Errorf("delivery failed after %d attempts: %w", res.Attempts, cause)
	if err := dlq.PublishToDLQ(context.WithoutCancel(ctx), msg); err != nil {
		return errors.Join(deliveryErr, fmt.Errorf("dead letter: %w", err))
	}
	return deliveryErr
}
