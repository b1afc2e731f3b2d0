package notifiers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/segmentio/kafka-go"

	"github.com/jurek362/tbh-backend/internal/models"
)

// messageWriter is the subset of kafka.Writer used by the notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes activity events as JSON records. Events are
// keyed by username so per-user ordering is preserved within a partition.
type KafkaNotifier struct {
	writer messageWriter
}

type userRegisteredEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type messageSentEvent struct {
	Event         string    `json:"event"`
	MessageID     string    `json:"message_id"`
	Recipient     string    `json:"recipient"`
	ContentLength int       `json:"content_length"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewKafkaNotifier builds a notifier writing to topic on the given brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// UserRegistered publishes a user_registered event.
func (n *KafkaNotifier) UserRegistered(ctx context.Context, user *models.UserDB, clientIP string) error {
	return n.publish(ctx, user.Username, userRegisteredEvent{
		Event:     "user_registered",
		UserID:    user.UserID.String(),
		Username:  user.Username,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	})
}

// MessageSent publishes a message_sent event. The message body is not
// part of the record, only its length.
func (n *KafkaNotifier) MessageSent(ctx context.Context, msg *models.MessageDB, recipient string) error {
	return n.publish(ctx, recipient, messageSentEvent{
		Event:         "message_sent",
		MessageID:     msg.MessageID.String(),
		Recipient:     recipient,
		ContentLength: utf8.RuneCountInString(msg.Content),
		Timestamp:     time.Now().UTC(),
	})
}

func (n *KafkaNotifier) publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
