package notifiers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurek362/tbh-backend/internal/models"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaNotifier(t *testing.T) {
	t.Run("user registration event", func(t *testing.T) {
		writer := &fakeWriter{}
		n := &KafkaNotifier{writer: writer}

		user := &models.UserDB{UserID: uuid.New(), Username: "john_doe", CreatedAt: time.Now()}
		err := n.UserRegistered(context.Background(), user, "203.0.113.7")
		require.NoError(t, err)
		require.Len(t, writer.messages, 1)

		assert.Equal(t, []byte("john_doe"), writer.messages[0].Key)

		var event userRegisteredEvent
		require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
		assert.Equal(t, "user_registered", event.Event)
		assert.Equal(t, user.UserID.String(), event.UserID)
		assert.Equal(t, "john_doe", event.Username)
		assert.Equal(t, "203.0.113.7", event.ClientIP)
	})

	t.Run("delivery event carries length not content", func(t *testing.T) {
		writer := &fakeWriter{}
		n := &KafkaNotifier{writer: writer}

		msg := &models.MessageDB{MessageID: uuid.New(), Content: "żółć"}
		err := n.MessageSent(context.Background(), msg, "john_doe")
		require.NoError(t, err)
		require.Len(t, writer.messages, 1)

		var event messageSentEvent
		require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
		assert.Equal(t, "message_sent", event.Event)
		assert.Equal(t, 4, event.ContentLength)
		assert.NotContains(t, string(writer.messages[0].Value), "żółć")
	})

	t.Run("writer failure propagates", func(t *testing.T) {
		n := &KafkaNotifier{writer: &fakeWriter{err: errors.New("broker down")}}

		err := n.UserRegistered(context.Background(), &models.UserDB{Username: "john_doe"}, "")
		assert.ErrorContains(t, err, "broker down")
	})
}
