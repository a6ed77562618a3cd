package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/nomino/pkg/logger"
)

type flakyPublisher struct {
	err   error
	calls int
}

func (f *flakyPublisher) Publish(context.Context, Message) error {
	f.calls++
	return f.err
}

func (f *flakyPublisher) Close() error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	next := &flakyPublisher{err: errors.New("broker down")}
	b := NewBreaker(next, BreakerOptions{Name: "test", FailureThreshold: 2, OpenTimeout: time.Minute}, logger.Discard())

	ctx := context.Background()
	require.Error(t, b.Publish(ctx, Message{Type: "order.placed"}))
	require.Error(t, b.Publish(ctx, Message{Type: "order.placed"}))

	err := b.Publish(ctx, Message{Type: "order.placed"})
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 2, next.calls)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	next := &flakyPublisher{}
	b := NewBreaker(next, BreakerOptions{Name: "test"}, logger.Discard())

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(context.Background(), Message{}))
	}
	assert.Equal(t, 10, next.calls)
}

func TestKafkaMessageCarriesKeyAndHeaders(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := kafkaMessage(Message{ID: "7", Key: "order-1", Type: "order.placed", Body: []byte(`{}`), OccurredAt: at})

	assert.Equal(t, []byte("order-1"), m.Key)
	assert.Equal(t, []byte(`{}`), m.Value)
	assert.Equal(t, at, m.Time)
	require.Len(t, m.Headers, 2)
	assert.Equal(t, "event_type", m.Headers[0].Key)
	assert.Equal(t, []byte("order.placed"), m.Headers[0].Value)
}

func TestRabbitPublishingIsPersistent(t *testing.T) {
	p := rabbitPublishing(Message{ID: "7", Key: "order-1", Type: "order.canceled", Body: []byte(`{}`)})

	assert.Equal(t, uint8(amqp.Persistent), p.DeliveryMode)
	assert.Equal(t, "order.canceled", p.Type)
	assert.Equal(t, "7", p.MessageId)
	assert.Equal(t, "order-1", p.Headers["aggregate_id"])
}
