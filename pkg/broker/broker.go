package broker

import (
	"context"
	"time"
)

// Message is one event handed to a Publisher. Key orders messages for the
// same aggregate; Type doubles as the routing key on topic exchanges.
type Message struct {
	ID         string
	Key        string
	Type       string
	Body       []byte
	OccurredAt time.Time
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Nop drops every message. Used when EVENT_BROKER=none.
type Nop struct{}

func (Nop) Publish(context.Context, Message) error { return nil }
func (Nop) Close() error                          { return nil }
