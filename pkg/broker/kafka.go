package broker

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(topic string, brokers ...string) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{writer: w}
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	err := k.writer.WriteMessages(ctx, kafkaMessage(msg))
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", msg.Type, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}

func kafkaMessage(msg Message) kafka.Message {
	return kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Body,
		Time:  msg.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(msg.Type)},
			{Key: "event_id", Value: []byte(msg.ID)},
		},
	}
}
