// Package publisher announces created orders on Kafka.
package publisher

import (
	"context"
	"fmt"
	"strconv"

	d "github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic   = "orders.created"
	EventTypeOrder = "OrderCreated"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewOrderPublisher(writer MessageWriter) *OrderPublisher {
	return &OrderPublisher{writer: writer}
}

// Publish writes the order transfer payload keyed by order id.
func (p *OrderPublisher) Publish(ctx context.Context, order d.Order) error {
	payload, err := d.NewOrderPayload(order).Marshal()
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)), // order id keeps one order on one partition
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrder)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order %d: %w", order.ID, err)
	}
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
