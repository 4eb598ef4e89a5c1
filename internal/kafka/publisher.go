package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/georgemunganga/framecraft-backend/internal/modules/order"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

// OrderEventPayload is the payload of every order lifecycle event.
type OrderEventPayload struct {
	Order          *order.Order `json:"order"`
	PreviousStatus order.Status `json:"previous_status,omitempty"`
	ActorID        string       `json:"actor_id"`
}

// DefaultQueueSize bounds the events waiting for the broker.
const DefaultQueueSize = 256

var (
	ErrQueueFull = errors.New("kafka publish queue full")
	ErrClosed    = errors.New("kafka publisher closed")
)

// Publisher sends committed order events to Kafka. Messages are keyed by order id so
// the events of one order stay in one partition, in order.
//
// Notify only enqueues. A single goroutine drains the queue into the writer, so a slow
// broker never holds up the caller; write failures are logged.
type Publisher struct {
	w            MessageWriter
	producer     string
	logger       *slog.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan kafka.Message
	done   chan struct{}
}

func NewPublisher(w MessageWriter, producer string, queueSize int, logger *slog.Logger) *Publisher {
	p := &Publisher{
		w:            w,
		producer:     producer,
		logger:       logger,
		writeTimeout: 10 * time.Second,
		inbox:        make(chan kafka.Message, max(queueSize, 1)),
		done:         make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for msg := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		err := p.w.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			p.logger.Warn("kafka_publish_failed",
				"event_type", headerValue(msg, "event_type"),
				"order_id", string(msg.Key),
				"error", err,
			)
		}
	}
}

func (p *Publisher) Notify(_ context.Context, e order.Event) error {
	orderID := e.Order.ID.String()
	env, err := NewEnvelope(string(e.Type), p.producer, orderID, e.OccurredAt, OrderEventPayload{
		Order:          e.Order,
		PreviousStatus: e.PreviousStatus,
		ActorID:        e.ActorID,
	})
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publish %s for order %s: %w", e.Type, orderID, ErrClosed)
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return fmt.Errorf("publish %s for order %s: %w", e.Type, orderID, ErrQueueFull)
	}
}

// Close stops accepting events, flushes the queue and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done
	return p.w.Close()
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
