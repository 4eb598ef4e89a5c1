package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/framecraft-backend/internal/modules/order"
)

type captureWriter struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	err     error
	started chan struct{}
	release chan struct{}
	closed  bool
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.started != nil {
		w.started <- struct{}{}
	}
	if w.release != nil {
		<-w.release
	}
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *captureWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPublisher_Notify(t *testing.T) {
	w := &captureWriter{}
	p := NewPublisher(w, "framecraft-api", DefaultQueueSize, discardLogger())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &order.Order{ID: uuid.New(), CustomerID: "c-1", Status: order.StatusProcessing, TotalPrice: 4500}

	err := p.Notify(context.Background(), order.Event{
		Type:           order.EventStatusChanged,
		Order:          o,
		PreviousStatus: order.StatusPending,
		ActorID:        "admin-1",
		OccurredAt:     at,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	msgs := w.written()
	require.Len(t, msgs, 1)
	assert.True(t, w.closed)

	msg := msgs[0]
	assert.Equal(t, o.ID.String(), string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.status_changed", string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "order.status_changed", env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "framecraft-api", env.Producer)
	assert.Equal(t, o.ID.String(), env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	payload, err := UnwrapPayload[OrderEventPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, payload.PreviousStatus)
	assert.Equal(t, order.StatusProcessing, payload.Order.Status)
	assert.Equal(t, int64(4500), payload.Order.TotalPrice)
	assert.Equal(t, "admin-1", payload.ActorID)
}

func TestPublisher_WriterErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	p := NewPublisher(&captureWriter{err: errors.New("broker down")}, "framecraft-api", DefaultQueueSize,
		slog.New(slog.NewTextHandler(&logs, nil)))

	o := &order.Order{ID: uuid.New()}
	require.NoError(t, p.Notify(context.Background(), order.Event{Type: order.EventCreated, Order: o}))
	require.NoError(t, p.Close())

	assert.Contains(t, logs.String(), "kafka_publish_failed")
	assert.Contains(t, logs.String(), "broker down")
	assert.Contains(t, logs.String(), o.ID.String())
}

func TestPublisher_NotifyDoesNotWaitForBroker(t *testing.T) {
	w := &captureWriter{started: make(chan struct{}, 1), release: make(chan struct{})}
	p := NewPublisher(w, "framecraft-api", 1, discardLogger())
	event := func() order.Event {
		return order.Event{Type: order.EventCreated, Order: &order.Order{ID: uuid.New()}}
	}

	require.NoError(t, p.Notify(context.Background(), event()))
	<-w.started

	require.NoError(t, p.Notify(context.Background(), event()))
	err := p.Notify(context.Background(), event())
	assert.ErrorIs(t, err, ErrQueueFull)

	close(w.release)
	require.NoError(t, p.Close())
	assert.Len(t, w.written(), 2)

	err = p.Notify(context.Background(), event())
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, p.Close())
}

func TestUnwrapPayload_Invalid(t *testing.T) {
	_, err := UnwrapPayload[OrderEventPayload](json.RawMessage(`{"order": 5}`))
	assert.ErrorContains(t, err, "decode payload")
}
