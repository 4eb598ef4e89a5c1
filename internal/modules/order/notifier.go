package order

import (
	"context"
	"time"
)

// EventType names a committed order change.
type EventType string

const (
	EventCreated        EventType = "order.created"
	EventStatusChanged  EventType = "order.status_changed"
	EventVendorAssigned EventType = "order.vendor_assigned"
	EventCancelled      EventType = "order.cancelled"
)

// Event describes a change after the repository confirmed it.
type Event struct {
	Type           EventType `json:"type"`
	Order          *Order    `json:"order"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
	ActorID        string    `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier receives committed order events. A Notifier error never fails the operation.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// StatusReader serves status snapshots from a fast store. A miss is (nil, nil).
type StatusReader interface {
	ReadStatus(ctx context.Context, orderID string) (*StatusSnapshot, error)
}
