package order

import (
	"strings"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus normalizes a client supplied status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", &apperror.ValidationError{Field: "status", Reason: "unknown status " + s}
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	for t := range transitionRules {
		if t.from == s {
			return false
		}
	}
	return true
}

// acceptsVendor reports whether an order in status s may hold an assigned vendor.
func (s Status) acceptsVendor() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusShipped
}
