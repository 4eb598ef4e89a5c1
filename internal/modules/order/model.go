package order

import (
	"time"

	"github.com/google/uuid"
)

// Order is a customer's framing order.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       string          `json:"customer_id"`
	LineItems        []LineItem      `json:"line_items"`
	TotalPrice       int64           `json:"total_price"`
	Status           Status          `json:"status"`
	ShippingAddress  ShippingAddress `json:"shipping_address"`
	AssignedVendorID *string         `json:"assigned_vendor_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
}

// LineItem is one frame and size selection. UnitPrice is fixed when the order is placed.
type LineItem struct {
	FrameID        string `json:"frame_id"`
	SizeID         string `json:"size_id"`
	ImageReference string `json:"image_reference,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
}

// ShippingAddress is copied onto the order at creation.
type ShippingAddress struct {
	FirstName  string `json:"first_name" validate:"notblank"`
	LastName   string `json:"last_name" validate:"notblank"`
	Street     string `json:"street" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"postal_code" validate:"notblank"`
}

// vendorID returns the assigned vendor or "".
func (o *Order) vendorID() string {
	if o.AssignedVendorID == nil {
		return ""
	}
	return *o.AssignedVendorID
}

func (o *Order) clone() *Order {
	cp := *o
	cp.LineItems = append([]LineItem(nil), o.LineItems...)
	if o.AssignedVendorID != nil {
		v := *o.AssignedVendorID
		cp.AssignedVendorID = &v
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

// StatusSnapshot is the small view of an order served by the status endpoint.
type StatusSnapshot struct {
	OrderID          string    `json:"order_id"`
	Status           Status    `json:"status"`
	CustomerID       string    `json:"customer_id"`
	AssignedVendorID string    `json:"assigned_vendor_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (o *Order) StatusSnapshot() StatusSnapshot {
	return StatusSnapshot{
		OrderID:          o.ID.String(),
		Status:           o.Status,
		CustomerID:       o.CustomerID,
		AssignedVendorID: o.vendorID(),
		UpdatedAt:        o.UpdatedAt,
	}
}

// LineItemInput is one requested line of a new order.
type LineItemInput struct {
	FrameID        string `json:"frame_id"`
	SizeID         string `json:"size_id"`
	ImageReference string `json:"image_reference,omitempty"`
	Quantity       int    `json:"quantity" validate:"gt=0,lte=1000"`
}

// CreateOrderRequest is the payload for placing an order.
// CustomerID defaults to the calling customer.
type CreateOrderRequest struct {
	CustomerID      string          `json:"customer_id,omitempty"`
	LineItems       []LineItemInput `json:"line_items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssignVendorRequest is the payload for assigning a fulfilling vendor.
type AssignVendorRequest struct {
	VendorID string `json:"vendor_id"`
}
