package order

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/validation"
)

// Record is the flat persisted shape of an order. Every adapter validates it on the way
// in and on the way out.
type Record struct {
	ID               string           `json:"id" validate:"required,uuid"`
	CustomerID       string           `json:"customer_id" validate:"required,uuid"`
	TotalPrice       int64            `json:"total_price" validate:"gte=0"`
	Status           Status           `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	ShipFirstName    string           `json:"ship_first_name" validate:"required"`
	ShipLastName     string           `json:"ship_last_name" validate:"required"`
	ShipStreet       string           `json:"ship_street" validate:"required"`
	ShipCity         string           `json:"ship_city" validate:"required"`
	ShipState        string           `json:"ship_state" validate:"required"`
	ShipPostalCode   string           `json:"ship_postal_code" validate:"required"`
	AssignedVendorID *string          `json:"assigned_vendor_id" validate:"omitempty,uuid"`
	CreatedAt        time.Time        `json:"created_at" validate:"required"`
	UpdatedAt        time.Time        `json:"updated_at" validate:"required,gtefield=CreatedAt"`
	CancelledAt      *time.Time       `json:"cancelled_at"`
	LineItems        []LineItemRecord `json:"line_items" validate:"required,min=1,dive"`
}

// LineItemRecord is one persisted line item row.
type LineItemRecord struct {
	FrameID        string `json:"frame_id" validate:"required"`
	SizeID         string `json:"size_id" validate:"required"`
	ImageReference string `json:"image_reference"`
	Quantity       int    `json:"quantity" validate:"gt=0,lte=1000"`
	UnitPrice      int64  `json:"unit_price" validate:"gte=0"`
}

// Precondition guards a conditional update: the stored status must still equal Status.
type Precondition struct {
	Status Status
}

// Fields is a partial update. Nil fields are left unchanged.
type Fields struct {
	Status           *Status
	AssignedVendorID *string
	ClearVendor      bool
	CancelledAt      *time.Time
	UpdatedAt        time.Time
}

// appliedTo reports whether r already holds every value f writes.
func (f Fields) appliedTo(r Record) bool {
	if !r.UpdatedAt.Equal(f.UpdatedAt) {
		return false
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.ClearVendor && r.AssignedVendorID != nil {
		return false
	}
	if f.AssignedVendorID != nil && (r.AssignedVendorID == nil || *r.AssignedVendorID != *f.AssignedVendorID) {
		return false
	}
	if f.CancelledAt != nil && (r.CancelledAt == nil || !r.CancelledAt.Equal(*f.CancelledAt)) {
		return false
	}
	return true
}

// Filter selects records for ListWhere. Empty fields match everything.
type Filter struct {
	CustomerID string
	VendorID   string
	Status     Status
}

func (f Filter) matches(r *Record) bool {
	if f.CustomerID != "" && r.CustomerID != f.CustomerID {
		return false
	}
	if f.VendorID != "" && (r.AssignedVendorID == nil || *r.AssignedVendorID != f.VendorID) {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validation.New()
	v.RegisterStructValidation(validateRecordState, Record{})
	return v
}

// validateRecordState checks the invariants that span fields.
func validateRecordState(sl validator.StructLevel) {
	r := sl.Current().Interface().(Record)
	if r.AssignedVendorID != nil && !r.Status.acceptsVendor() {
		sl.ReportError(r.AssignedVendorID, "assigned_vendor_id", "AssignedVendorID", "vendor_status", string(r.Status))
	}
	if (r.CancelledAt != nil) != (r.Status == StatusCancelled) {
		sl.ReportError(r.CancelledAt, "cancelled_at", "CancelledAt", "cancelled_status", string(r.Status))
	}
}

// Validate rejects a malformed record with an apperror.ValidationError.
func (r Record) Validate() error {
	return validation.Check(validate, r)
}

func (r *Record) apply(f Fields) {
	if f.Status != nil {
		r.Status = *f.Status
	}
	switch {
	case f.ClearVendor:
		r.AssignedVendorID = nil
	case f.AssignedVendorID != nil:
		v := *f.AssignedVendorID
		r.AssignedVendorID = &v
	}
	if f.CancelledAt != nil {
		t := *f.CancelledAt
		r.CancelledAt = &t
	}
	r.UpdatedAt = f.UpdatedAt
}

func (r Record) clone() Record {
	cp := r
	cp.LineItems = append([]LineItemRecord(nil), r.LineItems...)
	if r.AssignedVendorID != nil {
		v := *r.AssignedVendorID
		cp.AssignedVendorID = &v
	}
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		cp.CancelledAt = &t
	}
	return cp
}

func toRecord(o *Order) Record {
	r := Record{
		ID:             o.ID.String(),
		CustomerID:     o.CustomerID,
		TotalPrice:     o.TotalPrice,
		Status:         o.Status,
		ShipFirstName:  o.ShippingAddress.FirstName,
		ShipLastName:   o.ShippingAddress.LastName,
		ShipStreet:     o.ShippingAddress.Street,
		ShipCity:       o.ShippingAddress.City,
		ShipState:      o.ShippingAddress.State,
		ShipPostalCode: o.ShippingAddress.PostalCode,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		LineItems:      make([]LineItemRecord, 0, len(o.LineItems)),
	}
	for _, li := range o.LineItems {
		r.LineItems = append(r.LineItems, LineItemRecord(li))
	}
	if o.AssignedVendorID != nil {
		v := *o.AssignedVendorID
		r.AssignedVendorID = &v
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		r.CancelledAt = &t
	}
	return r
}

func fromRecord(r Record) (*Order, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, &apperror.ValidationError{Field: "id", Reason: "must be a uuid"}
	}
	o := &Order{
		ID:         id,
		CustomerID: r.CustomerID,
		TotalPrice: r.TotalPrice,
		Status:     r.Status,
		ShippingAddress: ShippingAddress{
			FirstName:  r.ShipFirstName,
			LastName:   r.ShipLastName,
			Street:     r.ShipStreet,
			City:       r.ShipCity,
			State:      r.ShipState,
			PostalCode: r.ShipPostalCode,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		LineItems: make([]LineItem, 0, len(r.LineItems)),
	}
	for _, li := range r.LineItems {
		o.LineItems = append(o.LineItems, LineItem(li))
	}
	if r.AssignedVendorID != nil {
		v := *r.AssignedVendorID
		o.AssignedVendorID = &v
	}
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		o.CancelledAt = &t
	}
	return o, nil
}
