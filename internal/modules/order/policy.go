package order

import (
	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/authctx"
)

type transition struct {
	from Status
	to   Status
}

// rule decides whether actor may perform a transition on o.
type rule func(actor authctx.Actor, o *Order) bool

// transitionRules is the state machine. A pair absent from the table is not a valid transition.
var transitionRules = map[transition]rule{
	{StatusPending, StatusProcessing}:   adminOnly,
	{StatusPending, StatusCancelled}:    adminOrOwner,
	{StatusProcessing, StatusShipped}:   adminOrAssignedVendor,
	{StatusProcessing, StatusCancelled}: adminOnly,
	{StatusShipped, StatusDelivered}:    adminOrAssignedVendor,
}

func adminOnly(actor authctx.Actor, _ *Order) bool {
	return actor.IsAdmin()
}

func adminOrOwner(actor authctx.Actor, o *Order) bool {
	return actor.IsAdmin() || (actor.IsCustomer() && actor.ID == o.CustomerID)
}

func adminOrAssignedVendor(actor authctx.Actor, o *Order) bool {
	return actor.IsAdmin() || (o.AssignedVendorID != nil && actor.IsVendor(*o.AssignedVendorID))
}

// CanTransition reports whether the state machine allows moving from one status to another.
func CanTransition(from, to Status) bool {
	_, ok := transitionRules[transition{from, to}]
	return ok
}

// authorizeTransition assumes CanTransition(o.Status, to) holds.
func authorizeTransition(actor authctx.Actor, o *Order, to Status) error {
	allowed := transitionRules[transition{o.Status, to}]
	if allowed == nil || !allowed(actor, o) {
		return &apperror.AuthorizationError{Role: string(actor.Role), Operation: "move order from " + string(o.Status) + " to " + string(to)}
	}
	return nil
}

// canView reports whether actor may read an order owned by customerID and assigned to vendorID.
func canView(actor authctx.Actor, customerID, vendorID string) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.IsCustomer():
		return actor.ID == customerID
	default:
		return vendorID != "" && actor.IsVendor(vendorID)
	}
}
