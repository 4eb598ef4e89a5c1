package order

import "context"

// Repository is the persistence boundary for orders. Implementations validate every
// Record they accept or return.
type Repository interface {
	// Insert persists a new order with its line items. Inserting an id that already
	// exists is a no-op, so a retried insert is safe.
	Insert(ctx context.Context, rec Record) (string, error)

	// UpdateFields applies f only if the stored status still equals pre.Status, and
	// returns the stored record after the update. A failed precondition yields
	// apperror.ConcurrentModificationError.
	UpdateFields(ctx context.Context, id string, pre Precondition, f Fields) (Record, error)

	// GetByID returns apperror.NotFoundError when no order has the id.
	GetByID(ctx context.Context, id string) (Record, error)

	// ListWhere returns matching records, newest first.
	ListWhere(ctx context.Context, f Filter) ([]Record, error)
}
