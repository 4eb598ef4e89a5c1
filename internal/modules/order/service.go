package order

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/authctx"
	"github.com/georgemunganga/framecraft-backend/internal/modules/catalog"
	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
	"github.com/georgemunganga/framecraft-backend/internal/modules/vendor"
	"github.com/georgemunganga/framecraft-backend/internal/validation"
)

// Service defines the order lifecycle business logic.
type Service interface {
	// CreateOrder prices the line items against the current catalog and stores a pending order.
	CreateOrder(ctx context.Context, actor authctx.Actor, req CreateOrderRequest) (*Order, error)

	// TransitionStatus moves an order along the state machine. A cancelled target is handled by Cancel.
	TransitionStatus(ctx context.Context, id string, actor authctx.Actor, target Status) (*Order, error)

	// Cancel cancels a pending or processing order and releases its vendor.
	Cancel(ctx context.Context, id string, actor authctx.Actor) (*Order, error)

	// AssignVendor sets the fulfilling vendor without changing status.
	AssignVendor(ctx context.Context, id string, actor authctx.Actor, vendorID string) (*Order, error)

	GetOrder(ctx context.Context, actor authctx.Actor, id string) (*Order, error)
	GetStatus(ctx context.Context, actor authctx.Actor, id string) (*StatusSnapshot, error)

	ListForCustomer(ctx context.Context, actor authctx.Actor, customerID string) ([]*Order, error)
	ListForVendor(ctx context.Context, actor authctx.Actor, vendorID string) ([]*Order, error)
	ListAll(ctx context.Context, actor authctx.Actor) ([]*Order, error)
}

// CatalogSource supplies the catalog used to price new orders.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// VendorLookup resolves vendors that may take new assignments.
type VendorLookup interface {
	GetActiveVendor(ctx context.Context, id string) (*vendor.Vendor, error)
}

// Option configures optional service collaborators.
type Option func(*service)

func WithNotifiers(n ...Notifier) Option {
	return func(s *service) { s.notifiers = append(s.notifiers, n...) }
}

func WithStatusReader(r StatusReader) Option {
	return func(s *service) { s.statusReader = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *service) { s.logger = l }
}

// WithNotifyTimeout bounds each notifier call made after a committed write.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *service) { s.notifyTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// DefaultNotifyTimeout is the per-notifier budget when WithNotifyTimeout is not given.
const DefaultNotifyTimeout = 2 * time.Second

type service struct {
	repo          Repository
	cache         *Cache
	catalog       CatalogSource
	engine        *pricing.Engine
	vendors       VendorLookup
	notifiers     []Notifier
	notifyTimeout time.Duration
	statusReader  StatusReader
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates a new order service.
func NewService(repo Repository, cache *Cache, catalogSrc CatalogSource, engine *pricing.Engine, vendors VendorLookup, opts ...Option) Service {
	s := &service{
		repo:    repo,
		cache:   cache,
		catalog: catalogSrc,
		engine:  engine,
		vendors: vendors,

		notifyTimeout: DefaultNotifyTimeout,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateOrder(ctx context.Context, actor authctx.Actor, req CreateOrderRequest) (*Order, error) {
	if !actor.IsCustomer() {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "create an order"}
	}
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		customerID = actor.ID
	}
	if customerID != actor.ID {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "create an order for another customer"}
	}

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]pricing.Item, len(req.LineItems))
	for i, li := range req.LineItems {
		items[i] = pricing.Item{FrameID: li.FrameID, SizeID: li.SizeID, Quantity: li.Quantity}
	}
	quote, err := s.engine.ComputeTotal(snap, items)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	o := &Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		TotalPrice:      quote.Total,
		Status:          StatusPending,
		ShippingAddress: req.ShippingAddress,
		LineItems:       make([]LineItem, len(req.LineItems)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for i, li := range req.LineItems {
		o.LineItems[i] = LineItem{
			FrameID:        li.FrameID,
			SizeID:         li.SizeID,
			ImageReference: li.ImageReference,
			Quantity:       li.Quantity,
			UnitPrice:      quote.Lines[i].UnitPrice,
		}
	}

	id, err := s.repo.Insert(ctx, toRecord(o))
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	created, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}

	s.cache.Put(created)
	s.notify(ctx, Event{Type: EventCreated, Order: created, ActorID: actor.ID, OccurredAt: now})
	return created, nil
}

func (s *service) TransitionStatus(ctx context.Context, id string, actor authctx.Actor, target Status) (*Order, error) {
	if target == StatusCancelled {
		return s.Cancel(ctx, id, actor)
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, target) {
		return nil, &apperror.InvalidTransitionError{From: string(o.Status), To: string(target)}
	}
	if err := authorizeTransition(actor, o, target); err != nil {
		return nil, err
	}

	fields := Fields{Status: &target, UpdatedAt: s.timestamp()}
	if target == StatusDelivered {
		fields.ClearVendor = true
	}
	return s.update(ctx, actor, o, fields, EventStatusChanged)
}

func (s *service) Cancel(ctx context.Context, id string, actor authctx.Actor) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, &apperror.InvalidTransitionError{From: string(o.Status), To: string(StatusCancelled)}
	}
	if err := authorizeTransition(actor, o, StatusCancelled); err != nil {
		return nil, err
	}

	now := s.timestamp()
	cancelled := StatusCancelled
	return s.update(ctx, actor, o, Fields{
		Status:      &cancelled,
		ClearVendor: true,
		CancelledAt: &now,
		UpdatedAt:   now,
	}, EventCancelled)
}

func (s *service) AssignVendor(ctx context.Context, id string, actor authctx.Actor, vendorID string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "assign a vendor"}
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return nil, &apperror.InvalidStateError{Status: string(o.Status), Operation: "assign a vendor"}
	}

	v, err := s.vendors.GetActiveVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	assigned := v.ID.String()

	return s.update(ctx, actor, o, Fields{AssignedVendorID: &assigned, UpdatedAt: s.timestamp()}, EventVendorAssigned)
}

func (s *service) GetOrder(ctx context.Context, actor authctx.Actor, id string) (*Order, error) {
	o, ok := s.cache.Get(id)
	if !ok {
		var err error
		if o, err = s.cache.Refresh(ctx, id); err != nil {
			return nil, err
		}
	}
	if !canView(actor, o.CustomerID, o.vendorID()) {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "view this order"}
	}
	return o, nil
}

func (s *service) GetStatus(ctx context.Context, actor authctx.Actor, id string) (*StatusSnapshot, error) {
	if s.statusReader != nil {
		snap, err := s.statusReader.ReadStatus(ctx, id)
		if err != nil {
			s.logger.Warn("order_status_read_failed", "order_id", id, "error", err)
		}
		if err == nil && snap != nil {
			if !canView(actor, snap.CustomerID, snap.AssignedVendorID) {
				return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "view this order"}
			}
			return snap, nil
		}
	}

	o, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	snap := o.StatusSnapshot()
	return &snap, nil
}

func (s *service) ListForCustomer(ctx context.Context, actor authctx.Actor, customerID string) ([]*Order, error) {
	if !actor.IsAdmin() && !(actor.IsCustomer() && actor.ID == customerID) {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "list orders of this customer"}
	}
	return s.list(ctx, Filter{CustomerID: customerID})
}

func (s *service) ListForVendor(ctx context.Context, actor authctx.Actor, vendorID string) ([]*Order, error) {
	if !actor.IsAdmin() && !actor.IsVendor(vendorID) {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "list orders of this vendor"}
	}
	return s.list(ctx, Filter{VendorID: vendorID})
}

func (s *service) ListAll(ctx context.Context, actor authctx.Actor) ([]*Order, error) {
	if !actor.IsAdmin() {
		return nil, &apperror.AuthorizationError{Role: string(actor.Role), Operation: "list all orders"}
	}
	return s.list(ctx, Filter{})
}

// ── helpers ───────────────────────────────────────────────────────────────────

// load reads the authoritative record; state machine checks never run against the cache.
func (s *service) load(ctx context.Context, id string) (*Order, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// update applies fields conditionally on the status observed in o.
func (s *service) update(ctx context.Context, actor authctx.Actor, o *Order, fields Fields, event EventType) (*Order, error) {
	id := o.ID.String()
	rec, err := s.repo.UpdateFields(ctx, id, Precondition{Status: o.Status}, fields)
	if err != nil {
		var conflict *apperror.ConcurrentModificationError
		if errors.As(err, &conflict) {
			s.cache.Invalidate(id)
		}
		return nil, err
	}
	updated, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}

	s.cache.Put(updated)
	s.notify(ctx, Event{
		Type:           event,
		Order:          updated,
		PreviousStatus: o.Status,
		ActorID:        actor.ID,
		OccurredAt:     fields.UpdatedAt,
	})
	return updated, nil
}

func (s *service) list(ctx context.Context, f Filter) ([]*Order, error) {
	recs, err := s.repo.ListWhere(ctx, f)
	if err != nil {
		return nil, err
	}
	orders := make([]*Order, 0, len(recs))
	for _, rec := range recs {
		o, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		s.cache.Put(o)
		orders = append(orders, o)
	}
	return orders, nil
}

// notify runs after the write committed, so a cancelled request still notifies.
// Each notifier gets its own notifyTimeout.
func (s *service) notify(ctx context.Context, e Event) {
	base := context.WithoutCancel(ctx)
	for _, n := range s.notifiers {
		nctx, cancel := context.WithTimeout(base, s.notifyTimeout)
		err := n.Notify(nctx, e)
		cancel()
		if err != nil {
			s.logger.Warn("order_notify_failed",
				"event", e.Type,
				"order_id", e.Order.ID.String(),
				"error", err,
			)
		}
	}
}

// timestamp is truncated to the precision Postgres stores.
func (s *service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
