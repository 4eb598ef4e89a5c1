package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/framecraft-backend/internal/authctx"
	"github.com/georgemunganga/framecraft-backend/internal/modules/catalog"
	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
	"github.com/georgemunganga/framecraft-backend/internal/modules/user"
	"github.com/georgemunganga/framecraft-backend/internal/modules/vendor"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc      Service
	repo     *MemoryRepository
	cache    *Cache
	events   *recordingNotifier
	vendor   *vendor.Vendor
	inactive *vendor.Vendor

	customer authctx.Actor
	other    authctx.Actor
	admin    authctx.Actor
	vendorA  authctx.Actor
	vendorB  authctx.Actor
}

func testCatalog() catalog.Service {
	frames := []*catalog.Frame{{ID: "F1", Name: "Test", BasePrice: 2000, IsActive: true}}
	sizes := []*catalog.Size{{ID: "S1", Name: "Test", PriceMultiplier: decimal.RequireFromString("1.5"), IsActive: true}}
	return catalog.NewService(catalog.NewStaticRepository(frames, sizes), pricing.NewEngine(pricing.DefaultShippingCents))
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, nil, opts...)
}

// newFixtureWithRepo builds the service over wrap(memory) when wrap is set.
func newFixtureWithRepo(t *testing.T, wrap func(Repository) Repository, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	users := user.NewMemoryRepository()
	userSvc := user.NewService(users)
	worksOwner, err := userSvc.RegisterUser(ctx, "owner@frameworks.test", "correct-horse", "Works", "Owner")
	require.NoError(t, err)
	closedOwner, err := userSvc.RegisterUser(ctx, "owner@closed.test", "correct-horse", "Closed", "Owner")
	require.NoError(t, err)

	vendorSvc := vendor.NewService(vendor.NewMemoryRepository(), users)
	active, err := vendorSvc.OnboardVendor(ctx, vendor.OnboardRequest{
		OwnerID: worksOwner.ID.String(), BusinessName: "Frame Works", ContactEmail: "ops@frameworks.test",
	})
	require.NoError(t, err)
	inactive, err := vendorSvc.OnboardVendor(ctx, vendor.OnboardRequest{
		OwnerID: closedOwner.ID.String(), BusinessName: "Closed Shop", ContactEmail: "ops@closed.test",
	})
	require.NoError(t, err)
	_, err = vendorSvc.DeactivateVendor(ctx, inactive.ID.String())
	require.NoError(t, err)

	mem := NewMemoryRepository()
	var repo Repository = mem
	if wrap != nil {
		repo = wrap(mem)
	}
	cache := NewCache(repo)
	events := &recordingNotifier{}
	clock := &fakeClock{t: baseTime}

	opts = append([]Option{WithNotifiers(events), WithClock(clock.Now)}, opts...)
	svc := NewService(repo, cache, testCatalog(), pricing.NewEngine(pricing.DefaultShippingCents), vendorSvc, opts...)

	return &fixture{
		svc:      svc,
		repo:     mem,
		cache:    cache,
		events:   events,
		vendor:   active,
		inactive: inactive,
		customer: authctx.Actor{ID: uuid.NewString(), Role: authctx.RoleCustomer},
		other:    authctx.Actor{ID: uuid.NewString(), Role: authctx.RoleCustomer},
		admin:    authctx.Actor{ID: uuid.NewString(), Role: authctx.RoleAdmin},
		vendorA:  authctx.Actor{ID: uuid.NewString(), Role: authctx.RoleVendor, VendorID: active.ID.String()},
		vendorB:  authctx.Actor{ID: uuid.NewString(), Role: authctx.RoleVendor, VendorID: uuid.NewString()},
	}
}

func validAddress() ShippingAddress {
	return ShippingAddress{
		FirstName: "Jane", LastName: "Doe", Street: "1 Main St",
		City: "Lusaka", State: "Lusaka", PostalCode: "10101",
	}
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		LineItems:       []LineItemInput{{FrameID: "F1", SizeID: "S1", ImageReference: "uploads/cat.png", Quantity: 1}},
		ShippingAddress: validAddress(),
	}
}

// seed stores an order directly in the given status, bypassing the service.
func (f *fixture) seed(t *testing.T, status Status, vendorID string) Record {
	t.Helper()
	rec := Record{
		ID:             uuid.NewString(),
		CustomerID:     f.customer.ID,
		TotalPrice:     4500,
		Status:         status,
		ShipFirstName:  "Jane",
		ShipLastName:   "Doe",
		ShipStreet:     "1 Main St",
		ShipCity:       "Lusaka",
		ShipState:      "Lusaka",
		ShipPostalCode: "10101",
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
		LineItems:      []LineItemRecord{{FrameID: "F1", SizeID: "S1", Quantity: 1, UnitPrice: 3000}},
	}
	if vendorID != "" {
		rec.AssignedVendorID = &vendorID
	}
	if status == StatusCancelled {
		at := baseTime
		rec.CancelledAt = &at
	}
	_, err := f.repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	return rec
}

func (f *fixture) stored(t *testing.T, id string) Record {
	t.Helper()
	rec, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return rec
}

// flakyRepository fails the first n calls with err.
type flakyRepository struct {
	Repository
	mu    sync.Mutex
	n     int
	err   error
	calls int
}

func (r *flakyRepository) fail() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.n > 0 {
		r.n--
		return r.err
	}
	return nil
}

func (r *flakyRepository) GetByID(ctx context.Context, id string) (Record, error) {
	if err := r.fail(); err != nil {
		return Record{}, err
	}
	return r.Repository.GetByID(ctx, id)
}

func (r *flakyRepository) ListWhere(ctx context.Context, f Filter) ([]Record, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	return r.Repository.ListWhere(ctx, f)
}

var errConnReset = errors.New("connection reset by peer")
