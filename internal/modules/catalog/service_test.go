package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
)

type failingRepo struct{ err error }

func (r failingRepo) ListFrames(context.Context) ([]*Frame, error) { return nil, r.err }
func (r failingRepo) ListSizes(context.Context) ([]*Size, error)   { return nil, r.err }

func TestSnapshot_SkipsInactive(t *testing.T) {
	frames := DefaultFrames()
	frames[0].IsActive = false
	sizes := DefaultSizes()
	sizes[1].IsActive = false

	snap := NewSnapshot(frames, sizes)

	_, ok := snap.Frame("minimal-black")
	assert.False(t, ok)
	_, ok = snap.Size("11x14")
	assert.False(t, ok)

	price, ok := snap.BasePrice("classic-wood")
	require.True(t, ok)
	assert.Equal(t, int64(2999), price)

	mult, ok := snap.PriceMultiplier("16x20")
	require.True(t, ok)
	assert.True(t, mult.Equal(decimal.NewFromInt(2)))
}

func TestSnapshot_IsDetachedFromInput(t *testing.T) {
	frames := DefaultFrames()
	snap := NewSnapshot(frames, DefaultSizes())

	frames[1].BasePrice = 1
	price, _ := snap.BasePrice("classic-wood")
	assert.Equal(t, int64(2999), price)
}

func TestService_Quote(t *testing.T) {
	svc := NewService(NewStaticRepository(DefaultFrames(), DefaultSizes()), pricing.NewEngine(pricing.DefaultShippingCents))

	q, err := svc.Quote(context.Background(), []pricing.Item{
		{FrameID: "minimal-black", SizeID: "11x14", Quantity: 2},
	})
	require.NoError(t, err)
	// 2499 * 1.5 = 3748.5 -> 3749
	assert.Equal(t, int64(3749), q.Lines[0].UnitPrice)
	assert.Equal(t, int64(7498+1500), q.Total)
}

func TestService_Snapshot_PropagatesRepositoryError(t *testing.T) {
	svc := NewService(failingRepo{err: errors.New("db down")}, pricing.NewEngine(0))

	_, err := svc.Snapshot(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestHandler(t *testing.T) {
	svc := NewService(NewStaticRepository(DefaultFrames(), DefaultSizes()), pricing.NewEngine(pricing.DefaultShippingCents))
	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router)

	testCases := map[string]struct {
		method         string
		path           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		"should list frames": {
			method: http.MethodGet, path: "/api/v1/catalog/frames",
			expectedStatus: http.StatusOK, expectedBody: `"id":"ornate-gold"`,
		},
		"should list sizes": {
			method: http.MethodGet, path: "/api/v1/catalog/sizes",
			expectedStatus: http.StatusOK, expectedBody: `"price_multiplier":"1.5"`,
		},
		"should quote a cart": {
			method: http.MethodPost, path: "/api/v1/catalog/quote",
			body:           `{"items":[{"frame_id":"classic-wood","size_id":"8x10","quantity":1}]}`,
			expectedStatus: http.StatusOK, expectedBody: `"total":4499`,
		},
		"should reject unknown frame": {
			method: http.MethodPost, path: "/api/v1/catalog/quote",
			body:           `{"items":[{"frame_id":"plastic","size_id":"8x10","quantity":1}]}`,
			expectedStatus: http.StatusBadRequest, expectedBody: "unknown frame",
		},
		"should reject malformed body": {
			method: http.MethodPost, path: "/api/v1/catalog/quote",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tc.expectedBody)
			}
		})
	}
}

func TestHandler_RepositoryFailure(t *testing.T) {
	svc := NewService(failingRepo{err: &apperror.TransientError{Op: "list frames", Err: errors.New("timeout")}}, pricing.NewEngine(0))
	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/frames", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
