package authctx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	testCases := map[string]struct {
		input         string
		expected      Role
		expectedError string
	}{
		"user tag maps to customer": {input: "user", expected: RoleCustomer},
		"customer":                  {input: "customer", expected: RoleCustomer},
		"vendor":                    {input: "vendor", expected: RoleVendor},
		"admin":                     {input: "admin", expected: RoleAdmin},
		"unknown":                   {input: "superuser", expectedError: `unknown role "superuser"`},
		"case sensitive":            {input: "Admin", expectedError: `unknown role "Admin"`},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			role, err := ParseRole(tc.input)
			if tc.expectedError != "" {
				assert.EqualError(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, role)
		})
	}
}

func TestActor_IsVendor(t *testing.T) {
	assert.True(t, Actor{ID: "u1", Role: RoleVendor, VendorID: "v1"}.IsVendor("v1"))
	assert.False(t, Actor{ID: "u1", Role: RoleVendor, VendorID: "v1"}.IsVendor("v2"))
	assert.False(t, Actor{ID: "u1", Role: RoleVendor}.IsVendor(""))
	assert.False(t, Actor{ID: "u1", Role: RoleAdmin, VendorID: "v1"}.IsVendor("v1"))
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	_, ok = FromContext(WithActor(context.Background(), Actor{Role: RoleAdmin}))
	assert.False(t, ok, "actor without id is not authenticated")

	a, ok := FromContext(WithActor(context.Background(), Actor{ID: "u1", Role: RoleAdmin}))
	require.True(t, ok)
	assert.Equal(t, "u1", a.ID)
}

func TestRequireRole(t *testing.T) {
	testCases := map[string]struct {
		actor          *Actor
		expectedStatus int
	}{
		"should reject anonymous request": {expectedStatus: http.StatusUnauthorized},
		"should reject wrong role": {
			actor:          &Actor{ID: "u1", Role: RoleCustomer},
			expectedStatus: http.StatusForbidden,
		},
		"should allow matching role": {
			actor:          &Actor{ID: "u1", Role: RoleAdmin},
			expectedStatus: http.StatusNoContent,
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tc.actor))
			}
			rec := httptest.NewRecorder()

			RequireRole(RoleAdmin)(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}
