// Package authctx carries the authenticated actor through a request context.
// Identity itself is established elsewhere (see modules/auth); this package
// only defines who the actor is and what role it holds.
package authctx

import (
	"context"
	"fmt"
	"net/http"
	"slices"
)

// Role is the closed set of actor roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored user role tag to a Role. The storefront tags customers as "user".
func ParseRole(s string) (Role, error) {
	switch s {
	case "user", string(RoleCustomer):
		return RoleCustomer, nil
	case string(RoleVendor):
		return RoleVendor, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Actor is the identity performing an operation.
// VendorID is set only for vendor actors and names the vendor they operate.
type Actor struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

// IsVendor reports whether the actor operates the given vendor.
func (a Actor) IsVendor(vendorID string) bool {
	return a.Role == RoleVendor && a.VendorID != "" && a.VendorID == vendorID
}

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, a)
}

// FromContext extracts the actor placed by the authentication middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorContextKey).(Actor)
	return a, ok && a.ID != ""
}

// RequireRole rejects requests whose actor holds none of the given roles.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, a.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
