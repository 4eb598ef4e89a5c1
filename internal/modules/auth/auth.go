package auth

import (
	"context"

	"github.com/georgemunganga/framecraft-backend/internal/authctx"
)

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login checks credentials and issues a signed token.
	Login(ctx context.Context, email, password string) (string, error)

	// Authenticate verifies a token and returns the actor it was issued to.
	Authenticate(tokenString string) (authctx.Actor, error)
}
