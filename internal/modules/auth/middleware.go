package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/georgemunganga/framecraft-backend/internal/authctx"
)

const BearerPrefix = "bearer"

// Middleware authenticates the bearer token and places the actor in the request context.
func Middleware(svc Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractBearerToken(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := svc.Authenticate(tokenString)
			if err != nil {
				logger.Debug("token_rejected", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(authctx.WithActor(r.Context(), actor)))
		})
	}
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) || parts[1] == "" {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}
