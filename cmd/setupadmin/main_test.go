package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/framecraft-backend/internal/modules/user"
)

func TestEnsureAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	testCases := map[string]struct {
		existing      bool
		password      string
		expectedError string
	}{
		"promotes existing user":        {existing: true},
		"creates missing user":          {password: "s3cret-pass"},
		"missing user without password": {expectedError: "ADMIN_PASSWORD"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := user.NewMemoryRepository()
			svc := user.NewService(repo)
			if tc.existing {
				_, err := svc.RegisterUser(ctx, "admin@framecraft.com", "long-enough", "Admin", "User")
				require.NoError(t, err)
			}

			err := ensureAdmin(ctx, svc, "admin@framecraft.com", tc.password, "Admin", "User", logger)
			if tc.expectedError != "" {
				assert.ErrorContains(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)

			u, err := repo.GetUserByEmail(ctx, "admin@framecraft.com")
			require.NoError(t, err)
			assert.Equal(t, user.RoleAdmin, u.Role)
		})
	}
}
