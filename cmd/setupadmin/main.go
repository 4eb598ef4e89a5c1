// Command setupadmin creates an admin account, or promotes an existing user to admin.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/config"
	"github.com/georgemunganga/framecraft-backend/internal/modules/user"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	firstName := flag.String("first-name", "Admin", "first name for a new account")
	lastName := flag.String("last-name", "User", "last name for a new account")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.Storage != config.StoragePostgres {
		log.Fatal("setupadmin requires STORAGE=postgres")
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := user.NewService(user.NewPostgresRepository(db))
	if err := ensureAdmin(ctx, svc, *email, os.Getenv("ADMIN_PASSWORD"), *firstName, *lastName, logger); err != nil {
		logger.Error("admin_setup_failed", "email", *email, "error", err)
		os.Exit(1)
	}
	logger.Info("admin_setup_completed", "email", *email)
}

// ensureAdmin promotes email, registering it first with password when it does not exist yet.
func ensureAdmin(ctx context.Context, svc user.Service, email, password, firstName, lastName string, logger *slog.Logger) error {
	u, err := svc.PromoteToAdmin(ctx, email)
	if err == nil {
		logger.Info("admin_promoted", "user_id", u.ID.String())
		return nil
	}

	var notFound *apperror.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}
	if password == "" {
		return errors.New("user does not exist; set ADMIN_PASSWORD to create it")
	}

	u, err = svc.RegisterUser(ctx, email, password, firstName, lastName)
	if err != nil {
		return err
	}
	logger.Info("admin_registered", "user_id", u.ID.String())

	_, err = svc.PromoteToAdmin(ctx, email)
	return err
}
