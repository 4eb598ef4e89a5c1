package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/framecraft-backend/internal/config"
	"github.com/georgemunganga/framecraft-backend/internal/kafka"
	"github.com/georgemunganga/framecraft-backend/internal/metrics"
	"github.com/georgemunganga/framecraft-backend/internal/modules/auth"
	"github.com/georgemunganga/framecraft-backend/internal/modules/catalog"
	"github.com/georgemunganga/framecraft-backend/internal/modules/order"
	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
	"github.com/georgemunganga/framecraft-backend/internal/modules/user"
	"github.com/georgemunganga/framecraft-backend/internal/modules/vendor"
	"github.com/georgemunganga/framecraft-backend/internal/redisx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.LogJSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api_failed", "error", err)
		os.Exit(1)
	}
}

type repositories struct {
	users   user.Repository
	vendors vendor.Repository
	catalog catalog.Repository
	orders  order.Repository
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, func(), error) {
	if cfg.Storage == config.StorageMemory {
		return repositories{
			users:   user.NewMemoryRepository(),
			vendors: vendor.NewMemoryRepository(),
			catalog: catalog.NewStaticRepository(catalog.DefaultFrames(), catalog.DefaultSizes()),
			orders:  order.NewMemoryRepository(),
		}, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return repositories{}, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return repositories{}, nil, err
	}

	return repositories{
		users:   user.NewPostgresRepository(db),
		vendors: vendor.NewPostgresRepository(db),
		catalog: catalog.NewPostgresRepository(db),
		orders:  order.NewPostgresRepository(db),
	}, func() { db.Close() }, nil
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, cfg.ServiceName)

	// ── Post-commit sinks ───────────────────────────────────
	notifiers := []order.Notifier{metrics.NewOrderRecorder(reg, cfg.ServiceName)}
	orderOpts := []order.Option{order.WithLogger(logger)}

	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
		}
		mirror := redisx.NewStatusMirror(rdb, redisx.TTLStatusCache)
		notifiers = append(notifiers, mirror)
		orderOpts = append(orderOpts, order.WithStatusReader(mirror))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic), cfg.ServiceName, kafka.DefaultQueueSize, logger)
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}
	orderOpts = append(orderOpts, order.WithNotifiers(notifiers...))

	// ── Services ────────────────────────────────────────────
	engine := pricing.NewEngine(cfg.ShippingCents)

	userService := user.NewService(repos.users)
	vendorService := vendor.NewService(repos.vendors, repos.users)
	catalogService := catalog.NewService(repos.catalog, engine)
	authService := auth.NewService(repos.users, repos.vendors, auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.JWTTTL,
		Issuer: cfg.ServiceName,
	})

	orderRepo := order.WithRetry(repos.orders, order.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
		Timeout:     cfg.RepoTimeout,
	})
	orderService := order.NewService(orderRepo, order.NewCache(orderRepo), catalogService, engine, vendorService, orderOpts...)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(serverMetrics.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler(reg))

	userHandler := user.NewHandler(userService)
	auth.NewHandler(authService).RegisterRoutes(router)
	userHandler.RegisterPublicRoutes(router)
	catalog.NewHandler(catalogService).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService, logger))
		userHandler.RegisterRoutes(r)
		vendor.NewHandler(vendorService).RegisterRoutes(r)
		order.NewHandler(orderService).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_starting", "port", cfg.Port, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("api_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
