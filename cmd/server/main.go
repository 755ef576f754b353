package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labtest-be/internal/blob"
	"labtest-be/internal/cart"
	"labtest-be/internal/config"
	"labtest-be/internal/db"
	"labtest-be/internal/handler"
	"labtest-be/internal/labtest"
	"labtest-be/internal/logger"
	"labtest-be/internal/metrics"
	"labtest-be/internal/middleware"
	"labtest-be/internal/notification"
	"labtest-be/internal/order"
	"labtest-be/internal/slot"
	"labtest-be/internal/store/memory"
	"labtest-be/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := ":" + cfg.AppPort
	logger.L().Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver),
		zap.String("blob_backend", cfg.BlobBackend),
	)
	return startServerFunc(ctx, addr, router)
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.L().Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type stores struct {
	users   user.Repository
	tests   labtest.Repository
	carts   cart.Repository
	orders  order.Repository
	booking slot.Repository
}

func newStores(cfg *config.Config) (stores, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		database := initDBFunc(cfg)
		return stores{
			users:   user.NewRepository(database),
			tests:   labtest.NewRepository(database),
			carts:   cart.NewRepository(database),
			orders:  order.NewRepository(database),
			booking: slot.NewRepository(database, order.ActiveStatusStrings()),
		}, closeDB(database), nil
	case config.StoreDriverMemory:
		orders := memory.NewOrderStore()
		return stores{
			users:   memory.NewUserStore(),
			tests:   memory.NewLabTestStore(),
			carts:   memory.NewCartStore(),
			orders:  orders,
			booking: orders,
		}, func() {}, nil
	}
	return stores{}, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func closeDB(database *sql.DB) func() {
	return func() {
		if err := database.Close(); err != nil {
			logger.L().Warn("failed to close database", zap.Error(err))
		}
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, string, func(), error) {
	if cfg.BlobBackend == config.BlobBackendGCS {
		gcs, err := blob.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCDNDomain)
		if err != nil {
			return nil, "", nil, fmt.Errorf("init gcs store: %w", err)
		}
		return gcs, "", func() { _ = gcs.Close() }, nil
	}

	local, err := blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		return nil, "", nil, fmt.Errorf("init local store: %w", err)
	}
	return local, local.Root(), func() {}, nil
}

// newSender prefers SMTP, then the Redis outbox, then the log.
func newSender(cfg *config.Config) (notification.Sender, func()) {
	switch {
	case cfg.SMTPHost != "":
		return notification.NewSMTPSender(notification.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		}), func() {}
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return notification.NewRedisSender(client, cfg.NotifyQueue), func() { _ = client.Close() }
	}
	return notification.LogSender{}, func() {}
}

// newServer wires every dependency and returns the router plus a cleanup
// that flushes pending notifications and releases connections.
func newServer(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	log := logger.L()
	stats := metrics.NewWorkflow()

	st, closeStores, err := newStores(cfg)
	if err != nil {
		return nil, nil, err
	}

	blobs, uploadDir, closeBlobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		closeStores()
		return nil, nil, err
	}

	sender, closeSender := newSender(cfg)
	dispatcher := notification.NewDispatcher(sender, 0, stats)

	cleanup := func() {
		dispatcher.Wait()
		closeSender()
		closeBlobs()
		closeStores()
	}

	users := user.NewService(st.users, cfg.JWTSecret)
	if cfg.SuperAdminEmail != "" && cfg.SuperAdminPassword != "" {
		if err := users.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("bootstrap superadmin: %w", err)
		}
	}

	carts := cart.NewService(st.carts, st.tests)
	ledger := slot.NewLedger(st.booking, cfg.SlotWindows)
	orders := order.NewService(order.Deps{
		Repo:             st.orders,
		Ledger:           ledger,
		Carts:            carts,
		Blobs:            blobs,
		Notifier:         dispatcher,
		Metrics:          stats,
		CollectionCharge: cfg.HomeCollectionCharge,
	})

	h := handler.NewHandler(handler.Deps{
		Users:          users,
		Tests:          labtest.NewService(st.tests),
		Carts:          carts,
		Orders:         orders,
		Slots:          ledger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.IsProduction(),
	})

	router := handler.NewRouter(h, handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        middleware.NewRateLimiter(ctx),
		Metrics:        stats.Handler(),
		UploadDir:      uploadDir,
	})

	log.Info("dependencies wired",
		zap.Strings("slot_windows", cfg.SlotWindows),
		zap.Int("collection_charge", cfg.HomeCollectionCharge),
	)
	return router, cleanup, nil
}
