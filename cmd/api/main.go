package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/counterpos/api/routes"
	"github.com/angelmondragon/counterpos/internal/events"
	"github.com/angelmondragon/counterpos/internal/pos"
	"github.com/angelmondragon/counterpos/internal/storage"
	"github.com/angelmondragon/counterpos/internal/storage/sqlstore"
	"github.com/angelmondragon/counterpos/pkg/config"
	"github.com/angelmondragon/counterpos/pkg/db"
	"github.com/angelmondragon/counterpos/pkg/instance"
	"github.com/angelmondragon/counterpos/pkg/logger"
	"github.com/angelmondragon/counterpos/pkg/metrics"
	"github.com/angelmondragon/counterpos/pkg/migrate"
	pkgredis "github.com/angelmondragon/counterpos/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

// backend is the state store selected by configuration.
type backend struct {
	store   storage.Store
	ready   storage.Pinger
	idem    pkgredis.IdempotencyStore
	closers []io.Closer
}

func (b *backend) Close() error {
	var err error
	for _, c := range b.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap store", err)
		os.Exit(1)
	}
	defer func() {
		if err := be.Close(); err != nil {
			logg.Error(context.Background(), "error closing store", err)
		}
	}()

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(ctx, "failed to resolve timezone", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	posMetrics := metrics.NewPOSMetrics(registry)

	bus := events.NewBus()
	unsubscribe := events.RecordMetrics(bus, posMetrics)
	defer unsubscribe()

	svc, err := pos.NewService(be.store, bus, logg, posMetrics, pos.Options{
		ShopName: cfg.App.ShopName,
		Payment: pos.PaymentOptions{
			Payee:  cfg.Payment.PayeeVPA,
			Name:   cfg.Payment.PayeeName,
			Note:   cfg.Payment.Note,
			QRSize: cfg.Payment.QRSize,
		},
		PayClearsCart: cfg.Checkout.PayClearsCart,
		Location:      loc,
	})
	if err != nil {
		logg.Error(ctx, "failed to create pos service", err)
		os.Exit(1)
	}
	if err := svc.Load(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "state restored with defaults")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"store":    cfg.Store.Backend,
		"timezone": loc.String(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, svc, bus, be.ready, be.idem, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		return &backend{store: client, ready: client, idem: client, closers: []io.Closer{client}}, nil

	case config.StoreBackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(err, client.Close())
		}
		return &backend{store: sqlstore.NewRepository(client.DB()), ready: client, closers: []io.Closer{client}}, nil

	default:
		if cfg.App.IsProd() {
			logg.Warn(ctx, "memory store selected in production; state is lost on restart")
		}
		mem := storage.NewMemory()
		return &backend{store: mem, ready: mem}, nil
	}
}
