package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"github.com/florista/bouquet-bff/api/routes"
	"github.com/florista/bouquet-bff/internal/admin"
	"github.com/florista/bouquet-bff/internal/auth"
	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/cart"
	"github.com/florista/bouquet-bff/internal/catalog"
	"github.com/florista/bouquet-bff/internal/orders"
	"github.com/florista/bouquet-bff/internal/payments"
	"github.com/florista/bouquet-bff/pkg/auth/session"
	"github.com/florista/bouquet-bff/pkg/config"
	"github.com/florista/bouquet-bff/pkg/logger"
	"github.com/florista/bouquet-bff/pkg/metrics"
	"github.com/florista/bouquet-bff/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "bouquet-bff"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bouquet-bff",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "bff stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	upstream, err := backend.NewClient(cfg.Backend,
		backend.WithMetrics(metrics.NewUpstreamMetrics(registry)),
		backend.WithLogger(logg),
	)
	if err != nil {
		return err
	}

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	svcs, err := buildServices(cfg, logg, upstream, redisClient, sessionManager, loc)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			sessionManager,
			upstream,
			metrics.NewHTTPMetrics(registry),
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			svcs,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"timezone":  loc.String(),
		"upstreams": upstream.Services(),
	})
	logg.Info(logCtx, "starting bff server")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down bff server")
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	upstream *backend.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	loc *time.Location,
) (routes.Services, error) {
	authService, err := auth.NewService(auth.ServiceParams{
		Backend:        upstream,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	catalogParams := catalog.ServiceParams{Backend: upstream, Logger: logg}
	if cfg.Cache.CatalogEnabled {
		catalogParams.Cache = redisClient
		catalogParams.CacheTTL = cfg.Cache.CatalogTTL
	}
	catalogService, err := catalog.NewService(catalogParams)
	if err != nil {
		return routes.Services{}, err
	}

	cartService, err := cart.NewService(cart.ServiceParams{Backend: upstream, Logger: logg})
	if err != nil {
		return routes.Services{}, err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Backend:  upstream,
		Cart:     cartService,
		Location: loc,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{Backend: upstream, Logger: logg})
	if err != nil {
		return routes.Services{}, err
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		Backend: upstream,
		Catalog: catalogService,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authService,
		Catalog:  catalogService,
		Cart:     cartService,
		Orders:   ordersService,
		Payments: paymentsService,
		Admin:    adminService,
	}, nil
}
