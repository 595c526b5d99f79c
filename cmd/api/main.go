package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/simkidd/dwec-winery-storefront/api/controllers"
	"github.com/simkidd/dwec-winery-storefront/api/routes"
	"github.com/simkidd/dwec-winery-storefront/internal/cart"
	"github.com/simkidd/dwec-winery-storefront/internal/catalog"
	"github.com/simkidd/dwec-winery-storefront/internal/checkout"
	"github.com/simkidd/dwec-winery-storefront/internal/delivery"
	"github.com/simkidd/dwec-winery-storefront/internal/events"
	"github.com/simkidd/dwec-winery-storefront/internal/favorites"
	"github.com/simkidd/dwec-winery-storefront/internal/orders"
	"github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/internal/viewer"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	"github.com/simkidd/dwec-winery-storefront/pkg/db"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/metrics"
	"github.com/simkidd/dwec-winery-storefront/pkg/migrate"
	"github.com/simkidd/dwec-winery-storefront/pkg/redis"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	commerce, err := upstream.NewClient(context.Background(), cfg.Upstream, logg, storefrontMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create upstream client", err)
		os.Exit(1)
	}

	emitter, err := events.NewEmitter(context.Background(), cfg.Events, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create events emitter", err)
		os.Exit(1)
	}
	defer func() {
		if err := emitter.Close(); err != nil {
			logg.Error(context.Background(), "error closing events emitter", err)
		}
	}()

	guard, err := session.NewGuard(session.GuardOptions{
		JWT:    cfg.JWT,
		API:    commerce,
		Cache:  redisClient,
		Repo:   session.NewProfileStore(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create session guard", err)
		os.Exit(1)
	}

	carts := cart.NewStore(cart.NewSnapshotRepository(dbClient.DB()), logg, storefrontMetrics)

	deliverySvc, err := delivery.NewService(commerce, redisClient, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(commerce, redisClient, cfg.Catalog.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	history, err := orders.NewHistory(commerce)
	if err != nil {
		logg.Error(context.Background(), "failed to create order history", err)
		os.Exit(1)
	}

	sync, err := favorites.NewSynchronizer(commerce, emitter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites synchronizer", err)
		os.Exit(1)
	}

	orchestrator, err := checkout.NewOrchestrator(checkout.OrchestratorOptions{
		Store:   checkout.NewRedisContextStore(redisClient, cfg.Checkout.ContextTTL),
		Carts:   carts,
		Areas:   deliverySvc,
		API:     commerce,
		Events:  emitter,
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout orchestrator", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{
		"postgres": dbClient,
		"redis":    redisClient,
	}

	handler := routes.NewRouter(cfg, logg, registry, pingers, routes.Services{
		Registrar: viewer.NewRegistrar(dbClient.DB(), logg),
		Sessions:  guard,
		Evictor:   guard,
		Cart:      carts,
		Favorites: sync,
		Checkout:  orchestrator,
		Catalog:   catalogSvc,
		Delivery:  deliverySvc,
		Orders:    history,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
