package server

import (
	"context"
	"shop-cart/config"
	"shop-cart/controllers"
	"shop-cart/libs"
	"shop-cart/middleware"
	"shop-cart/models"
	"shop-cart/repositories"
	"shop-cart/routes"
	"shop-cart/services"
	"shop-cart/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// App is the wired cart engine: one store, one set of services, one router.
type App struct {
	Router  *gin.Engine
	Store   *services.CartStore
	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	cache, err := app.openCache(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	backend := libs.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout, logger.Named("backend"))
	store := services.NewCartStore(cache, logger.Named("cart"))
	if err := store.Rehydrate(ctx); err != nil {
		logger.Warn("starting with an empty cart", zap.Error(err))
	}

	cartSync := services.NewCartSyncService(backend, store, logger.Named("sync"))
	loyalty := services.NewLoyaltyService(backend, cache, cfg.PointsRate(), cfg.DisplayDecimals, logger.Named("loyalty"))
	cartService := services.NewCartService(store, cartSync, loyalty, logger.Named("cart"))
	checkoutService := services.NewCheckoutService(backend, store, cartSync, loyalty, utils.NewValidator(), logger.Named("checkout"))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Named("http")))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))

	routes.SetupRoutes(router, routes.Controllers{
		Cart:     controllers.NewCartController(cartService, cfg.DisplayDecimals),
		Loyalty:  controllers.NewLoyaltyController(loyalty, store),
		Checkout: controllers.NewCheckoutController(checkoutService, cfg.DisplayDecimals),
		Session:  controllers.NewSessionController(cartService),
	})

	app.Router = router
	app.Store = store
	return app, nil
}

// openCache picks the configured cart cache. An unreachable Redis or
// Postgres falls back to the on-device SQLite file.
func (a *App) openCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.CartCache, error) {
	switch cfg.CartCache {
	case config.CacheMemory:
		return repositories.NewMemoryCartCache(), nil
	case config.CacheRedis:
		client, err := models.OpenRedis(ctx, cfg.Redis())
		if err == nil {
			a.closers = append(a.closers, func() { client.Close() })
			logger.Info("cart cache: redis")
			return repositories.NewRedisCartCache(client, "shop-cart:", 0), nil
		}
		logger.Warn("redis unavailable, using local cache", zap.Error(err))
	case config.CachePostgres:
		pool, err := models.OpenDB(ctx, cfg.DSN(), cfg.Serverless)
		if err == nil {
			a.closers = append(a.closers, pool.Close)
			logger.Info("cart cache: postgres")
			return repositories.NewPostgresCartCache(pool), nil
		}
		logger.Warn("postgres unavailable, using local cache", zap.Error(err))
	}

	sqlite, err := repositories.NewSQLiteCartCache(cfg.SQLitePath)
	if err != nil {
		return nil, errors.Wrap(err, "open cart cache")
	}
	a.closers = append(a.closers, func() { sqlite.Close() })
	logger.Info("cart cache: sqlite", zap.String("path", cfg.SQLitePath))
	return sqlite, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
