package routes

import (
	"net/http"
	"time"

	"boleteria/internal/availability"
	"boleteria/internal/catedra"
	"boleteria/internal/events"
	"boleteria/internal/purchase"
	"boleteria/internal/shared/config"
	"boleteria/internal/shared/database"
	"boleteria/internal/shared/middleware"
	"boleteria/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	remote    catedra.Client
	publisher purchase.SalePublisher
}

// NewRouter creates a new router instance. The publisher may be nil when
// Kafka is disabled.
func NewRouter(cfg *config.Config, db *database.DB, remote catedra.Client, publisher purchase.SalePublisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		remote:    remote,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	authMiddleware := middleware.JWTAuthWithConfig(r.config)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupEventRoutes(api, authMiddleware)
		availabilityService := r.setupAvailabilityRoutes(api)
		r.setupPurchaseRoutes(api, authMiddleware, availabilityService)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		remoteUp := r.remote.IsAvailable(c.Request.Context())

		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":           "unhealthy",
				"error":            err.Error(),
				"remote_authority": remoteUp,
				"timestamp":        time.Now(),
				"service":          "boleteria-backend",
			})
			return
		}

		// A down remote degrades the purchase flow but local reads still work.
		c.JSON(http.StatusOK, gin.H{
			"status":           "healthy",
			"remote_authority": remoteUp,
			"timestamp":        time.Now(),
			"service":          "boleteria-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupEventRoutes configures event catalog routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo, r.remote)
	if r.db.Redis != nil {
		eventService.SetCacheService(cache.NewService(r.db.Redis))
	}
	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController, authMiddleware)
}

// setupAvailabilityRoutes configures the seat grid read
func (r *Router) setupAvailabilityRoutes(rg *gin.RouterGroup) availability.Service {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	availabilityService := availability.NewService(eventRepo, r.remote)
	availabilityController := availability.NewController(availabilityService)

	availability.SetupAvailabilityRoutes(rg, availabilityController)
	return availabilityService
}

// setupPurchaseRoutes configures the purchase workflow
func (r *Router) setupPurchaseRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, availabilityService availability.Service) {
	purchaseRepo := purchase.NewRepository(r.db.GetPostgreSQL())
	sessionCache := purchase.NewSessionCache(r.db.Redis, r.config.Purchase.SessionWindow)
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())

	purchaseService := purchase.NewService(
		purchaseRepo,
		sessionCache,
		eventRepo,
		availabilityService,
		r.remote,
		r.config.Purchase,
	)
	if r.publisher != nil {
		purchaseService.SetPublisher(r.publisher)
	}
	purchaseController := purchase.NewController(purchaseService)

	purchase.SetupPurchaseRoutes(rg, purchaseController, authMiddleware)
}
