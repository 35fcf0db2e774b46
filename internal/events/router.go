package events

import (
	"boleteria/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes registers the event catalog routes. Reads are public;
// mutation and sync are admin operations.
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware gin.HandlerFunc) {
	events := rg.Group("/events")
	{
		events.GET("", controller.ListEvents)
		events.GET("/:id", controller.GetEvent)

		admin := events.Group("")
		admin.Use(authMiddleware, middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateEvent)
			admin.PATCH("/:id", controller.UpdateEvent)
			admin.DELETE("/:id", controller.DeleteEvent)
			admin.POST("/sync", controller.SyncFromRemote)
		}
	}
}
