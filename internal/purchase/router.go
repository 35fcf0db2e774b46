package purchase

import (
	"boleteria/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupPurchaseRoutes registers the purchase workflow routes. Everything is
// behind authentication; the acting user comes from the JWT context.
func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller, authMiddleware gin.HandlerFunc) {
	purchase := rg.Group("/purchase")
	purchase.Use(authMiddleware)
	{
		purchase.POST("/start", controller.Start)
		purchase.GET("/session", controller.GetState)
		purchase.POST("/touch", controller.Touch)
		purchase.POST("/seats", controller.SelectSeats)
		purchase.POST("/names", controller.AssignNames)
		purchase.POST("/confirm", controller.Confirm)
		purchase.DELETE("/session", controller.Cancel)

		purchase.GET("/sales", controller.ListMySales)

		admin := purchase.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/events/:id/sales", controller.ListEventSales)
		}
	}
}
