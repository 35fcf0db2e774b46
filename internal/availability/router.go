package availability

import "github.com/gin-gonic/gin"

// SetupAvailabilityRoutes mounts the seat grid read under the events group.
func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/events/:id/availability", controller.GetAvailability)
}
