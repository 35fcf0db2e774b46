package availability

import (
	"errors"
	"net/http"

	"boleteria/internal/catedra"
	"boleteria/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetAvailability handles GET /api/v1/events/:id/availability
func (c *Controller) GetAvailability(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Invalid event ID", nil)
		return
	}

	matrix, err := c.service.BuildAvailability(ctx.Request.Context(), eventID)
	if err != nil {
		switch {
		case errors.Is(err, ErrEventNotFound):
			response.RespondError(ctx, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
		case errors.Is(err, ErrEventInactive):
			response.RespondError(ctx, http.StatusConflict, "INVALID_STATE", "Event is not active", nil)
		case errors.Is(err, ErrEventNotConfigured):
			response.RespondError(ctx, http.StatusConflict, "INVALID_STATE", "Event has no seat grid configured", nil)
		case errors.Is(err, catedra.ErrRemoteUnavailable):
			response.RespondError(ctx, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Remote ticketing authority unavailable", nil)
		default:
			response.RespondError(ctx, http.StatusInternalServerError, "INTERNAL", "Failed to build availability", err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved", matrix, nil)
}
