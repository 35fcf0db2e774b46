package events

import (
	"errors"
	"net/http"

	"boleteria/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateEvent handles POST /api/v1/events
func (c *Controller) CreateEvent(ctx *gin.Context) {
	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	event, err := c.service.CreateEvent(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, http.StatusInternalServerError, "INTERNAL", "Failed to create event", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Event created successfully", event, nil)
}

// GetEvent handles GET /api/v1/events/:id
func (c *Controller) GetEvent(ctx *gin.Context) {
	event, err := c.service.GetEvent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondError(ctx, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
			return
		}
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Failed to get event", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event retrieved successfully", event, nil)
}

// ListEvents handles GET /api/v1/events
func (c *Controller) ListEvents(ctx *gin.Context) {
	activeOnly := ctx.DefaultQuery("active", "true") == "true"

	events, err := c.service.ListEvents(ctx.Request.Context(), activeOnly)
	if err != nil {
		response.RespondError(ctx, http.StatusInternalServerError, "INTERNAL", "Failed to list events", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Events retrieved successfully", gin.H{
		"events": events,
		"count":  len(events),
	}, nil)
}

// UpdateEvent handles PATCH /api/v1/events/:id
func (c *Controller) UpdateEvent(ctx *gin.Context) {
	var req UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	event, err := c.service.UpdateEvent(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondError(ctx, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
			return
		}
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Failed to update event", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event updated successfully", event, nil)
}

// DeleteEvent handles DELETE /api/v1/events/:id
func (c *Controller) DeleteEvent(ctx *gin.Context) {
	if err := c.service.DeleteEvent(ctx.Request.Context(), ctx.Param("id")); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			response.RespondError(ctx, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
			return
		}
		response.RespondError(ctx, http.StatusBadRequest, "INVALID_REQUEST", "Failed to delete event", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event deleted successfully", nil, nil)
}

// SyncFromRemote handles POST /api/v1/events/sync
func (c *Controller) SyncFromRemote(ctx *gin.Context) {
	report, err := c.service.SyncFromRemote(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, http.StatusBadGateway, "REMOTE_UNAVAILABLE", "Catalog sync failed", err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Catalog synchronized", report, nil)
}
