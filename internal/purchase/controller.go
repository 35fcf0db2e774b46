package purchase

import (
	"net/http"
	"strconv"

	"boleteria/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// currentUserID reads the authenticated user id set by the JWT middleware.
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		response.RespondError(ctx, http.StatusUnauthorized, CodeUnauthorized, "User not authenticated", nil)
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		response.RespondError(ctx, http.StatusInternalServerError, CodeInternal, "Invalid user ID format", nil)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// respondDomainError maps a service error to the response envelope.
func respondDomainError(ctx *gin.Context, err error) {
	if domainErr, ok := AsError(err); ok {
		response.RespondError(ctx, domainErr.HTTPStatus(), domainErr.Code, domainErr.Message, nil)
		return
	}
	response.RespondError(ctx, http.StatusInternalServerError, CodeInternal, "Unexpected error", err.Error())
}

// Start handles POST /api/v1/purchase/start
func (c *Controller) Start(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req StartPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Validation failed", err.Error())
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid event ID", nil)
		return
	}

	session, err := c.service.Start(ctx.Request.Context(), userID, eventID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Purchase session started", toSessionResponse(session), nil)
}

// GetState handles GET /api/v1/purchase/session
func (c *Controller) GetState(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	session, err := c.service.GetState(ctx.Request.Context(), userID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	if session == nil {
		response.RespondError(ctx, http.StatusNotFound, CodeNotFound, "No active session", nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session retrieved", toSessionResponse(session), nil)
}

// Touch handles POST /api/v1/purchase/touch
func (c *Controller) Touch(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.Touch(ctx.Request.Context(), userID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session activity refreshed", nil, nil)
}

// SelectSeats handles POST /api/v1/purchase/seats
func (c *Controller) SelectSeats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req SelectSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Validation failed", err.Error())
		return
	}

	session, err := c.service.SelectSeats(ctx.Request.Context(), userID, req.Seats)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats selected", toSessionResponse(session), nil)
}

// AssignNames handles POST /api/v1/purchase/names
func (c *Controller) AssignNames(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req AssignNamesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Validation failed", err.Error())
		return
	}

	session, err := c.service.AssignNames(ctx.Request.Context(), userID, req.Names)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupant names assigned", toSessionResponse(session), nil)
}

// Confirm handles POST /api/v1/purchase/confirm
func (c *Controller) Confirm(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	sale, err := c.service.Confirm(ctx.Request.Context(), userID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Sale completed", toSaleResponse(sale), nil)
}

// Cancel handles DELETE /api/v1/purchase/session
func (c *Controller) Cancel(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), userID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session cancelled", nil, nil)
}

// ListMySales handles GET /api/v1/purchase/sales
func (c *Controller) ListMySales(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit, offset := parsePagination(ctx)
	sales, err := c.service.ListSalesByUser(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sales retrieved", gin.H{
		"sales": toSaleResponses(sales),
		"count": len(sales),
	}, nil)
}

// ListEventSales handles GET /api/v1/purchase/events/:id/sales (admin)
func (c *Controller) ListEventSales(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, "Invalid event ID", nil)
		return
	}

	limit, offset := parsePagination(ctx)
	sales, err := c.service.ListSalesByEvent(ctx.Request.Context(), eventID, limit, offset)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sales retrieved", gin.H{
		"sales": toSaleResponses(sales),
		"count": len(sales),
	}, nil)
}

func parsePagination(ctx *gin.Context) (int, int) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
