package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/session-planner/internal/domain"
	"github.com/prohmpiriya/session-planner/internal/dto"
	"github.com/prohmpiriya/session-planner/internal/service"
	"github.com/prohmpiriya/session-planner/pkg/middleware"
	"github.com/prohmpiriya/session-planner/pkg/response"
	"github.com/prohmpiriya/session-planner/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DraftHandler handles session configuration draft HTTP requests
type DraftHandler struct {
	draftService service.SessionConfigService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(draftService service.SessionConfigService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Create handles POST /drafts
func (h *DraftHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
		return
	}

	var req dto.CreateDraftRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid request")
			c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
			return
		}
	}

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	draft, err := h.draftService.CreateDraft(ctx, userID, &req)
	if err != nil {
		writeError(c, span, err, "Failed to create draft")
		return
	}

	span.SetAttributes(attribute.String("draft_id", draft.ID))
	c.JSON(http.StatusCreated, response.Success(draft))
}

// List handles GET /drafts - lists the caller's drafts
func (h *DraftHandler) List(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		c.JSON(http.StatusUnauthorized, response.Unauthorized("User not authenticated"))
		return
	}

	var filter dto.DraftListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	filter.CreatedBy = userID
	filter.SetDefaults()

	drafts, total, err := h.draftService.ListDrafts(ctx, &filter)
	if err != nil {
		writeError(c, span, err, "Failed to list drafts")
		return
	}

	c.JSON(http.StatusOK, response.Paginated(drafts, filter.Offset/filter.Limit+1, filter.Limit, int64(total)))
}

// GetByID handles GET /drafts/:id
func (h *DraftHandler) GetByID(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.get")
	defer span.End()
	ctx = scopeToCaller(ctx, c)
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("draft_id", id))

	draft, err := h.draftService.GetDraft(ctx, id)
	if err != nil {
		writeError(c, span, err, "Failed to get draft")
		return
	}

	c.JSON(http.StatusOK, response.Success(draft))
}

// Delete handles DELETE /drafts/:id
func (h *DraftHandler) Delete(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.delete")
	defer span.End()
	ctx = scopeToCaller(ctx, c)
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("draft_id", id))

	if err := h.draftService.DeleteDraft(ctx, id); err != nil {
		writeError(c, span, err, "Failed to delete draft")
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{"message": "Draft deleted successfully"}))
}

// ApplyAction handles POST /drafts/:id/actions
func (h *DraftHandler) ApplyAction(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.apply_action")
	defer span.End()
	ctx = scopeToCaller(ctx, c)
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")

	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid request body"))
		return
	}

	span.SetAttributes(
		attribute.String("draft_id", id),
		attribute.String("action", string(req.Type)),
	)

	if valid, msg := req.Validate(); !valid {
		span.SetStatus(codes.Error, msg)
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	result, err := h.draftService.ApplyAction(ctx, id, &req)
	if err != nil {
		writeError(c, span, err, "Failed to apply action")
		return
	}

	span.SetAttributes(attribute.Int64("version", result.Version))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, response.Success(result))
}

// Payload handles GET /drafts/:id/payload
func (h *DraftHandler) Payload(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.payload")
	defer span.End()
	ctx = scopeToCaller(ctx, c)
	c.Request = c.Request.WithContext(ctx)

	payload, err := h.draftService.Payload(ctx, c.Param("id"))
	if err != nil {
		writeError(c, span, err, "Failed to serialize draft")
		return
	}

	c.JSON(http.StatusOK, response.Success(payload))
}

// Completeness handles GET /drafts/:id/completeness
func (h *DraftHandler) Completeness(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.draft.completeness")
	defer span.End()
	ctx = scopeToCaller(ctx, c)
	c.Request = c.Request.WithContext(ctx)

	result, err := h.draftService.Completeness(ctx, c.Param("id"))
	if err != nil {
		writeError(c, span, err, "Failed to check completeness")
		return
	}

	span.SetAttributes(attribute.Bool("complete", result.Complete))
	c.JSON(http.StatusOK, response.Success(result))
}

// scopeToCaller limits organizers to their own drafts; admins reach every draft
func scopeToCaller(ctx context.Context, c *gin.Context) context.Context {
	if role, _ := middleware.GetRole(c); role == "admin" {
		return ctx
	}
	if userID, ok := middleware.GetUserID(c); ok {
		return service.WithRequester(ctx, userID)
	}
	return ctx
}

// writeError maps service and domain errors to HTTP responses
func writeError(c *gin.Context, span trace.Span, err error, fallback string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	switch {
	case errors.Is(err, service.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, response.NotFound("Draft not found"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Forbidden("Draft belongs to another user"))
	case errors.Is(err, service.ErrVersionConflict):
		c.JSON(http.StatusConflict, response.Conflict(err.Error()))
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidAction),
		domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, response.NotFound(err.Error()))
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, response.Conflict(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
	}
}
