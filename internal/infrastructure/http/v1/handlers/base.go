// Package handlers provides HTTP request handlers for API version 1.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"savdo/internal/core/actor"
	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/infrastructure/storage/postgres"
	"savdo/pkg/logger"
)

// Auditor records committed ledger operations. Nil-safe when auditing
// is not wired.
type Auditor interface {
	LogOperation(ctx context.Context, tenantID id.ID, entityType string, entityID id.ID, action postgres.AuditAction, payload any) error
}

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	auditor Auditor
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(auditor Auditor) *BaseHandler {
	return &BaseHandler{auditor: auditor}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// TenantID extracts the tenant id from the resolved actor.
func (h *BaseHandler) TenantID(c *gin.Context) (id.ID, bool) {
	a, ok := actor.FromContext(c.Request.Context())
	if !ok || a.IsZero() {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	return a.TenantID, true
}

// ParamID parses a path parameter as an id.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", name))
		return id.Nil(), false
	}
	return parsed, true
}

// Audit records a committed operation. Failures are logged, never
// surfaced: the ledger change already committed.
func (h *BaseHandler) Audit(c *gin.Context, tenantID id.ID, entityType string, entityID id.ID, action postgres.AuditAction, payload any) {
	if h.auditor == nil {
		return
	}
	ctx := c.Request.Context()
	if err := h.auditor.LogOperation(ctx, tenantID, entityType, entityID, action, payload); err != nil {
		logger.Error(ctx, "audit write failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", string(action),
			"error", err,
		)
	}
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
