package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"savdo/internal/core/actor"
	"savdo/internal/core/apperror"
	"savdo/internal/infrastructure/auth"
	"savdo/internal/infrastructure/http/v1/dto"
	"savdo/internal/infrastructure/otp"
	"savdo/pkg/logger"
)

// AuthHandler exchanges one-time login codes for access tokens.
// Identity resolution (which dealer or customer owns a phone number)
// belongs to the tenant administration surface; this handler only runs
// the code exchange for an already-known actor identity.
type AuthHandler struct {
	*BaseHandler
	codes *otp.Store
	jwt   *auth.JWTService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, codes *otp.Store, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, codes: codes, jwt: jwtService}
}

// RequestCode handles POST /auth/otp/request
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req dto.RequestCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenantID, err := dto.ParseID("tenantId", req.TenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	subject := codeSubject(tenantID.String(), req.Kind, req.Phone)

	code, err := h.codes.Issue(ctx, subject)
	if err != nil {
		h.Error(c, err)
		return
	}

	// The code leaves the system over SMS, never over this API.
	logger.Info(ctx, "login code issued",
		"tenant_id", tenantID,
		"kind", req.Kind,
		"phone", req.Phone,
		"code_length", len(code),
	)

	h.OK(c, dto.SuccessResponse{Success: true, Message: "code sent"})
}

// VerifyCode handles POST /auth/otp/verify
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tenantID, err := dto.ParseID("tenantId", req.TenantID)
	if err != nil {
		h.Error(c, err)
		return
	}
	actorID, err := dto.ParseID("actorId", req.ActorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	kind := actor.Kind(req.Kind)
	if kind != actor.KindDealer && kind != actor.KindCustomer {
		h.Error(c, apperror.NewValidation("unknown actor kind").WithDetail("kind", req.Kind))
		return
	}

	ctx := c.Request.Context()
	subject := codeSubject(tenantID.String(), req.Kind, req.Phone)

	if err := h.codes.Verify(ctx, subject, req.Code); err != nil {
		h.Error(c, err)
		return
	}

	token, expiresAt, err := h.jwt.GenerateAccessToken(actor.Actor{
		TenantID: tenantID,
		Kind:     kind,
		ID:       actorID,
		Name:     req.Name,
	})
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, dto.TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}

func codeSubject(tenantID, kind, phone string) string {
	return fmt.Sprintf("%s:%s:%s", tenantID, kind, phone)
}
