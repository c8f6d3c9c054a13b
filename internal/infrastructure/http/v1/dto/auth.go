package dto

import "time"

// RequestCodeRequest asks for a one-time login code. The code is
// delivered out of band (SMS); the API only confirms issuance.
type RequestCodeRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Kind     string `json:"kind" binding:"required,oneof=dealer customer"`
	Phone    string `json:"phone" binding:"required"`
}

// VerifyCodeRequest exchanges a one-time code for an access token.
type VerifyCodeRequest struct {
	TenantID string `json:"tenantId" binding:"required"`
	Kind     string `json:"kind" binding:"required,oneof=dealer customer"`
	Phone    string `json:"phone" binding:"required"`
	ActorID  string `json:"actorId" binding:"required"`
	Name     string `json:"name"`
	Code     string `json:"code" binding:"required"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
