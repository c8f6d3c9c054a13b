package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"savdo/internal/core/actor"
	"savdo/internal/core/apperror"
)

// TokenValidator validates an access token and resolves the caller.
type TokenValidator interface {
	ValidateToken(tokenString string) (actor.Actor, error)
}

// Auth middleware validates bearer tokens and places the resolved actor
// in the request context. The tenant id handlers pass to the ledger comes
// from the token, never from a client-supplied header.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		a, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}
		if a.IsZero() {
			abortUnauthorized(c, "token carries no tenant")
			return
		}

		ctx := actor.WithActor(c.Request.Context(), a)
		c.Request = c.Request.WithContext(ctx)

		c.Set("tenant_id", a.TenantID.String())
		c.Set("actor_id", a.ID.String())

		c.Next()
	}
}

// RequireKind restricts a route to the given actor kinds.
func RequireKind(kinds ...actor.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := actor.FromContext(c.Request.Context())
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		for _, kind := range kinds {
			if a.Kind == kind {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("actor_kind", string(a.Kind)),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
