// Package auth issues and validates access tokens for the API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"savdo/internal/core/actor"
	"savdo/internal/core/id"
)

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "savdo",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents access token claims. The tenant and actor identity
// travel in the token so the API never trusts a client-supplied header.
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string `json:"tid"`
	ActorKind string `json:"akind"`
	ActorName string `json:"aname,omitempty"`
}

// JWTService handles token operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs a token for the given actor.
func (s *JWTService) GenerateAccessToken(a actor.Actor) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   a.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID:  a.TenantID.String(),
		ActorKind: string(a.Kind),
		ActorName: a.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken parses and verifies a token, returning the resolved actor.
func (s *JWTService) ValidateToken(tokenString string) (actor.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return actor.Actor{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return actor.Actor{}, fmt.Errorf("invalid token claims")
	}

	tenantID, err := id.Parse(claims.TenantID)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid tenant claim: %w", err)
	}
	actorID, err := id.Parse(claims.Subject)
	if err != nil {
		return actor.Actor{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	kind := actor.Kind(claims.ActorKind)
	switch kind {
	case actor.KindEmployee, actor.KindDealer, actor.KindCustomer:
	default:
		return actor.Actor{}, fmt.Errorf("unknown actor kind %q", claims.ActorKind)
	}

	return actor.Actor{
		TenantID: tenantID,
		Kind:     kind,
		ID:       actorID,
		Name:     claims.ActorName,
	}, nil
}
