package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savdo/internal/core/actor"
	"savdo/internal/core/id"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	a := actor.Actor{
		TenantID: id.New(),
		Kind:     actor.KindDealer,
		ID:       id.New(),
		Name:     "Karim aka",
	}

	token, expiresAt, err := svc.GenerateAccessToken(a)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	resolved, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, a.TenantID, resolved.TenantID)
	assert.Equal(t, a.Kind, resolved.Kind)
	assert.Equal(t, a.ID, resolved.ID)
	assert.Equal(t, a.Name, resolved.Name)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken(actor.Actor{
		TenantID: id.New(),
		Kind:     actor.KindEmployee,
		ID:       id.New(),
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken(actor.Actor{
		TenantID: id.New(),
		Kind:     actor.KindCustomer,
		ID:       id.New(),
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsUnknownKind(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, _, err := svc.GenerateAccessToken(actor.Actor{
		TenantID: id.New(),
		Kind:     actor.Kind("robot"),
		ID:       id.New(),
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
