// backend/src/security/auth_service_test.go
package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("una-clave-de-prueba-suficientemente-larga", time.Hour)

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestTokenExpirado(t *testing.T) {
	svc := NewAuthService("una-clave-de-prueba-suficientemente-larga", -time.Minute)

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFirmaAjena(t *testing.T) {
	emisor := NewAuthService("clave-del-emisor-suficientemente-larga", time.Hour)
	receptor := NewAuthService("otra-clave-distinta-suficientemente-larga", time.Hour)

	token, err := emisor.GenerateToken("42")
	require.NoError(t, err)

	_, err = receptor.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenBasura(t *testing.T) {
	svc := NewAuthService("una-clave-de-prueba-suficientemente-larga", time.Hour)
	_, err := svc.ValidateToken("no.es.un.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
