package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitemonmedoc/medoc/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := &model.User{Base: model.Base{ID: 12}, Username: "house", Type: model.RoleDoctor}

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "house", claims.Username)
	assert.Equal(t, model.RoleDoctor, claims.Type)
	assert.Equal(t, "12", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("one", time.Hour).GenerateAccessToken(&model.User{Base: model.Base{ID: 1}})
	require.NoError(t, err)

	_, err = NewJWTService("two", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute).(*hmacService)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.GenerateAccessToken(&model.User{Base: model.Base{ID: 1}})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
