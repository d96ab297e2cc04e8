package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret-must-be-32-chars-long!!", 60)

	token, err := manager.GenerateAccessToken(42, "borrower@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "borrower@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	minter := NewTokenManager("test-secret-must-be-32-chars-long!!", 60)
	validator := NewTokenManager("another-secret-also-32-chars-long!!", 60)

	token, err := minter.GenerateAccessToken(42, "")
	assert.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Expired(t *testing.T) {
	manager := NewTokenManager("test-secret-must-be-32-chars-long!!", -1)

	token, err := manager.GenerateAccessToken(42, "")
	assert.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	manager := NewTokenManager("test-secret-must-be-32-chars-long!!", 60)

	claims, err := manager.ValidateToken("not.a.token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
