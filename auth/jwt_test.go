package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/models"
)

const testSecret = "test-secret-key-for-testing-purposes"

func testUser() *models.User {
	return &models.User{
		UserID:   "user-1",
		Username: "marta",
		Role:     models.RoleStaff,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager(testSecret, 30*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "marta", claims.Username)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, "workforce-api", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewJWTManager(testSecret, -time.Minute, time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager(testSecret, 30*time.Minute, time.Hour)
	other := NewJWTManager("a-different-secret", 30*time.Minute, time.Hour)

	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewJWTManager(testSecret, 30*time.Minute, time.Hour)

	_, err := manager.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractToken("")
	assert.Error(t, err)

	_, err = ExtractToken("Basic abc123")
	assert.Error(t, err)
}
