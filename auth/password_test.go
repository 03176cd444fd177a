package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sturdy-pass-1")
	require.NoError(t, err)
	assert.NotEqual(t, "sturdy-pass-1", hash)

	assert.NoError(t, CheckPassword("sturdy-pass-1", hash))
	assert.Error(t, CheckPassword("wrong-pass-2", hash))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.NoError(t, ValidatePasswordStrength("letters4numbers"))
	assert.Error(t, ValidatePasswordStrength("short1"))
	assert.Error(t, ValidatePasswordStrength("onlyletters"))
	assert.Error(t, ValidatePasswordStrength("123456789"))
}
