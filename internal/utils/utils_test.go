package utils_test

import (
	"testing"

	"github.com/avatarctic/ai-career-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := map[string]error{
		"Short1":        utils.ErrPasswordTooShort,
		"alllowercase1": utils.ErrPasswordNoUppercase,
		"ALLUPPERCASE1": utils.ErrPasswordNoLowercase,
		"NoDigitsHere":  utils.ErrPasswordNoDigit,
		"GoodPassw0rd":  nil,
	}
	for pw, want := range cases {
		err := utils.ValidatePasswordStrength(pw)
		if want == nil {
			assert.NoError(t, err, pw)
			continue
		}
		assert.ErrorIs(t, err, want)
	}
}

func TestValidatePasswordStrength_TooLong(t *testing.T) {
	pw := "Aa1"
	for len(pw) <= utils.MaxPasswordLength {
		pw += "x"
	}
	assert.ErrorIs(t, utils.ValidatePasswordStrength(pw), utils.ErrPasswordTooLong)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("GoodPassw0rd")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(hash, "GoodPassw0rd"))
	assert.False(t, utils.CheckPassword(hash, "WrongPassw0rd"))
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := utils.GenerateSecureToken(utils.ResetTokenBytes)
	require.NoError(t, err)
	b, err := utils.GenerateSecureToken(utils.ResetTokenBytes)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestEmailHelpers(t *testing.T) {
	assert.Equal(t, "user@x.com", utils.NormalizeEmail("  User@X.com "))
	assert.True(t, utils.IsValidEmail("user@x.com"))
	assert.False(t, utils.IsValidEmail(""))
	assert.False(t, utils.IsValidEmail("not-an-email"))
	assert.False(t, utils.IsValidEmail("a@"))
}
