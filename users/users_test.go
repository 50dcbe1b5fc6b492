package users_test

import (
	"testing"

	"github.com/kidigo/storefront/users"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@example.co.uk", "x+tag@domain.io"}
	for _, email := range valid {
		require.NoError(t, users.ValidateEmail(email), email)
	}

	invalid := []string{"", "plainaddress", "@no-local.com", "no-at.com", "a@b", "spaces in@addr.com"}
	for _, email := range invalid {
		require.Error(t, users.ValidateEmail(email), email)
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Abc123"))
	require.NoError(t, users.ValidatePasswordStrength("Str0ngPass"))

	cases := map[string]string{
		"empty":        "",
		"too short":    "Ab1",
		"no uppercase": "abc123",
		"no lowercase": "ABC123",
		"no digit":     "Abcdef",
	}
	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, users.ValidatePasswordStrength(password))
		})
	}
}

func TestValidateOTP(t *testing.T) {
	require.NoError(t, users.ValidateOTP("123456"))

	for _, code := range []string{"", "12345", "1234567", "12345a", "abcdef", " 12345"} {
		require.Error(t, users.ValidateOTP(code), code)
	}
}

func TestIsVendor(t *testing.T) {
	require.True(t, (&users.User{Role: users.RoleVendor}).IsVendor())
	require.False(t, (&users.User{Role: users.RoleUser}).IsVendor())
}
