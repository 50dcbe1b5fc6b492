// Package users holds the user model returned by the backend and the
// client-side credential rules enforced before any network call.
package users

import (
	"fmt"
	"regexp"
	"time"
	"unicode"
)

// RoleType distinguishes an ordinary attendee from an event organizer.
type RoleType string

const (
	RoleUser   RoleType = "user"
	RoleVendor RoleType = "vendor"
)

// User is the account record as the backend serializes it. The client
// never mutates it; fresh copies arrive with every auth response.
type User struct {
	ID          string    `json:"_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"fullName,omitempty"`
	Role        RoleType  `json:"role,omitempty"`
	Verified    bool      `json:"isVerified,omitempty"`
	SavedEvents []string  `json:"savedEvents,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

func (u *User) IsVendor() bool {
	return u.Role == RoleVendor
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var otpPattern = regexp.MustCompile(`^\d{6}$`)

// ValidateEmail checks that the address is well-formed.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("please enter a valid email address")
	}
	return nil
}

// ValidatePasswordStrength checks if a password meets the signup and
// password-reset requirements:
// - At least 6 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// ValidateOTP checks that the verification code is exactly six digits.
func ValidateOTP(code string) error {
	if code == "" {
		return fmt.Errorf("verification code is required")
	}
	if !otpPattern.MatchString(code) {
		return fmt.Errorf("code must be exactly 6 digits")
	}
	return nil
}
