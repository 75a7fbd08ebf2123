package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
)

const (
	minNameLength           = 2
	minPasswordLength       = 8
	minLoginPasswordLength  = 6
	maxBioLength            = 160
	msgInvalidEmail         = "Please enter a valid email address"
	msgPasswordsDoNotMatch  = "Passwords don't match"
	msgPasswordTooShort     = "Password must be at least 8 characters"
	msgPasswordTooLong      = "Password must be 72 bytes or fewer"
	msgCurrentPasswordEmpty = "Current password is required"
)

// normalizeEmail trims surrounding space. Case is kept as typed; the users
// table compares emails case-insensitively.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// validateEmail accepts a bare address: "jane@example.com", not
// "Jane <jane@example.com>".
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return apperror.ValidationFailed("email", msgInvalidEmail)
	}
	return nil
}

func validateNewPassword(field, password, confirm string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperror.ValidationFailed(field, msgPasswordTooShort)
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed(field, msgPasswordTooLong)
	}
	if confirm != password {
		return apperror.ValidationFailed("confirmPassword", msgPasswordsDoNotMatch)
	}
	return nil
}

func atLeast(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

// usernameFromEmail is the part before the @.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
