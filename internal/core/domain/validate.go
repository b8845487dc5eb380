package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// emailPattern is intentionally loose: anything shaped like local@host.tld.
// The backend is the final authority on deliverability.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	minPasswordLen = 8
	minFullNameLen = 2
)

// NormalizeEmail lowercases and trims an email address. All uniqueness checks
// and lookups operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects anything not matching the email shape. Runs before
// any backend call.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// ValidatePassword enforces the strength policy: at least 8 characters with
// at least one uppercase letter, one lowercase letter, one digit and one
// symbol.
func ValidatePassword(password string) error {
	missing := missingPasswordClasses(password)
	if len(password) < minPasswordLen {
		missing = append([]string{"at least 8 characters"}, missing...)
	}
	if len(missing) > 0 {
		return NewValidationError("password", "must contain "+strings.Join(missing, ", "))
	}
	return nil
}

func missingPasswordClasses(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSymbol {
		missing = append(missing, "a symbol")
	}
	return missing
}

// PasswordMeetsPolicy reports whether password satisfies the strength policy.
// Used by the transport layer's custom validator tag.
func PasswordMeetsPolicy(password string) bool {
	return len(password) >= minPasswordLen && len(missingPasswordClasses(password)) == 0
}

// ValidateFullName requires a display name of at least two characters after
// trimming.
func ValidateFullName(fullName string) error {
	if len(strings.TrimSpace(fullName)) < minFullNameLen {
		return NewValidationError("full_name", "must be at least 2 characters")
	}
	return nil
}
